package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evanpr/kalender/internal/rabbit"
	"github.com/evanpr/kalender/internal/reminder"
	"github.com/evanpr/kalender/internal/storage"
	"github.com/evanpr/kalender/internal/util"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidEvent = errors.New("event title and start time are required")

// Notifier is the outbound side of the event channel.
type Notifier interface {
	Publish(body []byte) error
}

// HolidayFetcher loads the holiday set for a year.
type HolidayFetcher interface {
	FetchYear(ctx context.Context, year int) ([]storage.Event, error)
}

// App ties the event store, the holiday set, the reminder scheduler and
// the outbound event channel together. User events live in Storage,
// holidays are replaced wholesale on every year change; the displayed set
// is always the union of both.
type App struct {
	Storage   storage.Storage
	reminders *reminder.Scheduler
	notifier  Notifier
	fetcher   HolidayFetcher

	mu       sync.RWMutex
	holidays []storage.Event
	year     int
}

func New(stor storage.Storage, reminders *reminder.Scheduler, notifier Notifier, fetcher HolidayFetcher) *App {
	return &App{
		Storage:   stor,
		reminders: reminders,
		notifier:  notifier,
		fetcher:   fetcher,
		year:      time.Now().Year(),
	}
}

// CreateEvent validates and stores a new event, announces it on the event
// channel and arms its reminder. Edits never go out on the channel, only
// creations and shares do.
func (a *App) CreateEvent(ctx context.Context, e storage.Event) (storage.Event, error) {
	if e.Title == "" || e.StartTime.IsZero() {
		return storage.Event{}, ErrInvalidEvent
	}
	e.Holiday = false
	if e.ReminderTime == "" {
		e.ReminderTime = fmt.Sprintf("%d", storage.DefaultReminderMinutes)
	}
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, err
	}
	a.publish(rabbit.KindCreateEvent, e, "")
	a.reminders.Arm(e)
	return e, nil
}

func (a *App) UpdateEvent(ctx context.Context, id string, e storage.Event) error {
	if e.Title == "" || e.StartTime.IsZero() {
		return ErrInvalidEvent
	}
	if err := a.Storage.UpdateEvent(ctx, id, e); err != nil {
		return err
	}
	e.ID = id
	a.reminders.Arm(e)
	return nil
}

func (a *App) RemoveEvent(ctx context.Context, id string) error {
	if err := a.Storage.RemoveEvent(ctx, id); err != nil {
		return err
	}
	a.reminders.Cancel(id)
	return nil
}

// ShareEvent appends the user to the event's shared list and announces the
// share. User IDs are not validated or deduplicated.
func (a *App) ShareEvent(ctx context.Context, id string, userID string) (storage.Event, error) {
	if userID == "" {
		return storage.Event{}, ErrInvalidEvent
	}
	e, err := a.Storage.GetEvent(ctx, id)
	if err != nil {
		return storage.Event{}, err
	}
	e.SharedWith = append(e.SharedWith, userID)
	if err := a.Storage.UpdateEvent(ctx, id, e); err != nil {
		return storage.Event{}, err
	}
	a.publish(rabbit.KindShareEvent, e, userID)
	log.Infof("event %q shared with %q", e.Title, userID)
	return e, nil
}

// ReceiveEvent appends an event delivered over the push channel. Malformed
// payloads are rejected; duplicates are accepted as distinct events.
func (a *App) ReceiveEvent(ctx context.Context, e storage.Event, shared bool) error {
	if e.Title == "" || e.StartTime.IsZero() {
		return ErrInvalidEvent
	}
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return err
	}
	if shared {
		log.Infof("event shared with you: %s", e.Title)
	}
	return nil
}

// SetYear replaces the holiday set with the given year's holidays. On
// fetch failure the previous set stays in place; the error is logged for
// operators and never surfaced to the end user.
func (a *App) SetYear(ctx context.Context, year int) error {
	events, err := a.fetcher.FetchYear(ctx, year)
	if err != nil {
		log.Errorf("failed to fetch holidays for %d: %v", year, err)
		a.mu.Lock()
		a.year = year
		a.mu.Unlock()
		return err
	}
	for i := range events {
		events[i].ID = uuid.NewString()
	}

	a.mu.Lock()
	a.year = year
	a.holidays = events
	a.mu.Unlock()
	log.Infof("loaded %d holidays for %d", len(events), year)
	return nil
}

// RefreshHolidays re-fetches the currently selected year.
func (a *App) RefreshHolidays(ctx context.Context) error {
	return a.SetYear(ctx, a.Year())
}

func (a *App) Year() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.year
}

func (a *App) Holidays() []storage.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	holidays := make([]storage.Event, len(a.holidays))
	copy(holidays, a.holidays)
	return holidays
}

// Events returns the union of user events and holidays, filtered by a
// case-insensitive substring match on the title. An empty query returns
// the full union.
func (a *App) Events(ctx context.Context, query string) ([]storage.Event, error) {
	events, err := a.Storage.SearchEvents(ctx, query)
	if err != nil {
		return nil, err
	}
	return append(events, filterByTitle(a.Holidays(), query)...), nil
}

func (a *App) GetEventsForDay(ctx context.Context, date time.Time) ([]storage.Event, error) {
	events, err := a.Storage.GetEventsForDay(ctx, date)
	if err != nil {
		return nil, err
	}
	start := util.TruncateToDay(date)
	return append(events, a.holidaysInRange(start, start.AddDate(0, 0, 1))...), nil
}

func (a *App) GetEventsForWeek(ctx context.Context, startDate time.Time) ([]storage.Event, error) {
	events, err := a.Storage.GetEventsForWeek(ctx, startDate)
	if err != nil {
		return nil, err
	}
	start := util.TruncateToDay(startDate)
	return append(events, a.holidaysInRange(start, start.AddDate(0, 0, 7))...), nil
}

func (a *App) GetEventsForMonth(ctx context.Context, startDate time.Time) ([]storage.Event, error) {
	events, err := a.Storage.GetEventsForMonth(ctx, startDate)
	if err != nil {
		return nil, err
	}
	start := util.TruncateToDay(startDate)
	return append(events, a.holidaysInRange(start, start.AddDate(0, 1, 0))...), nil
}

func (a *App) publish(kind string, e storage.Event, userID string) {
	if a.notifier == nil {
		return
	}
	data, err := json.Marshal(rabbit.EventMessage{Kind: kind, Event: e, UserID: userID})
	if err != nil {
		log.Errorf("failed to marshal %s message: %v", kind, err)
		return
	}
	if err := a.notifier.Publish(data); err != nil {
		log.Errorf("failed to publish %s message: %v", kind, err)
	}
}

func (a *App) holidaysInRange(startTime time.Time, endTime time.Time) []storage.Event {
	events := make([]storage.Event, 0)
	for _, event := range a.Holidays() {
		if !event.StartTime.Before(startTime) && event.StartTime.Before(endTime) {
			events = append(events, event)
		}
	}
	return events
}

func filterByTitle(events []storage.Event, query string) []storage.Event {
	if query == "" {
		return events
	}
	query = strings.ToLower(query)
	matched := make([]storage.Event, 0, len(events))
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Title), query) {
			matched = append(matched, event)
		}
	}
	return matched
}
