package memorystorage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	"github.com/evanpr/kalender/internal/util"
	"github.com/google/uuid"
)

type Storage struct {
	mu           sync.RWMutex
	data         map[string]storage.Event
	order        []string
	firstWeekDay time.Weekday
}

func New() *Storage {
	return &Storage{data: make(map[string]storage.Event), firstWeekDay: time.Monday}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	if err := storage.ValidateTimes(*e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, ok := s.data[e.ID]; ok {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	s.data[e.ID] = *e
	s.order = append(s.order, e.ID)
	return nil
}

func (s *Storage) UpdateEvent(_ context.Context, id string, e storage.Event) error {
	if err := storage.ValidateTimes(e); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	e.ID = id
	s.data[id] = e
	return nil
}

func (s *Storage) RemoveEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.data, id)
	for i, eid := range s.order {
		if eid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) GetEvent(_ context.Context, id string) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("failed to get event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return e, nil
}

// ListEvents returns events in insertion order.
func (s *Storage) ListEvents(_ context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]storage.Event, 0, len(s.order))
	for _, id := range s.order {
		events = append(events, s.data[id])
	}
	return events, nil
}

func (s *Storage) SearchEvents(ctx context.Context, query string) ([]storage.Event, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return events, nil
	}
	query = strings.ToLower(query)
	matched := make([]storage.Event, 0, len(events))
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Title), query) {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (s *Storage) GetEventsForDay(_ context.Context, date time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(date)
	endTime := startTime.AddDate(0, 0, 1)
	return s.selectByRange(startTime, endTime)
}

func (s *Storage) GetEventsForWeek(_ context.Context, startDate time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(startDate)
	if startTime.Weekday() != s.firstWeekDay {
		return nil, storage.ErrIncorrectStartDate
	}
	endTime := startTime.AddDate(0, 0, 7)
	return s.selectByRange(startTime, endTime)
}

func (s *Storage) GetEventsForMonth(_ context.Context, startDate time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(startDate)
	if startTime.Day() != 1 {
		return nil, storage.ErrIncorrectStartDate
	}
	endTime := startTime.AddDate(0, 1, 0)
	return s.selectByRange(startTime, endTime)
}

// Select in range [startTime:endTime).
func (s *Storage) selectByRange(startTime time.Time, endTime time.Time) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		event := s.data[id]
		if (event.StartTime.Equal(startTime) || event.StartTime.After(startTime)) && event.StartTime.Before(endTime) {
			events = append(events, event)
		}
	}
	return events, nil
}
