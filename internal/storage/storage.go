package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEventID   = errors.New("event with same ID exists")
	ErrNotFoundEvent      = errors.New("event not found")
	ErrIncorrectStartDate = errors.New("date should be a first day of requested period")
	ErrIncorrectEventTime = errors.New("incorrect event time")
)

type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e *Event) error
	UpdateEvent(ctx context.Context, id string, e Event) error
	RemoveEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	SearchEvents(ctx context.Context, query string) ([]Event, error)
	GetEventsForDay(ctx context.Context, date time.Time) ([]Event, error)
	GetEventsForWeek(ctx context.Context, startDate time.Time) ([]Event, error)
	GetEventsForMonth(ctx context.Context, startDate time.Time) ([]Event, error)
}

// ValidateTimes checks the start/end pair common to every storage variant.
// End is optional; when present it must not precede start.
func ValidateTimes(e Event) error {
	if e.StartTime.IsZero() {
		return ErrIncorrectEventTime
	}
	if !e.EndTime.IsZero() && e.EndTime.Before(e.StartTime) {
		return ErrIncorrectEventTime
	}
	return nil
}
