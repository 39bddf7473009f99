package sqlstorage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	sqlstorage "github.com/evanpr/kalender/internal/storage/sql"
	"github.com/stretchr/testify/require"
)

func createStorage(t *testing.T) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(sqlstorage.Config{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "calendar.db"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() {
		require.NoError(t, s.Close(ctx))
	})
	return s
}

func newEvent(title string, start time.Time) storage.Event {
	return storage.Event{
		Title:        title,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Category:     storage.CategoryMeeting,
		Description:  "description",
		ReminderTime: "30",
		SharedWith:   storage.SharedWith{"andi"},
	}
}

func compareEvents(t *testing.T, expected storage.Event, actual storage.Event) {
	t.Helper()
	require.True(t, expected.StartTime.Equal(actual.StartTime),
		"start time is not equal %q != %q", expected.StartTime, actual.StartTime)
	require.True(t, expected.EndTime.Equal(actual.EndTime),
		"end time is not equal %q != %q", expected.EndTime, actual.EndTime)
	expected.StartTime = actual.StartTime
	expected.EndTime = actual.EndTime
	require.Equal(t, expected, actual)
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	t.Run("add event", func(t *testing.T) {
		s := createStorage(t)
		e := newEvent("Standup", initDate)

		require.NoError(t, s.AddEvent(ctx, &e))
		require.NotEmpty(t, e.ID)

		got, err := s.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		compareEvents(t, e, got)
	})

	t.Run("update event", func(t *testing.T) {
		s := createStorage(t)
		e := newEvent("Standup", initDate)
		require.NoError(t, s.AddEvent(ctx, &e))

		e.Title = "updated title"
		e.Description = "updated description"
		e.ReminderTime = "45"
		e.SharedWith = append(e.SharedWith, "budi")
		require.NoError(t, s.UpdateEvent(ctx, e.ID, e))

		got, err := s.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		compareEvents(t, e, got)
	})

	t.Run("remove event", func(t *testing.T) {
		s := createStorage(t)
		e := newEvent("Standup", initDate)
		require.NoError(t, s.AddEvent(ctx, &e))

		require.NoError(t, s.RemoveEvent(ctx, e.ID))

		_, err := s.GetEvent(ctx, e.ID)
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("search by title", func(t *testing.T) {
		s := createStorage(t)
		for i, title := range []string{"Standup", "Planning", "standup prep"} {
			e := newEvent(title, initDate.Add(time.Duration(i)*time.Hour))
			require.NoError(t, s.AddEvent(ctx, &e))
		}

		events, err := s.SearchEvents(ctx, "STANDUP")
		require.NoError(t, err)
		require.Len(t, events, 2)

		events, err = s.SearchEvents(ctx, "")
		require.NoError(t, err)
		require.Len(t, events, 3)
	})

	t.Run("ranges", func(t *testing.T) {
		s := createStorage(t)
		e := newEvent("daily", initDate)
		for i := 0; i < 60; i++ {
			require.NoError(t, s.AddEvent(ctx, &e))
			e.ID = ""
			e.StartTime = e.StartTime.AddDate(0, 0, 1)
			e.EndTime = e.EndTime.AddDate(0, 0, 1)
		}

		list, err := s.GetEventsForDay(ctx, initDate)
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, err = s.GetEventsForWeek(ctx, initDate)
		require.NoError(t, err)
		require.Len(t, list, 7)

		list, err = s.GetEventsForMonth(ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, list, 28)
	})
}

func TestStorageNegativeCases(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	t.Run("update not exist event", func(t *testing.T) {
		s := createStorage(t)
		e := newEvent("Standup", initDate)

		require.ErrorIs(t, s.UpdateEvent(ctx, "___not_exists___", e), storage.ErrNotFoundEvent)
	})

	t.Run("delete not exist event", func(t *testing.T) {
		s := createStorage(t)

		require.ErrorIs(t, s.RemoveEvent(ctx, "___not_exists___"), storage.ErrNotFoundEvent)
	})

	t.Run("end before start", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Title: "bad range", StartTime: initDate, EndTime: initDate.Add(-time.Hour)}

		require.ErrorIs(t, s.AddEvent(ctx, &e), storage.ErrIncorrectEventTime)
	})

	t.Run("week must start on monday", func(t *testing.T) {
		s := createStorage(t)
		_, err := s.GetEventsForWeek(ctx, initDate.AddDate(0, 0, 1))
		require.ErrorIs(t, err, storage.ErrIncorrectStartDate)
	})
}
