package ics_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/evanpr/kalender/internal/ics"
	"github.com/evanpr/kalender/internal/storage"
	"github.com/stretchr/testify/require"
)

var dtstartPattern = regexp.MustCompile(`DTSTART:\d{8}T\d{6}Z`)

func TestBuild(t *testing.T) {
	start := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

	t.Run("one vevent per event", func(t *testing.T) {
		events := []storage.Event{
			{ID: "1", Title: "Standup", StartTime: start},
			{ID: "2", Title: "Planning", StartTime: start.Add(time.Hour)},
			{ID: "3", Title: "Tahun Baru", StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Holiday: true},
		}

		out := ics.Build(events)

		require.Equal(t, 1, strings.Count(out, "BEGIN:VCALENDAR"))
		require.Equal(t, 1, strings.Count(out, "END:VCALENDAR"))
		require.Equal(t, len(events), strings.Count(out, "BEGIN:VEVENT"))
		require.Equal(t, len(events), strings.Count(out, "END:VEVENT"))
		require.Equal(t, len(events), strings.Count(out, "SUMMARY:"))
		require.Len(t, dtstartPattern.FindAllString(out, -1), len(events))
		require.Contains(t, out, "SUMMARY:Standup")
		require.Contains(t, out, "DTSTART:20250102T090000Z")
	})

	t.Run("start is converted to utc", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*60*60)
		out := ics.Build([]storage.Event{
			{ID: "1", Title: "Standup", StartTime: time.Date(2025, 1, 2, 9, 0, 0, 0, jakarta)},
		})

		require.Contains(t, out, "DTSTART:20250102T020000Z")
	})

	t.Run("empty set is a bare envelope", func(t *testing.T) {
		out := ics.Build(nil)

		require.Contains(t, out, "BEGIN:VCALENDAR")
		require.NotContains(t, out, "BEGIN:VEVENT")
	})

	t.Run("special characters survive as escaped text", func(t *testing.T) {
		out := ics.Build([]storage.Event{
			{ID: "1", Title: "lunch; with, friends", StartTime: start},
		})

		// Reserved characters must not terminate the SUMMARY value.
		require.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
		require.Contains(t, out, "lunch")
	})
}
