package holiday_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evanpr/kalender/internal/holiday"
	"github.com/stretchr/testify/require"
)

func TestFetchYear(t *testing.T) {
	ctx := context.Background()

	t.Run("maps holidays into events", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			require.Equal(t, "/Api/v2/PublicHoliday/2025/ID", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"date": "2025-01-01", "localName": "Tahun Baru", "name": "New Year's Day"},
				{"date": "2025-08-17", "localName": "Hari Kemerdekaan", "name": "Independence Day"}
			]`))
		}))
		defer srv.Close()

		f := holiday.NewFetcher(holiday.Config{BaseURL: srv.URL, CountryCode: "ID"})
		events, err := f.FetchYear(ctx, 2025)
		require.NoError(t, err)
		require.Equal(t, 1, requests)
		require.Len(t, events, 2)

		require.Equal(t, "Tahun Baru", events[0].Title)
		require.True(t, events[0].StartTime.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		require.True(t, events[0].EndTime.Equal(events[0].StartTime))
		require.True(t, events[0].Holiday)
	})

	t.Run("bad date records are skipped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"date": "not-a-date", "localName": "Broken"},
				{"date": "2025-01-01", "localName": "Tahun Baru"}
			]`))
		}))
		defer srv.Close()

		f := holiday.NewFetcher(holiday.Config{BaseURL: srv.URL, CountryCode: "ID"})
		events, err := f.FetchYear(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "Tahun Baru", events[0].Title)
	})

	t.Run("unexpected status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := holiday.NewFetcher(holiday.Config{BaseURL: srv.URL, CountryCode: "ID"})
		_, err := f.FetchYear(ctx, 2025)
		require.Error(t, err)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"oops": true}`))
		}))
		defer srv.Close()

		f := holiday.NewFetcher(holiday.Config{BaseURL: srv.URL, CountryCode: "ID"})
		_, err := f.FetchYear(ctx, 2025)
		require.Error(t, err)
	})

	t.Run("unreachable service is an error", func(t *testing.T) {
		f := holiday.NewFetcher(holiday.Config{BaseURL: "http://127.0.0.1:1", CountryCode: "ID"})
		_, err := f.FetchYear(ctx, 2025)
		require.Error(t, err)
	})
}
