package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://date.nager.at"

type Config struct {
	BaseURL     string
	CountryCode string
}

// Fetcher loads public holidays from the Nager.Date API.
type Fetcher struct {
	client      *http.Client
	baseURL     string
	countryCode string
}

type publicHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
}

func NewFetcher(config Config) *Fetcher {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Fetcher{
		client:      &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		countryCode: config.CountryCode,
	}
}

// FetchYear requests all public holidays of the given year and maps them
// into holiday events. The caller replaces its whole holiday set with the
// result; on error the previous set stays in place.
func (f *Fetcher) FetchYear(ctx context.Context, year int) ([]storage.Event, error) {
	url := fmt.Sprintf("%s/Api/v2/PublicHoliday/%d/%s", f.baseURL, year, f.countryCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch holidays: unexpected status %s", resp.Status)
	}

	var records []publicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}

	events := make([]storage.Event, 0, len(records))
	for _, record := range records {
		date, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			log.Warnf("skipping holiday %q with bad date %q: %v", record.LocalName, record.Date, err)
			continue
		}
		events = append(events, storage.Event{
			Title:     record.LocalName,
			StartTime: date,
			EndTime:   date,
			Category:  storage.CategoryHoliday,
			Holiday:   true,
		})
	}
	return events, nil
}
