package internalhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/evanpr/kalender/internal/app"
	"github.com/evanpr/kalender/internal/ics"
	"github.com/evanpr/kalender/internal/storage"
	log "github.com/sirupsen/logrus"
)

type eventResponse struct {
	Event storage.Event `json:"event"`
}

type eventsResponse struct {
	Events []storage.Event `json:"events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var e storage.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.app.CreateEvent(r.Context(), e)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, eventResponse{Event: created})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var e storage.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.app.UpdateEvent(r.Context(), r.PathValue("id"), e); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, struct{}{})
}

func (s *Server) removeEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveEvent(r.Context(), r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, struct{}{})
}

func (s *Server) shareEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := s.app.ShareEvent(r.Context(), r.PathValue("id"), body.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, eventResponse{Event: e})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.Events(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, eventsResponse{Events: events})
}

func (s *Server) eventsForDay(w http.ResponseWriter, r *http.Request) {
	s.eventsForRange(w, r, s.app.GetEventsForDay)
}

func (s *Server) eventsForWeek(w http.ResponseWriter, r *http.Request) {
	s.eventsForRange(w, r, s.app.GetEventsForWeek)
}

func (s *Server) eventsForMonth(w http.ResponseWriter, r *http.Request) {
	s.eventsForRange(w, r, s.app.GetEventsForMonth)
}

func (s *Server) eventsForRange(
	w http.ResponseWriter,
	r *http.Request,
	get func(ctx context.Context, date time.Time) ([]storage.Event, error),
) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events, err := get(r.Context(), date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, eventsResponse{Events: events})
}

// setYear switches the selected year and refetches holidays. A fetch
// failure is logged only; the previous holiday set stays in place and the
// caller still gets a success response.
func (s *Server) setYear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Year < 1 {
		writeError(w, http.StatusBadRequest, errors.New("year must be a positive integer"))
		return
	}
	if err := s.app.SetYear(r.Context(), body.Year); err != nil {
		log.Errorf("holiday refresh for %d failed: %v", body.Year, err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.Events(r.Context(), "")
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename=`+ics.Filename)
	if _, err := w.Write([]byte(ics.Build(events))); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: err.Error()}); err != nil {
		log.Errorf("failed to write error response: %v", err)
	}
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidEvent),
		errors.Is(err, storage.ErrIncorrectEventTime),
		errors.Is(err, storage.ErrIncorrectStartDate),
		errors.Is(err, storage.ErrDuplicateEventID):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, storage.ErrNotFoundEvent):
		writeError(w, http.StatusNotFound, err)
	default:
		log.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
