package ics

import (
	ical "github.com/arran4/golang-ical"
	"github.com/evanpr/kalender/internal/storage"
	"github.com/google/uuid"
)

const (
	Filename    = "events.ics"
	ContentType = "text/calendar; charset=utf-8"
)

// Build serializes the event set into a single VCALENDAR with one VEVENT
// per event. DTSTART is written in compact UTC basic format; text fields
// are escaped by the serializer.
func Build(events []storage.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//kalender//EN")

	for _, event := range events {
		uid := event.ID
		if uid == "" {
			uid = uuid.NewString()
		}
		ve := cal.AddEvent(uid)
		ve.SetSummary(event.Title)
		ve.SetStartAt(event.StartTime.UTC())
		if !event.EndTime.IsZero() {
			ve.SetEndAt(event.EndTime.UTC())
		}
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
	}
	return cal.Serialize()
}
