package reminder

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Scheduler keeps one pending one-shot timer per event ID. Arming an
// already armed ID replaces the pending timer, removing an event cancels
// it. Pending reminders are lost with the process.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	notify func(e storage.Event)
}

func New(notify func(e storage.Event)) *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer), notify: notify}
}

// Arm schedules a reminder at startTime minus the event's reminder offset.
// A fire time that already passed never produces a notification.
func (s *Scheduler) Arm(e storage.Event) {
	fireAt := e.StartTime.Add(-time.Duration(Minutes(e)) * time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[e.ID]; ok {
		t.Stop()
		delete(s.timers, e.ID)
	}

	delay := time.Until(fireAt)
	if delay <= 0 {
		return
	}

	log.Debugf("arming reminder for event %q at %s", e.ID, fireAt)
	s.timers[e.ID] = time.AfterFunc(delay, func() {
		s.fire(e)
	})
}

func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) fire(e storage.Event) {
	s.mu.Lock()
	delete(s.timers, e.ID)
	s.mu.Unlock()

	log.Infof("reminder: %q is about to start", e.Title)
	s.notify(e)
}

// Minutes parses the textual reminder offset, falling back to the default
// on absent or unparseable values.
func Minutes(e storage.Event) int {
	minutes, err := strconv.Atoi(strings.TrimSpace(e.ReminderTime))
	if err != nil {
		return storage.DefaultReminderMinutes
	}
	return minutes
}
