package push

import (
	"context"
	"encoding/json"

	"github.com/evanpr/kalender/internal/app"
	"github.com/evanpr/kalender/internal/rabbit"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Listener consumes the inbound event queue and appends delivered events
// to the store. It is the receiving half of the event channel; the
// sending half lives in app.
type Listener struct {
	provider *rabbit.Provider
	app      *app.App
}

func NewListener(provider *rabbit.Provider, a *app.App) *Listener {
	return &Listener{provider: provider, app: a}
}

// Listen blocks until ctx is cancelled. Messages of the same kind arrive
// in order; no ordering holds across kinds.
func (l *Listener) Listen(ctx context.Context) error {
	return l.provider.Consume(ctx, func(msg amqp.Delivery) {
		var m rabbit.EventMessage
		if err := json.Unmarshal(msg.Body, &m); err != nil {
			log.Warnf("dropping malformed push message: %v", err)
			return
		}

		switch m.Kind {
		case rabbit.KindNewEvent:
			if err := l.app.ReceiveEvent(ctx, m.Event, false); err != nil {
				log.Warnf("dropping pushed event: %v", err)
			}
		case rabbit.KindSharedEvent:
			if err := l.app.ReceiveEvent(ctx, m.Event, true); err != nil {
				log.Warnf("dropping shared event: %v", err)
			}
		default:
			log.Warnf("ignoring push message of unknown kind %q", m.Kind)
		}
	})
}
