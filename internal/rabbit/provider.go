package rabbit

import (
	"context"
	"fmt"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	"github.com/streadway/amqp"
)

// Message kinds carried on the event channel.
const (
	KindNewEvent    = "newEvent"
	KindSharedEvent = "sharedEvent"
	KindCreateEvent = "createEvent"
	KindShareEvent  = "shareEvent"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
}

// EventMessage is the envelope exchanged on the event queues.
type EventMessage struct {
	Kind   string        `json:"kind"`
	Event  storage.Event `json:"event"`
	UserID string        `json:"userId,omitempty"`
}

// ReminderMessage is published on the notify queue when a reminder fires.
type ReminderMessage struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Time  time.Time `json:"time"`
}

type Provider struct {
	conn       *amqp.Connection
	queue      amqp.Queue
	channel    *amqp.Channel
	connString string
	queueName  string
}

func New(config Config, queue string) *Provider {
	return &Provider{
		connString: fmt.Sprintf(
			"amqp://%s:%s@%s:%d/",
			config.User,
			config.Password,
			config.Host,
			config.Port,
		),
		queueName: queue,
	}
}

func (r *Provider) Connect() error {
	var err error
	r.conn, err = amqp.Dial(r.connString)
	if err != nil {
		return err
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		return err
	}
	r.queue, err = r.channel.QueueDeclare(
		r.queueName,
		false,
		true,
		false,
		false,
		nil,
	)
	return err
}

func (r *Provider) Close() {
	r.conn.Close()
}

func (r *Provider) Publish(body []byte) error {
	return r.channel.Publish(
		"",           // exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

type MessageProcess = func(msg amqp.Delivery)

func (r *Provider) Consume(ctx context.Context, process MessageProcess) error {
	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		true,         // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if ok {
				process(m)
			}
		}
	}
}
