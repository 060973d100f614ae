package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream. The
// notifier binary consumes ticket events through it.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeTicketIssued(ctx context.Context, handler func(ctx context.Context, ticket *domain.Ticket) error) error {
	return s.subscribeTicket(ctx, subjectTicketIssued, "ticket-issued-notifier", handler)
}

func (s *Subscriber) SubscribeTicketCancelled(ctx context.Context, handler func(ctx context.Context, ticket *domain.Ticket) error) error {
	return s.subscribeTicket(ctx, subjectTicketCancelled, "ticket-cancelled-notifier", handler)
}

func (s *Subscriber) subscribeTicket(ctx context.Context, subject, durable string, handler func(ctx context.Context, ticket *domain.Ticket) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var ticket domain.Ticket
		if err := json.Unmarshal(msg.Data, &ticket); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &ticket); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
