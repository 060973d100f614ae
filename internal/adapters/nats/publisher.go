package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

// Subjects for booking events. Ticket lifecycle events carry the full ticket;
// seat events carry just enough for availability fan-out.
const (
	subjectTicketIssued    = "booking.ticket.issued"
	subjectTicketCancelled = "booking.ticket.cancelled"
	subjectSeatsHeld       = "booking.seat.held"
	subjectSeatsReleased   = "booking.seat.released"
)

// SeatEvent is the payload of booking.seat.> messages.
type SeatEvent struct {
	TripID     string   `json:"trip_id"`
	TravelDate string   `json:"travel_date"`
	Seats      []string `json:"seats"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream, and ensures the booking
// streams exist.
func NewPublisher(url string) (*Publisher, error) {
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

	streams := []nats.StreamConfig{
		{
			Name:      "TICKETS",
			Subjects:  []string{"booking.ticket.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SEATS",
			Subjects:  []string{"booking.seat.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishJSON(subjectTicketIssued, ticket)
}

func (p *Publisher) PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error {
	return p.publishJSON(subjectTicketCancelled, ticket)
}

func (p *Publisher) PublishSeatsHeld(ctx context.Context, tripID, travelDate string, seats []string) error {
	return p.publishJSON(subjectSeatsHeld, SeatEvent{TripID: tripID, TravelDate: travelDate, Seats: seats})
}

func (p *Publisher) PublishSeatsReleased(ctx context.Context, tripID, travelDate string, seats []string) error {
	return p.publishJSON(subjectSeatsReleased, SeatEvent{TripID: tripID, TravelDate: travelDate, Seats: seats})
}

func (p *Publisher) publishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
