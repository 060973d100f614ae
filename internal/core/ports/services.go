package ports

import (
	"context"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

// EventPublisher publishes booking events to a message broker.
type EventPublisher interface {
	PublishTicketIssued(ctx context.Context, ticket *domain.Ticket) error
	PublishTicketCancelled(ctx context.Context, ticket *domain.Ticket) error
	PublishSeatsHeld(ctx context.Context, tripID string, travelDate string, seats []string) error
	PublishSeatsReleased(ctx context.Context, tripID string, travelDate string, seats []string) error
}

// EventSubscriber consumes booking events from a message broker.
type EventSubscriber interface {
	SubscribeTicketIssued(ctx context.Context, handler func(ctx context.Context, ticket *domain.Ticket) error) error
	SubscribeTicketCancelled(ctx context.Context, handler func(ctx context.Context, ticket *domain.Ticket) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends booking confirmations (SMS, push, etc.).
type NotificationService interface {
	SendSMS(ctx context.Context, phone, message string) error
}
