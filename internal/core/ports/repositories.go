package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

// Sentinel lookup errors. Repositories return these wrapped so callers can
// distinguish a missing row from an unreachable store.
var (
	ErrTripNotFound     = errors.New("trip schedule not found")
	ErrTerminalNotFound = errors.New("terminal not found")
	ErrBusTypeNotFound  = errors.New("bus type not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrSeatTaken        = errors.New("seat already taken")
)

// ScheduleRepository reads trip schedules. GetTripSchedule resolves with
// enough relational depth to materialize the ordered stop list (terminal
// identities, stop times, pickup/dropoff flags) and the bus type.
type ScheduleRepository interface {
	GetTripSchedule(ctx context.Context, id string) (*domain.TripSchedule, error)
	ListActive(ctx context.Context) ([]domain.TripSchedule, error)
}

// TerminalRepository reads terminals.
type TerminalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Terminal, error)
	List(ctx context.Context) ([]domain.Terminal, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Terminal, error)
}

// BusTypeRepository reads bus types and their seat layouts.
type BusTypeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.BusType, error)
}

// TicketRepository persists tickets and their passenger seats.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByTripDate(ctx context.Context, tripID string, travelDate time.Time) ([]domain.Ticket, error)
	// SeatsTaken returns the seat numbers held by live (non-cancelled)
	// tickets for a trip on a travel date.
	SeatsTaken(ctx context.Context, tripID string, travelDate time.Time) ([]string, error)
	Cancel(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
}

// HoldScanner lists unpaid tickets whose payment deadline has passed. Used by
// the hold-expiry worker to release abandoned seat holds.
type HoldScanner interface {
	ListExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]domain.Ticket, error)
}
