package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/persiandate"
)

// DefaultHoldTTL is how long an unpaid ticket holds its seats before the
// hold-expiry worker cancels it.
const DefaultHoldTTL = 30 * time.Minute

// BookingRejectedError wraps a validation rejection so ticket creation can
// surface the reason taxonomy without losing the typed result.
type BookingRejectedError struct {
	Result domain.ValidationResult
}

func (e *BookingRejectedError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Result.Reason)
}

// CreateTicketInput is a ticket creation request.
type CreateTicketInput struct {
	TripID             string             `json:"trip_id"`
	TravelDate         string             `json:"travel_date"`
	BoardingTerminalID string             `json:"boarding_terminal_id,omitempty"`
	Passengers         []domain.Passenger `json:"passengers"`
	Requester          domain.Actor       `json:"-"`
}

// TicketService creates and manages tickets. Every creation runs through the
// booking-window validator and a seat-availability check before persisting.
type TicketService struct {
	tickets   ports.TicketRepository
	busTypes  ports.BusTypeRepository
	schedules ScheduleResolver
	validator *BookingValidator
	events    ports.EventPublisher
	holdTTL   time.Duration
	now       func() time.Time
}

// NewTicketService creates a new TicketService. events may be nil; holdTTL
// and now fall back to defaults when zero.
func NewTicketService(
	tickets ports.TicketRepository,
	busTypes ports.BusTypeRepository,
	schedules ScheduleResolver,
	validator *BookingValidator,
	events ports.EventPublisher,
	holdTTL time.Duration,
	now func() time.Time,
) *TicketService {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:   tickets,
		busTypes:  busTypes,
		schedules: schedules,
		validator: validator,
		events:    events,
		holdTTL:   holdTTL,
		now:       now,
	}
}

// Create validates the booking window, checks seat availability, and
// persists the ticket. The seats are held until the payment deadline.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*domain.Ticket, error) {
	if len(in.Passengers) == 0 {
		return nil, fmt.Errorf("at least one passenger is required")
	}

	res := s.validator.Validate(ctx, domain.BookingRequest{
		TripID:             in.TripID,
		TravelDate:         in.TravelDate,
		BoardingTerminalID: in.BoardingTerminalID,
		Requester:          in.Requester,
	})
	if !res.OK {
		return nil, &BookingRejectedError{Result: res}
	}

	trip, err := s.schedules.Resolve(ctx, in.TripID)
	if err != nil {
		return nil, fmt.Errorf("resolve trip: %w", err)
	}

	layout, err := s.layoutFor(ctx, trip)
	if err != nil {
		return nil, err
	}

	day, err := persiandate.Normalize(in.TravelDate)
	if err != nil {
		return nil, fmt.Errorf("normalize travel date: %w", err)
	}
	now := s.now()
	travelDate := day.Time(now.Location())

	if err := s.checkSeats(ctx, trip.ID, travelDate, layout, in.Passengers); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:              newTicketID(),
		TripID:          trip.ID,
		TravelDate:      travelDate,
		BoardingID:      in.BoardingTerminalID,
		Passengers:      in.Passengers,
		BookedByID:      in.Requester.ID,
		TotalPrice:      trip.Price * float64(len(in.Passengers)),
		PaymentDeadline: now.Add(s.holdTTL),
		CreatedAt:       now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if s.events != nil {
		dateStr := travelDate.Format("2006-01-02")
		if err := s.events.PublishTicketIssued(ctx, ticket); err != nil {
			slog.Warn("publish ticket issued failed", "ticket_id", ticket.ID, "error", err)
		}
		_ = s.events.PublishSeatsHeld(ctx, trip.ID, dateStr, ticket.SeatNumbers())
	}

	return ticket, nil
}

// layoutFor returns the trip's seat layout, loading the bus type when it was
// not embedded at resolution depth.
func (s *TicketService) layoutFor(ctx context.Context, trip *domain.TripSchedule) (domain.SeatLayout, error) {
	if trip.BusType != nil {
		return trip.BusType.Layout, nil
	}
	if trip.BusTypeID == "" {
		return domain.SeatLayout{}, fmt.Errorf("trip %s has no bus type", trip.ID)
	}
	bt, err := s.busTypes.GetByID(ctx, trip.BusTypeID)
	if err != nil {
		return domain.SeatLayout{}, fmt.Errorf("load bus type: %w", err)
	}
	return bt.Layout, nil
}

// checkSeats verifies the requested seats exist in the layout, are unique
// within the request, and are not already held for the travel date.
func (s *TicketService) checkSeats(ctx context.Context, tripID string, travelDate time.Time, layout domain.SeatLayout, passengers []domain.Passenger) error {
	requested := make(map[string]struct{}, len(passengers))
	for _, p := range passengers {
		if p.SeatNo == "" {
			return fmt.Errorf("passenger %q has no seat", p.Name)
		}
		if !layout.HasSeat(p.SeatNo) {
			return fmt.Errorf("seat %q does not exist on this bus", p.SeatNo)
		}
		if _, dup := requested[p.SeatNo]; dup {
			return fmt.Errorf("seat %q requested twice", p.SeatNo)
		}
		requested[p.SeatNo] = struct{}{}
	}

	taken, err := s.tickets.SeatsTaken(ctx, tripID, travelDate)
	if err != nil {
		return fmt.Errorf("check seat availability: %w", err)
	}
	for _, seat := range taken {
		if _, clash := requested[seat]; clash {
			return fmt.Errorf("%w: %s", ports.ErrSeatTaken, seat)
		}
	}
	return nil
}

// Get returns a ticket by ID.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListForTrip returns the live tickets for a trip on a travel date, in
// booking order. Used by agents working a departure manifest.
func (s *TicketService) ListForTrip(ctx context.Context, tripID, travelDate string) ([]domain.Ticket, error) {
	day, err := persiandate.Normalize(travelDate)
	if err != nil {
		return nil, fmt.Errorf("normalize travel date: %w", err)
	}
	date := day.Time(s.now().Location())
	return s.tickets.ListByTripDate(ctx, tripID, date)
}

// Cancel voids a ticket and releases its seats. Cancelling an already
// cancelled ticket is a no-op.
func (s *TicketService) Cancel(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsCancelled {
		return ticket, nil
	}

	if err := s.tickets.Cancel(ctx, id); err != nil {
		return nil, fmt.Errorf("cancel ticket: %w", err)
	}
	ticket.IsCancelled = true

	if s.events != nil {
		dateStr := ticket.TravelDate.Format("2006-01-02")
		_ = s.events.PublishTicketCancelled(ctx, ticket)
		_ = s.events.PublishSeatsReleased(ctx, ticket.TripID, dateStr, ticket.SeatNumbers())
	}
	return ticket, nil
}

// MarkPaid settles a ticket before its payment deadline.
func (s *TicketService) MarkPaid(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsCancelled {
		return nil, fmt.Errorf("ticket %s is cancelled", id)
	}
	if ticket.IsPaid {
		return ticket, nil
	}
	if err := s.tickets.MarkPaid(ctx, id); err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	ticket.IsPaid = true
	return ticket, nil
}

// Availability computes seat occupancy for a trip on a travel date.
func (s *TicketService) Availability(ctx context.Context, tripID, travelDate string) (*domain.SeatAvailability, error) {
	trip, err := s.schedules.Resolve(ctx, tripID)
	if err != nil {
		return nil, err
	}
	layout, err := s.layoutFor(ctx, trip)
	if err != nil {
		return nil, err
	}

	day, err := persiandate.Normalize(travelDate)
	if err != nil {
		return nil, fmt.Errorf("normalize travel date: %w", err)
	}
	date := day.Time(s.now().Location())

	taken, err := s.tickets.SeatsTaken(ctx, tripID, date)
	if err != nil {
		return nil, fmt.Errorf("seats taken: %w", err)
	}

	capacity := layout.Capacity()
	return &domain.SeatAvailability{
		TripID:     tripID,
		TravelDate: date,
		Capacity:   capacity,
		Taken:      taken,
		Available:  capacity - len(taken),
	}, nil
}

func newTicketID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("tk-%d", time.Now().UnixNano())
	}
	return "tk-" + hex.EncodeToString(b)
}
