package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
)

// --- Mock TicketRepository ---

type mockTicketRepo struct {
	createFn     func(ctx context.Context, t *domain.Ticket) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Ticket, error)
	seatsTakenFn func(ctx context.Context, tripID string, date time.Time) ([]string, error)
	cancelFn     func(ctx context.Context, id string) error
	markPaidFn   func(ctx context.Context, id string) error
}

func (m *mockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrTicketNotFound
}

func (m *mockTicketRepo) ListByTripDate(ctx context.Context, tripID string, date time.Time) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepo) SeatsTaken(ctx context.Context, tripID string, date time.Time) ([]string, error) {
	if m.seatsTakenFn != nil {
		return m.seatsTakenFn(ctx, tripID, date)
	}
	return nil, nil
}

func (m *mockTicketRepo) Cancel(ctx context.Context, id string) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id)
	}
	return nil
}

func (m *mockTicketRepo) MarkPaid(ctx context.Context, id string) error {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, id)
	}
	return nil
}

type mockBusTypeRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.BusType, error)
}

func (m *mockBusTypeRepo) GetByID(ctx context.Context, id string) (*domain.BusType, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrBusTypeNotFound
}

// --- Fixtures ---

func smallLayout() domain.SeatLayout {
	return domain.SeatLayout{
		Rows: 2, Cols: 2,
		Cells: []domain.SeatCell{
			{Kind: domain.CellSeat, SeatNo: "1", Row: 0, Col: 0},
			{Kind: domain.CellSeat, SeatNo: "2", Row: 0, Col: 1},
			{Kind: domain.CellSeat, SeatNo: "3", Row: 1, Col: 0},
			{Kind: domain.CellAisle, Row: 1, Col: 1},
		},
	}
}

func bookableTrip() *domain.TripSchedule {
	return &domain.TripSchedule{
		ID:            "trip-1",
		Name:          "Kabul Express",
		IsActive:      true,
		Frequency:     domain.FrequencyDaily,
		DepartureTime: "08:00",
		Price:         500,
		BusTypeID:     "bt-1",
		BusType:       &domain.BusType{ID: "bt-1", Name: "VIP 580", Layout: smallLayout()},
	}
}

func newTicketService(tickets *mockTicketRepo, trip *domain.TripSchedule, now time.Time) *usecases.TicketService {
	resolver := resolverFor(trip)
	validator := usecases.NewBookingValidator(resolver, 0, fixedClock(now), nil)
	return usecases.NewTicketService(tickets, &mockBusTypeRepo{}, resolver, validator, nil, 0, fixedClock(now))
}

func TestTicketService_Create(t *testing.T) {
	var created *domain.Ticket
	tickets := &mockTicketRepo{
		createFn: func(ctx context.Context, tk *domain.Ticket) error {
			created = tk
			return nil
		},
	}
	now := monday // midnight; departure 08:00 same day is 8h out
	svc := newTicketService(tickets, bookableTrip(), now)

	ticket, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Passengers: []domain.Passenger{
			{Name: "Ahmad", SeatNo: "1"},
			{Name: "Karim", SeatNo: "2"},
		},
		Requester: customer(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("ticket was not persisted")
	}
	if ticket.TotalPrice != 1000 {
		t.Errorf("expected total 1000 (2 seats x 500), got %v", ticket.TotalPrice)
	}
	if !ticket.PaymentDeadline.Equal(now.Add(usecases.DefaultHoldTTL)) {
		t.Errorf("unexpected payment deadline %v", ticket.PaymentDeadline)
	}
	if ticket.ID == "" {
		t.Error("expected generated ticket ID")
	}
}

func TestTicketService_Create_RejectedByWindow(t *testing.T) {
	trip := bookableTrip()
	trip.IsActive = false
	svc := newTicketService(&mockTicketRepo{}, trip, monday)

	_, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Passengers: []domain.Passenger{{Name: "Ahmad", SeatNo: "1"}},
		Requester:  customer(),
	})

	var rejected *usecases.BookingRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected BookingRejectedError, got %v", err)
	}
	if rejected.Result.Reason != domain.ReasonTripInactive {
		t.Errorf("expected trip_inactive, got %s", rejected.Result.Reason)
	}
}

func TestTicketService_Create_SeatConflict(t *testing.T) {
	tickets := &mockTicketRepo{
		seatsTakenFn: func(ctx context.Context, tripID string, date time.Time) ([]string, error) {
			return []string{"2", "3"}, nil
		},
	}
	svc := newTicketService(tickets, bookableTrip(), monday)

	_, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Passengers: []domain.Passenger{{Name: "Ahmad", SeatNo: "2"}},
		Requester:  customer(),
	})
	if !errors.Is(err, ports.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}
}

func TestTicketService_Create_UnknownSeat(t *testing.T) {
	svc := newTicketService(&mockTicketRepo{}, bookableTrip(), monday)

	_, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Passengers: []domain.Passenger{{Name: "Ahmad", SeatNo: "99"}},
		Requester:  customer(),
	})
	if err == nil {
		t.Fatal("expected error for seat outside layout")
	}
}

func TestTicketService_Create_DuplicateSeatInRequest(t *testing.T) {
	svc := newTicketService(&mockTicketRepo{}, bookableTrip(), monday)

	_, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Passengers: []domain.Passenger{
			{Name: "Ahmad", SeatNo: "1"},
			{Name: "Karim", SeatNo: "1"},
		},
		Requester: customer(),
	})
	if err == nil {
		t.Fatal("expected error for duplicate seat in one request")
	}
}

func TestTicketService_Create_NoPassengers(t *testing.T) {
	svc := newTicketService(&mockTicketRepo{}, bookableTrip(), monday)

	_, err := svc.Create(context.Background(), usecases.CreateTicketInput{
		TripID:     "trip-1",
		TravelDate: "2026-03-02",
		Requester:  customer(),
	})
	if err == nil {
		t.Fatal("expected error for empty passenger list")
	}
}

func TestTicketService_Cancel_Idempotent(t *testing.T) {
	cancelCalls := 0
	tickets := &mockTicketRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return &domain.Ticket{ID: id, IsCancelled: true}, nil
		},
		cancelFn: func(ctx context.Context, id string) error {
			cancelCalls++
			return nil
		},
	}
	svc := newTicketService(tickets, bookableTrip(), monday)

	ticket, err := svc.Cancel(context.Background(), "tk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ticket.IsCancelled {
		t.Error("expected cancelled ticket")
	}
	if cancelCalls != 0 {
		t.Errorf("cancelling a cancelled ticket should be a no-op, got %d calls", cancelCalls)
	}
}

func TestTicketService_MarkPaid_CancelledTicket(t *testing.T) {
	tickets := &mockTicketRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Ticket, error) {
			return &domain.Ticket{ID: id, IsCancelled: true}, nil
		},
	}
	svc := newTicketService(tickets, bookableTrip(), monday)

	if _, err := svc.MarkPaid(context.Background(), "tk-1"); err == nil {
		t.Fatal("expected error paying a cancelled ticket")
	}
}

func TestTicketService_Availability(t *testing.T) {
	tickets := &mockTicketRepo{
		seatsTakenFn: func(ctx context.Context, tripID string, date time.Time) ([]string, error) {
			return []string{"1"}, nil
		},
	}
	svc := newTicketService(tickets, bookableTrip(), monday)

	avail, err := svc.Availability(context.Background(), "trip-1", "2026-03-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.Capacity != 3 {
		t.Errorf("expected capacity 3 (aisle cell excluded), got %d", avail.Capacity)
	}
	if avail.Available != 2 {
		t.Errorf("expected 2 available, got %d", avail.Available)
	}
}
