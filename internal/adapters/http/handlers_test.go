package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/http"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
)

// ---- Mock repositories ----

type mockTerminalRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Terminal, error)
	listFn    func(ctx context.Context) ([]domain.Terminal, error)
	searchFn  func(ctx context.Context, query string, limit int) ([]domain.Terminal, error)
}

func (m *mockTerminalRepo) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrTerminalNotFound
}
func (m *mockTerminalRepo) List(ctx context.Context) ([]domain.Terminal, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockTerminalRepo) Search(ctx context.Context, query string, limit int) ([]domain.Terminal, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

type mockScheduleRepo struct {
	getFn        func(ctx context.Context, id string) (*domain.TripSchedule, error)
	listActiveFn func(ctx context.Context) ([]domain.TripSchedule, error)
}

func (m *mockScheduleRepo) GetTripSchedule(ctx context.Context, id string) (*domain.TripSchedule, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, ports.ErrTripNotFound
}
func (m *mockScheduleRepo) ListActive(ctx context.Context) ([]domain.TripSchedule, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
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

// ---- Test helpers ----

// testClock is midnight on Monday 2026-03-02.
var testClock = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func testTrip() *domain.TripSchedule {
	return &domain.TripSchedule{
		ID:            "trip-1",
		Name:          "Kabul Express",
		IsActive:      true,
		Frequency:     domain.FrequencyDaily,
		DepartureTime: "08:00",
		Price:         500,
		BusTypeID:     "bt-1",
		BusType: &domain.BusType{
			ID:   "bt-1",
			Name: "VIP 580",
			Layout: domain.SeatLayout{
				Rows: 1, Cols: 2,
				Cells: []domain.SeatCell{
					{Kind: domain.CellSeat, SeatNo: "1", Row: 0, Col: 0},
					{Kind: domain.CellSeat, SeatNo: "2", Row: 0, Col: 1},
				},
			},
		},
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type depOptions struct {
	terminals *mockTerminalRepo
	schedules *mockScheduleRepo
	busTypes  *mockBusTypeRepo
	tickets   *mockTicketRepo
}

func makeDeps(opts depOptions) *handler.Dependencies {
	if opts.terminals == nil {
		opts.terminals = &mockTerminalRepo{}
	}
	if opts.schedules == nil {
		opts.schedules = &mockScheduleRepo{}
	}
	if opts.busTypes == nil {
		opts.busTypes = &mockBusTypeRepo{}
	}
	if opts.tickets == nil {
		opts.tickets = &mockTicketRepo{}
	}

	trips := usecases.NewScheduleService(opts.schedules, fixedNow)
	validator := usecases.NewBookingValidator(trips, 0, fixedNow, nil)
	return &handler.Dependencies{
		Terminals: usecases.NewTerminalService(opts.terminals, nil),
		Trips:     trips,
		BusTypes:  usecases.NewBusTypeService(opts.busTypes, nil),
		Tickets:   usecases.NewTicketService(opts.tickets, opts.busTypes, trips, validator, nil, 0, fixedNow),
		Validator: validator,
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Terminal handler tests ----

func TestListTerminals_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		terminals: &mockTerminalRepo{
			listFn: func(ctx context.Context) ([]domain.Terminal, error) {
				return []domain.Terminal{
					{ID: "t1", Name: "Kabul Central", Province: "Kabul"},
					{ID: "t2", Name: "Herat Gate", Province: "Herat"},
				}, nil
			},
		},
	}))

	req := httptest.NewRequest("GET", "/v1/terminals", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Terminal `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 terminals, got %d", len(result.Data))
	}
}

func TestListTerminals_Pagination(t *testing.T) {
	terminals := make([]domain.Terminal, 5)
	for i := range terminals {
		terminals[i] = domain.Terminal{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Terminal %d", i)}
	}
	app := setupApp(makeDeps(depOptions{
		terminals: &mockTerminalRepo{
			listFn: func(ctx context.Context) ([]domain.Terminal, error) { return terminals, nil },
		},
	}))

	req := httptest.NewRequest("GET", "/v1/terminals?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Terminal `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 || len(result.Data) != 2 || result.Pagination.Offset != 2 {
		t.Errorf("unexpected page: %+v", result.Pagination)
	}
}

func TestSearchTerminals_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/terminals/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestGetTerminal_NotFound(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/terminals/nonexistent-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetTerminal_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		terminals: &mockTerminalRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Terminal, error) {
				return &domain.Terminal{ID: id, Name: "Kabul Central", Province: "Kabul"}, nil
			},
		},
	}))

	req := httptest.NewRequest("GET", "/v1/terminals/t-123", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var terminal domain.Terminal
	json.NewDecoder(resp.Body).Decode(&terminal)
	if terminal.Name != "Kabul Central" {
		t.Errorf("expected Kabul Central, got %s", terminal.Name)
	}
}

// ---- Trip handler tests ----

func TestGetTrip_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) {
				trip := testTrip()
				trip.ID = id
				return trip, nil
			},
		},
	}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-9", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var trip domain.TripSchedule
	json.NewDecoder(resp.Body).Decode(&trip)
	if trip.Name != "Kabul Express" {
		t.Errorf("unexpected trip name: %s", trip.Name)
	}
}

func TestGetTrip_NotFound(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/trips/bad-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTripDates_Success(t *testing.T) {
	trip := testTrip()
	trip.Frequency = domain.FrequencySpecificDays
	trip.Days = []domain.Weekday{domain.Monday, domain.Thursday}
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return trip, nil },
		},
	}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/dates?days=7", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Dates []string `json:"dates"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	// Monday 2nd and Thursday 5th fall inside the 7-day horizon.
	if len(result.Dates) != 2 {
		t.Fatalf("expected 2 dates, got %v", result.Dates)
	}
	if result.Dates[0] != "2026-03-02" || result.Dates[1] != "2026-03-05" {
		t.Errorf("unexpected dates: %v", result.Dates)
	}
}

func TestTripSeats_MissingDate(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/seats", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTripSeats_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return testTrip(), nil },
		},
		tickets: &mockTicketRepo{
			seatsTakenFn: func(ctx context.Context, tripID string, date time.Time) ([]string, error) {
				return []string{"1"}, nil
			},
		},
	}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/seats?date=2026-03-02", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var avail domain.SeatAvailability
	json.NewDecoder(resp.Body).Decode(&avail)
	if avail.Capacity != 2 || avail.Available != 1 {
		t.Errorf("unexpected availability: %+v", avail)
	}
}

func TestListTripTickets_RequiresAgent(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/tickets?date=2026-03-02", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 without agent role, got %d", resp.StatusCode)
	}
}

func TestListTripTickets_AsAgent(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		tickets: &mockTicketRepo{},
	}))

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/tickets?date=2026-03-02", nil)
	req.Header.Set("X-Actor-ID", "u1")
	req.Header.Set("X-Actor-Roles", "agent")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// ---- Booking validation tests ----

func TestValidateBooking_Accepted(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return testTrip(), nil },
		},
	}))

	body := strings.NewReader(`{"trip_id":"trip-1","travel_date":"2026-03-02"}`)
	req := httptest.NewRequest("POST", "/v1/bookings/validate", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res domain.ValidationResult
	json.NewDecoder(resp.Body).Decode(&res)
	if !res.OK {
		t.Errorf("expected accepted, got %s: %s", res.Reason, res.Detail)
	}
}

func TestValidateBooking_TooClose(t *testing.T) {
	trip := testTrip()
	trip.DepartureTime = "01:00" // one hour after the fixed clock
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return trip, nil },
		},
	}))

	body := strings.NewReader(`{"trip_id":"trip-1","travel_date":"2026-03-02"}`)
	req := httptest.NewRequest("POST", "/v1/bookings/validate", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res domain.ValidationResult
	json.NewDecoder(resp.Body).Decode(&res)
	if res.OK || res.Reason != domain.ReasonTooCloseToDeparture {
		t.Errorf("expected too_close_to_departure, got %+v", res)
	}
}

func TestValidateBooking_AgentHeaderBypassesCutoff(t *testing.T) {
	trip := testTrip()
	trip.DepartureTime = "01:00"
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return trip, nil },
		},
	}))

	body := strings.NewReader(`{"trip_id":"trip-1","travel_date":"2026-03-02"}`)
	req := httptest.NewRequest("POST", "/v1/bookings/validate", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "u1")
	req.Header.Set("X-Actor-Roles", "agent")
	resp, _ := app.Test(req, -1)

	var res domain.ValidationResult
	json.NewDecoder(resp.Body).Decode(&res)
	if !res.OK {
		t.Errorf("agent should book inside the cutoff, got %s", res.Reason)
	}
}

// ---- Ticket handler tests ----

func TestCreateTicket_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return testTrip(), nil },
		},
	}))

	body := strings.NewReader(`{
		"trip_id": "trip-1",
		"travel_date": "2026-03-02",
		"passengers": [{"name": "Ahmad", "seat_no": "1"}]
	}`)
	req := httptest.NewRequest("POST", "/v1/tickets", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "u1")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var ticket domain.Ticket
	json.NewDecoder(resp.Body).Decode(&ticket)
	if ticket.TotalPrice != 500 {
		t.Errorf("expected price 500, got %v", ticket.TotalPrice)
	}
	if ticket.BookedByID != "u1" {
		t.Errorf("expected booked_by u1, got %s", ticket.BookedByID)
	}
}

func TestCreateTicket_RejectedWindow(t *testing.T) {
	trip := testTrip()
	trip.IsActive = false
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return trip, nil },
		},
	}))

	body := strings.NewReader(`{
		"trip_id": "trip-1",
		"travel_date": "2026-03-02",
		"passengers": [{"name": "Ahmad", "seat_no": "1"}]
	}`)
	req := httptest.NewRequest("POST", "/v1/tickets", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var out struct {
		Error  string                  `json:"error"`
		Result domain.ValidationResult `json:"result"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Result.Reason != domain.ReasonTripInactive {
		t.Errorf("expected trip_inactive, got %s", out.Result.Reason)
	}
}

func TestCreateTicket_SeatConflict(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		schedules: &mockScheduleRepo{
			getFn: func(ctx context.Context, id string) (*domain.TripSchedule, error) { return testTrip(), nil },
		},
		tickets: &mockTicketRepo{
			seatsTakenFn: func(ctx context.Context, tripID string, date time.Time) ([]string, error) {
				return []string{"1"}, nil
			},
		},
	}))

	body := strings.NewReader(`{
		"trip_id": "trip-1",
		"travel_date": "2026-03-02",
		"passengers": [{"name": "Ahmad", "seat_no": "1"}]
	}`)
	req := httptest.NewRequest("POST", "/v1/tickets", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/tickets/bad-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCancelTicket_Success(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		tickets: &mockTicketRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Ticket, error) {
				return &domain.Ticket{ID: id}, nil
			},
		},
	}))

	req := httptest.NewRequest("POST", "/v1/tickets/tk-1/cancel", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ticket domain.Ticket
	json.NewDecoder(resp.Body).Decode(&ticket)
	if !ticket.IsCancelled {
		t.Error("expected cancelled ticket")
	}
}

func TestPayTicket_Cancelled(t *testing.T) {
	app := setupApp(makeDeps(depOptions{
		tickets: &mockTicketRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Ticket, error) {
				return &domain.Ticket{ID: id, IsCancelled: true}, nil
			},
		},
	}))

	req := httptest.NewRequest("POST", "/v1/tickets/tk-1/pay", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}

	var result struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Status != "not ready" {
		t.Errorf("expected not ready, got %q", result.Status)
	}
	if result.Checks["postgres"] != "not configured" {
		t.Errorf("expected postgres check to report not configured, got %q", result.Checks["postgres"])
	}
}

func TestWebSocket_UnavailableWithoutNATS(t *testing.T) {
	// makeDeps wires no NATS connection; /ws must refuse cleanly instead
	// of panicking inside the relay handler.
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Header tests ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(depOptions{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)

	v := resp.Header.Get("X-API-Version")
	if v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestListTerminals_LinkHeader(t *testing.T) {
	terminals := make([]domain.Terminal, 10)
	for i := range terminals {
		terminals[i] = domain.Terminal{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Terminal %d", i)}
	}
	app := setupApp(makeDeps(depOptions{
		terminals: &mockTerminalRepo{
			listFn: func(ctx context.Context) ([]domain.Terminal, error) { return terminals, nil },
		},
	}))

	req := httptest.NewRequest("GET", "/v1/terminals?offset=0&limit=3", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	if link == "" {
		t.Fatal("expected Link header, got empty")
	}
	if !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %s", link)
	}
	if !strings.Contains(link, `rel="first"`) {
		t.Errorf("expected first link, got %s", link)
	}
	if !strings.Contains(link, `rel="last"`) {
		t.Errorf("expected last link, got %s", link)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
