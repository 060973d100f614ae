package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/metrics"
)

// BookingStats holds row counts from the booking tables.
type BookingStats struct {
	Terminals  int    `json:"terminals"`
	BusTypes   int    `json:"bus_types"`
	Trips      int    `json:"trips"`
	Tickets    int    `json:"tickets"`
	LastIssued string `json:"last_issued,omitempty"`
}

// BookingStatsHandler returns row counts from the booking tables.
func BookingStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats BookingStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM terminals),
				(SELECT count(*) FROM bus_types),
				(SELECT count(*) FROM trip_schedules),
				(SELECT count(*) FROM tickets),
				COALESCE((SELECT max(created_at)::text FROM tickets), '')
		`)
		if err := row.Scan(&stats.Terminals, &stats.BusTypes, &stats.Trips,
			&stats.Tickets, &stats.LastIssued); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListTerminalsHandler returns all terminals with offset pagination.
func ListTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		terminals, err := deps.Terminals.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(terminals)
		if offset >= total {
			terminals = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			terminals = terminals[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: terminals, Pagination: pg})
	}
}

// SearchTerminalsHandler performs fuzzy search on terminal names and provinces.
func SearchTerminalsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		terminals, err := deps.Terminals.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(terminals)
	}
}

// GetTerminalHandler returns a single terminal by ID.
func GetTerminalHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "terminal id is required")
		}
		terminal, err := deps.Terminals.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "terminal not found")
		}
		return c.JSON(terminal)
	}
}

// ListTripsHandler returns all active trip schedules.
func ListTripsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trips, err := deps.Trips.ListActive(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(trips)
		if offset >= total {
			trips = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			trips = trips[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: trips, Pagination: pg})
	}
}

// GetTripHandler returns a trip schedule with its stops and bus type.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "trip id is required")
		}
		trip, err := deps.Trips.Resolve(c.Context(), id)
		if err != nil {
			return errNotFound(c, "trip not found")
		}
		return c.JSON(trip)
	}
}

// TripDatesHandler returns the upcoming dates a trip operates on.
func TripDatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "trip id is required")
		}
		horizon := c.QueryInt("days", 14)

		dates, err := deps.Trips.UpcomingDates(c.Context(), id, horizon)
		if err != nil {
			if errors.Is(err, ports.ErrTripNotFound) {
				return errNotFound(c, "trip not found")
			}
			return errInternal(c, err.Error())
		}

		out := make([]string, 0, len(dates))
		for _, d := range dates {
			out = append(out, d.Format("2006-01-02"))
		}
		return c.JSON(fiber.Map{"trip_id": id, "dates": out})
	}
}

// TripSeatsHandler returns seat availability for a trip on a travel date.
func TripSeatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "trip id is required")
		}
		date := c.Query("date")
		if date == "" {
			return errBadRequest(c, "date query parameter is required")
		}

		avail, err := deps.Tickets.Availability(c.Context(), id, date)
		if err != nil {
			if errors.Is(err, ports.ErrTripNotFound) {
				return errNotFound(c, "trip not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(avail)
	}
}

// ListTripTicketsHandler returns the booking manifest for a trip date.
// Restricted to agents and above.
func ListTripTicketsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "trip id is required")
		}
		date := c.Query("date")
		if date == "" {
			return errBadRequest(c, "date query parameter is required")
		}
		if !actorFromCtx(c).HasAtLeast(domain.RoleAgent) {
			return newError(c, fiber.StatusForbidden, "forbidden", "agent role required")
		}

		tickets, err := deps.Tickets.ListForTrip(c.Context(), id, date)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(fiber.Map{"trip_id": id, "tickets": tickets})
	}
}

// ValidateBookingHandler runs the booking-window check without creating a
// ticket. The result is always 200 with the typed outcome in the body.
func ValidateBookingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			TripID             string `json:"trip_id"`
			TravelDate         string `json:"travel_date"`
			BoardingTerminalID string `json:"boarding_terminal_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		res := deps.Validator.Validate(c.Context(), domain.BookingRequest{
			TripID:             body.TripID,
			TravelDate:         body.TravelDate,
			BoardingTerminalID: body.BoardingTerminalID,
			Requester:          actorFromCtx(c),
		})

		outcome := "accepted"
		if !res.OK {
			outcome = string(res.Reason)
		}
		metrics.BookingValidations.WithLabelValues(outcome).Inc()

		return c.JSON(res)
	}
}

// CreateTicketHandler books seats on a trip date.
func CreateTicketHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.CreateTicketInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		in.Requester = actorFromCtx(c)

		ticket, err := deps.Tickets.Create(c.Context(), in)
		if err != nil {
			var rejected *usecases.BookingRejectedError
			switch {
			case errors.As(err, &rejected):
				metrics.BookingValidations.WithLabelValues(string(rejected.Result.Reason)).Inc()
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":  "booking_rejected",
					"result": rejected.Result,
				})
			case errors.Is(err, ports.ErrSeatTaken):
				metrics.SeatConflicts.Inc()
				return errConflict(c, err.Error())
			case errors.Is(err, ports.ErrTripNotFound):
				return errNotFound(c, "trip not found")
			default:
				return errBadRequest(c, err.Error())
			}
		}

		metrics.TicketsIssued.Inc()
		return c.Status(fiber.StatusCreated).JSON(ticket)
	}
}

// GetTicketHandler returns a ticket by ID.
func GetTicketHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "ticket id is required")
		}
		ticket, err := deps.Tickets.Get(c.Context(), id)
		if err != nil {
			return errNotFound(c, "ticket not found")
		}
		return c.JSON(ticket)
	}
}

// CancelTicketHandler voids a ticket and releases its seats.
func CancelTicketHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "ticket id is required")
		}
		ticket, err := deps.Tickets.Cancel(c.Context(), id)
		if err != nil {
			if errors.Is(err, ports.ErrTicketNotFound) {
				return errNotFound(c, "ticket not found")
			}
			return errInternal(c, err.Error())
		}
		metrics.TicketsCancelled.Inc()
		return c.JSON(ticket)
	}
}

// PayTicketHandler settles a ticket before its payment deadline.
func PayTicketHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "ticket id is required")
		}
		ticket, err := deps.Tickets.MarkPaid(c.Context(), id)
		if err != nil {
			if errors.Is(err, ports.ErrTicketNotFound) {
				return errNotFound(c, "ticket not found")
			}
			return errConflict(c, err.Error())
		}
		return c.JSON(ticket)
	}
}

// GetBusTypeHandler returns a bus type with its seat layout.
func GetBusTypeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "bus type id is required")
		}
		bt, err := deps.BusTypes.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "bus type not found")
		}
		return c.JSON(bt)
	}
}
