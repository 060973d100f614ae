package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/persiandate"
)

// DefaultCutoffHours is the booking cutoff before departure for requesters
// below agent level.
const DefaultCutoffHours = 2.0

// ScheduleResolver loads a trip schedule with its stops materialized.
type ScheduleResolver interface {
	Resolve(ctx context.Context, tripID string) (*domain.TripSchedule, error)
}

// BookingValidator decides whether a ticket may be created for a given trip,
// travel date, and boarding terminal. It is a pure decision function over
// freshly resolved schedule state plus the injected clock: it performs no
// writes and always returns a ValidationResult, never an error.
type BookingValidator struct {
	schedules ScheduleResolver
	cutoff    float64 // hours
	now       func() time.Time
	logger    *slog.Logger
}

// NewBookingValidator creates a validator. Zero cutoff selects the default;
// nil now and logger fall back to the wall clock and the default logger.
func NewBookingValidator(schedules ScheduleResolver, cutoffHours float64, now func() time.Time, logger *slog.Logger) *BookingValidator {
	if cutoffHours <= 0 {
		cutoffHours = DefaultCutoffHours
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingValidator{schedules: schedules, cutoff: cutoffHours, now: now, logger: logger}
}

// Validate checks a proposed booking against the trip's recurrence rule and
// booking window.
//
// An incomplete request (missing trip or travel date) passes: validation is
// only meaningful once both are supplied, which matches progressive form
// fill on the booking frontends.
func (v *BookingValidator) Validate(ctx context.Context, req domain.BookingRequest) (result domain.ValidationResult) {
	// Unexpected failures become validation_error rejections; nothing
	// escapes the validator boundary.
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("booking validation panic",
				"trip_id", req.TripID, "travel_date", req.TravelDate, "panic", r)
			result = domain.Rejected(domain.ReasonValidationError, "internal validation failure")
			result.Cause = fmt.Errorf("panic: %v", r)
		}
	}()

	if req.TripID == "" || strings.TrimSpace(req.TravelDate) == "" {
		return domain.ValidationResult{OK: true}
	}

	trip, err := v.schedules.Resolve(ctx, req.TripID)
	if err != nil {
		if errors.Is(err, ports.ErrTripNotFound) {
			return domain.Rejected(domain.ReasonTripInactive, "trip does not exist or is not bookable")
		}
		v.logger.Error("booking validation: schedule resolve failed",
			"trip_id", req.TripID, "error", err)
		result = domain.Rejected(domain.ReasonValidationError, "could not verify trip schedule")
		result.Cause = err
		return result
	}
	if trip == nil || !trip.IsActive {
		return domain.Rejected(domain.ReasonTripInactive, "trip does not exist or is not bookable")
	}

	day, err := persiandate.Normalize(req.TravelDate)
	if err != nil {
		return domain.Rejected(domain.ReasonInvalidDateFormat,
			fmt.Sprintf("unrecognized travel date %q", req.TravelDate))
	}

	now := v.now()
	travelDate := day.Time(now.Location())

	// The recurrence check uses the travel date's own weekday, even when a
	// downstream boarding stop pushes the effective departure past midnight.
	if trip.Frequency == domain.FrequencySpecificDays {
		if !trip.RunsOn(domain.WeekdayOf(travelDate)) {
			return domain.Rejected(domain.ReasonDayNotScheduled,
				fmt.Sprintf("trip only runs on %s", domain.WeekdayNames(trip.Days)))
		}
	}

	// Riders boarding downstream depart at their stop's own time, later
	// than the route's nominal start.
	depClock := trip.DepartureTime
	if stop := trip.StopAt(req.BoardingTerminalID); stop != nil && stop.Time != "" {
		depClock = stop.Time
	}

	hh, mm, err := parseClock(depClock)
	if err != nil {
		return domain.Rejected(domain.ReasonInvalidDeparture,
			fmt.Sprintf("malformed departure time %q", depClock))
	}

	departure := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(),
		hh, mm, 0, 0, now.Location())
	hoursUntil := departure.Sub(now).Hours()

	switch {
	case hoursUntil <= 0:
		result = domain.Rejected(domain.ReasonAlreadyDeparted, "trip has already departed")
	case hoursUntil < v.cutoff && !req.Requester.HasAtLeast(domain.RoleAgent):
		result = domain.Rejected(domain.ReasonTooCloseToDeparture,
			fmt.Sprintf("bookings close %g hours before departure", v.cutoff))
	default:
		return domain.Accepted(departure, hoursUntil)
	}
	result.Departure = &departure
	result.HoursUntil = hoursUntil
	return result
}

// parseClock parses an "HH:MM" or "HH:MM:SS" time-of-day.
func parseClock(s string) (hh, mm int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	hh, err = strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, fmt.Errorf("malformed hour in %q", s)
	}
	mm, err = strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("malformed minute in %q", s)
	}
	return hh, mm, nil
}
