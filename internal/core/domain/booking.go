package domain

import "time"

// RejectionReason is the fixed taxonomy of booking rejection codes returned
// to callers. These are stable API strings; localized presentation is the
// caller's concern.
type RejectionReason string

const (
	ReasonTripInactive        RejectionReason = "trip_inactive"
	ReasonInvalidDateFormat   RejectionReason = "invalid_date_format"
	ReasonDayNotScheduled     RejectionReason = "day_not_scheduled"
	ReasonInvalidDeparture    RejectionReason = "invalid_departure_time"
	ReasonAlreadyDeparted     RejectionReason = "already_departed"
	ReasonTooCloseToDeparture RejectionReason = "too_close_to_departure"
	ReasonValidationError     RejectionReason = "validation_error"
)

// BookingRequest is a proposed booking to be checked against a trip's
// schedule and booking window. TravelDate may be a Gregorian ISO date or a
// Solar-Hijri encoded date; BoardingTerminalID is optional.
type BookingRequest struct {
	TripID             string `json:"trip_id"`
	TravelDate         string `json:"travel_date"`
	BoardingTerminalID string `json:"boarding_terminal_id,omitempty"`
	Requester          Actor  `json:"requester"`
}

// ValidationResult is the outcome of a booking-window validation. It is
// always a value, never an error: rejection reasons are data.
type ValidationResult struct {
	OK     bool            `json:"ok"`
	Reason RejectionReason `json:"reason,omitempty"`
	Detail string          `json:"detail,omitempty"`

	// Departure and HoursUntil are populated on acceptance and on the
	// time-based rejections, for callers that present the window. A pointer
	// keeps "departure" off the wire for the other rejections.
	Departure  *time.Time `json:"departure,omitempty"`
	HoursUntil float64    `json:"hours_until,omitempty"`

	// Cause carries the underlying error for ValidationError rejections.
	// Retained for logging, never serialized.
	Cause error `json:"-"`
}

// Accepted builds a passing result.
func Accepted(departure time.Time, hoursUntil float64) ValidationResult {
	return ValidationResult{OK: true, Departure: &departure, HoursUntil: hoursUntil}
}

// Rejected builds a failing result with a reason code and optional detail.
func Rejected(reason RejectionReason, detail string) ValidationResult {
	return ValidationResult{OK: false, Reason: reason, Detail: detail}
}
