package domain

import (
	"fmt"
	"time"
)

// Terminal represents a bus terminal a trip can pick up from or drop off at.
type Terminal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Province  string    `json:"province"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SeatCellKind discriminates cells in a bus seat layout grid.
type SeatCellKind string

const (
	CellSeat   SeatCellKind = "seat"
	CellAisle  SeatCellKind = "aisle"
	CellDriver SeatCellKind = "driver"
	CellWC     SeatCellKind = "wc"
)

// SeatCell is a single cell in a bus seat layout grid.
type SeatCell struct {
	Kind   SeatCellKind `json:"kind"`
	SeatNo string       `json:"seat_no,omitempty"` // set only for seat cells
	Row    int          `json:"row"`
	Col    int          `json:"col"`
}

// SeatLayout is the physical seat arrangement of a bus type.
type SeatLayout struct {
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells []SeatCell `json:"cells"`
}

// Capacity counts the bookable seat cells in the layout.
func (l SeatLayout) Capacity() int {
	n := 0
	for _, c := range l.Cells {
		if c.Kind == CellSeat {
			n++
		}
	}
	return n
}

// SeatNumbers returns the seat numbers in cell order.
func (l SeatLayout) SeatNumbers() []string {
	var nums []string
	for _, c := range l.Cells {
		if c.Kind == CellSeat {
			nums = append(nums, c.SeatNo)
		}
	}
	return nums
}

// HasSeat reports whether the layout contains a seat with the given number.
func (l SeatLayout) HasSeat(seatNo string) bool {
	for _, c := range l.Cells {
		if c.Kind == CellSeat && c.SeatNo == seatNo {
			return true
		}
	}
	return false
}

// Validate checks cell bounds and seat-number uniqueness.
func (l SeatLayout) Validate() error {
	seen := make(map[string]struct{}, len(l.Cells))
	for _, c := range l.Cells {
		if c.Row < 0 || c.Row >= l.Rows || c.Col < 0 || c.Col >= l.Cols {
			return fmt.Errorf("cell (%d,%d) outside %dx%d grid", c.Row, c.Col, l.Rows, l.Cols)
		}
		if c.Kind != CellSeat {
			continue
		}
		if c.SeatNo == "" {
			return fmt.Errorf("seat cell (%d,%d) has no seat number", c.Row, c.Col)
		}
		if _, dup := seen[c.SeatNo]; dup {
			return fmt.Errorf("duplicate seat number %q", c.SeatNo)
		}
		seen[c.SeatNo] = struct{}{}
	}
	return nil
}

// BusType describes a bus model and its seat layout.
type BusType struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Amenities []string   `json:"amenities,omitempty"`
	Layout    SeatLayout `json:"layout"`
	CreatedAt time.Time  `json:"created_at"`
}

// Frequency is a trip schedule recurrence rule.
type Frequency string

const (
	FrequencyDaily        Frequency = "daily"
	FrequencySpecificDays Frequency = "specific-days"
)

// TripStop is one stop on a trip's route. Order reflects physical route order.
// Terminal is populated when the schedule is resolved with relational depth;
// TerminalID alone is always set.
type TripStop struct {
	TerminalID string    `json:"terminal_id"`
	Terminal   *Terminal `json:"terminal,omitempty"`
	Time       string    `json:"time"` // "HH:MM" time-of-day at this stop
	IsPickup   bool      `json:"is_pickup"`
	IsDropoff  bool      `json:"is_dropoff"`
	Sequence   int       `json:"sequence"`
}

// TripSchedule is a recurring trip as operated: recurrence rule, nominal
// departure time, and the ordered stop list. Read-only to the booking core.
type TripSchedule struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	IsActive      bool       `json:"is_active"`
	Frequency     Frequency  `json:"frequency"`
	Days          []Weekday  `json:"days,omitempty"` // only when Frequency == specific-days
	DepartureTime string     `json:"departure_time"` // "HH:MM", independent of calendar date
	Price         float64    `json:"price"`
	BusTypeID     string     `json:"bus_type_id"`
	BusType       *BusType   `json:"bus_type,omitempty"`
	Stops         []TripStop `json:"stops"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RunsOn reports whether the schedule operates on the given weekday.
func (t *TripSchedule) RunsOn(day Weekday) bool {
	if t.Frequency != FrequencySpecificDays {
		return true
	}
	for _, d := range t.Days {
		if d == day {
			return true
		}
	}
	return false
}

// StopAt returns the stop matching a boarding terminal, or nil. The terminal
// may be referenced by bare ID or through the embedded terminal object.
func (t *TripSchedule) StopAt(terminalID string) *TripStop {
	if terminalID == "" {
		return nil
	}
	for i := range t.Stops {
		s := &t.Stops[i]
		if s.TerminalID == terminalID {
			return s
		}
		if s.Terminal != nil && s.Terminal.ID == terminalID {
			return s
		}
	}
	return nil
}

// Passenger is one traveller on a ticket, bound to a seat.
type Passenger struct {
	Name       string `json:"name"`
	FatherName string `json:"father_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	SeatNo     string `json:"seat_no"`
}

// Ticket is a confirmed booking for one or more seats on a trip date.
type Ticket struct {
	ID              string      `json:"id"`
	TripID          string      `json:"trip_id"`
	TravelDate      time.Time   `json:"travel_date"` // Gregorian calendar date, midnight local
	BoardingID      string      `json:"boarding_terminal_id,omitempty"`
	Passengers      []Passenger `json:"passengers"`
	BookedByID      string      `json:"booked_by_id"`
	TotalPrice      float64     `json:"total_price"`
	IsPaid          bool        `json:"is_paid"`
	IsCancelled     bool        `json:"is_cancelled"`
	PaymentDeadline time.Time   `json:"payment_deadline"`
	CreatedAt       time.Time   `json:"created_at"`
}

// SeatNumbers returns the seat numbers held by this ticket.
func (t *Ticket) SeatNumbers() []string {
	nums := make([]string, 0, len(t.Passengers))
	for _, p := range t.Passengers {
		nums = append(nums, p.SeatNo)
	}
	return nums
}

// SeatAvailability is the computed seat occupancy of a trip on a travel date.
type SeatAvailability struct {
	TripID     string    `json:"trip_id"`
	TravelDate time.Time `json:"travel_date"`
	Capacity   int       `json:"capacity"`
	Taken      []string  `json:"taken"`
	Available  int       `json:"available"`
}
