package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// ScheduleRepo implements ports.ScheduleRepository with pgx. Trip schedules
// are resolved with relational depth: bus type and stop terminals come back
// embedded so the booking core never needs a second round trip.
type ScheduleRepo struct {
	db *DB
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const tripScheduleColumns = `
	t.id, t.name, t.is_active, t.frequency, COALESCE(t.days, '[]'::jsonb),
	t.departure_time, t.price, t.bus_type_id, t.created_at,
	b.id, b.name, COALESCE(b.amenities, '[]'::jsonb), b.layout, b.created_at`

// GetTripSchedule returns one trip with its bus type and ordered stops.
func (r *ScheduleRepo) GetTripSchedule(ctx context.Context, id string) (*domain.TripSchedule, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+tripScheduleColumns+`
		FROM trip_schedules t
		JOIN bus_types b ON b.id = t.bus_type_id
		WHERE t.id = $1
	`, id)

	trip, err := scanTripSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadStops(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListActive returns all active trip schedules with stops attached.
func (r *ScheduleRepo) ListActive(ctx context.Context) ([]domain.TripSchedule, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+tripScheduleColumns+`
		FROM trip_schedules t
		JOIN bus_types b ON b.id = t.bus_type_id
		WHERE t.is_active
		ORDER BY t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.TripSchedule
	for rows.Next() {
		trip, err := scanTripSchedule(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range trips {
		if err := r.loadStops(ctx, &trips[i]); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// loadStops attaches the ordered stop list, terminals embedded.
func (r *ScheduleRepo) loadStops(ctx context.Context, trip *domain.TripSchedule) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.terminal_id, s.stop_time, s.is_pickup, s.is_dropoff, s.sequence,
		       tm.id, tm.name, tm.province, COALESCE(tm.address, ''), tm.created_at
		FROM trip_stops s
		JOIN terminals tm ON tm.id = s.terminal_id
		WHERE s.trip_id = $1
		ORDER BY s.sequence
	`, trip.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var stop domain.TripStop
		var term domain.Terminal
		if err := rows.Scan(
			&stop.TerminalID, &stop.Time, &stop.IsPickup, &stop.IsDropoff, &stop.Sequence,
			&term.ID, &term.Name, &term.Province, &term.Address, &term.CreatedAt,
		); err != nil {
			return err
		}
		stop.Terminal = &term
		trip.Stops = append(trip.Stops, stop)
	}
	return rows.Err()
}

func scanTripSchedule(row pgx.Row) (*domain.TripSchedule, error) {
	var (
		trip     domain.TripSchedule
		bt       domain.BusType
		daysJSON []byte
		amenJSON []byte
		layJSON  []byte
	)
	err := row.Scan(
		&trip.ID, &trip.Name, &trip.IsActive, &trip.Frequency, &daysJSON,
		&trip.DepartureTime, &trip.Price, &trip.BusTypeID, &trip.CreatedAt,
		&bt.ID, &bt.Name, &amenJSON, &layJSON, &bt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(daysJSON, &trip.Days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	if err := json.Unmarshal(amenJSON, &bt.Amenities); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	if err := json.Unmarshal(layJSON, &bt.Layout); err != nil {
		return nil, fmt.Errorf("decode seat layout: %w", err)
	}

	trip.BusType = &bt
	return &trip, nil
}
