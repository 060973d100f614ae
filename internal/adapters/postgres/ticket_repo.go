package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// TicketRepo implements ports.TicketRepository with pgx. Seat uniqueness per
// trip date is enforced in the database: held_seats carries one row per seat
// and a unique index over (trip_id, travel_date, seat_no) for live tickets.
type TicketRepo struct {
	db *DB
}

// NewTicketRepo creates a new TicketRepo.
func NewTicketRepo(db *DB) *TicketRepo {
	return &TicketRepo{db: db}
}

const ticketColumns = `
	id, trip_id, travel_date, COALESCE(boarding_terminal_id, ''), passengers,
	booked_by, total_price, is_paid, is_cancelled, payment_deadline, created_at`

// Create persists the ticket and its seat holds in one transaction. A seat
// already held for the same trip date surfaces as ports.ErrSeatTaken.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	passJSON, err := json.Marshal(t.Passengers)
	if err != nil {
		return fmt.Errorf("encode passengers: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (id, trip_id, travel_date, boarding_terminal_id, passengers,
		                     booked_by, total_price, is_paid, is_cancelled, payment_deadline, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
	`, t.ID, t.TripID, t.TravelDate, t.BoardingID, passJSON,
		t.BookedByID, t.TotalPrice, t.IsPaid, t.IsCancelled, t.PaymentDeadline, t.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, seat := range t.SeatNumbers() {
		batch.Queue(`
			INSERT INTO held_seats (ticket_id, trip_id, travel_date, seat_no)
			VALUES ($1, $2, $3, $4)
		`, t.ID, t.TripID, t.TravelDate, seat)
	}
	br := tx.SendBatch(ctx, batch)
	for range t.Passengers {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isUniqueViolation(err) {
				return ports.ErrSeatTaken
			}
			return fmt.Errorf("hold seat: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns a ticket by ID.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrTicketNotFound
	}
	return t, err
}

// ListByTripDate returns all live tickets for a trip on a travel date.
func (r *TicketRepo) ListByTripDate(ctx context.Context, tripID string, date time.Time) ([]domain.Ticket, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE trip_id = $1 AND travel_date = $2 AND NOT is_cancelled
		ORDER BY created_at
	`, tripID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// SeatsTaken returns the seat numbers held for a trip on a travel date.
func (r *TicketRepo) SeatsTaken(ctx context.Context, tripID string, date time.Time) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT h.seat_no
		FROM held_seats h
		JOIN tickets t ON t.id = h.ticket_id
		WHERE h.trip_id = $1 AND h.travel_date = $2 AND NOT t.is_cancelled
		ORDER BY h.seat_no
	`, tripID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// Cancel voids a ticket and frees its seat holds.
func (r *TicketRepo) Cancel(ctx context.Context, id string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE tickets SET is_cancelled = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrTicketNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM held_seats WHERE ticket_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MarkPaid settles a ticket.
func (r *TicketRepo) MarkPaid(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE tickets SET is_paid = TRUE WHERE id = $1 AND NOT is_cancelled
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrTicketNotFound
	}
	return nil
}

// ListExpiredHolds returns unpaid tickets whose payment deadline has passed.
// Used by the hold-expiry worker.
func (r *TicketRepo) ListExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]domain.Ticket, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE NOT is_paid AND NOT is_cancelled AND payment_deadline < $1
		ORDER BY payment_deadline
		LIMIT $2
	`, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t        domain.Ticket
		passJSON []byte
	)
	err := row.Scan(
		&t.ID, &t.TripID, &t.TravelDate, &t.BoardingID, &passJSON,
		&t.BookedByID, &t.TotalPrice, &t.IsPaid, &t.IsCancelled, &t.PaymentDeadline, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passJSON, &t.Passengers); err != nil {
		return nil, fmt.Errorf("decode passengers: %w", err)
	}
	return &t, nil
}

// isUniqueViolation matches the postgres unique_violation SQLSTATE.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
