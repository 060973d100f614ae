package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// TerminalRepo implements ports.TerminalRepository with pgx.
type TerminalRepo struct {
	db *DB
}

// NewTerminalRepo creates a new TerminalRepo.
func NewTerminalRepo(db *DB) *TerminalRepo {
	return &TerminalRepo{db: db}
}

// GetByID returns a terminal by ID.
func (r *TerminalRepo) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	var t domain.Terminal
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, province, COALESCE(address, ''), created_at
		FROM terminals WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Province, &t.Address, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrTerminalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all terminals ordered by province then name.
func (r *TerminalRepo) List(ctx context.Context) ([]domain.Terminal, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, province, COALESCE(address, ''), created_at
		FROM terminals
		ORDER BY province, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terminals []domain.Terminal
	for rows.Next() {
		var t domain.Terminal
		if err := rows.Scan(&t.ID, &t.Name, &t.Province, &t.Address, &t.CreatedAt); err != nil {
			return nil, err
		}
		terminals = append(terminals, t)
	}
	return terminals, rows.Err()
}

// Search performs fuzzy + full-text search on terminal names and provinces.
func (r *TerminalRepo) Search(ctx context.Context, query string, limit int) ([]domain.Terminal, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, province, COALESCE(address, ''), created_at,
		       similarity(name, $1) as sim
		FROM terminals
		WHERE name_vector @@ plainto_tsquery('simple', $1)
		   OR name %> $1
		   OR province %> $1
		ORDER BY sim DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terminals []domain.Terminal
	for rows.Next() {
		var t domain.Terminal
		var sim float64
		if err := rows.Scan(&t.ID, &t.Name, &t.Province, &t.Address, &t.CreatedAt, &sim); err != nil {
			return nil, err
		}
		terminals = append(terminals, t)
	}
	return terminals, rows.Err()
}
