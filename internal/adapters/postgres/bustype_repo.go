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

// BusTypeRepo implements ports.BusTypeRepository with pgx.
type BusTypeRepo struct {
	db *DB
}

// NewBusTypeRepo creates a new BusTypeRepo.
func NewBusTypeRepo(db *DB) *BusTypeRepo {
	return &BusTypeRepo{db: db}
}

// GetByID returns a bus type with its seat layout decoded.
func (r *BusTypeRepo) GetByID(ctx context.Context, id string) (*domain.BusType, error) {
	var (
		bt       domain.BusType
		amenJSON []byte
		layJSON  []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(amenities, '[]'::jsonb), layout, created_at
		FROM bus_types WHERE id = $1
	`, id).Scan(&bt.ID, &bt.Name, &amenJSON, &layJSON, &bt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrBusTypeNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(amenJSON, &bt.Amenities); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	if err := json.Unmarshal(layJSON, &bt.Layout); err != nil {
		return nil, fmt.Errorf("decode seat layout: %w", err)
	}
	return &bt, nil
}
