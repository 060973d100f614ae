package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// TerminalService handles terminal lookups with read-through caching.
type TerminalService struct {
	terminals ports.TerminalRepository
	cache     ports.CacheService
}

// NewTerminalService creates a new TerminalService. cache may be nil.
func NewTerminalService(terminals ports.TerminalRepository, cache ports.CacheService) *TerminalService {
	return &TerminalService{terminals: terminals, cache: cache}
}

// GetByID returns a single terminal.
func (s *TerminalService) GetByID(ctx context.Context, id string) (*domain.Terminal, error) {
	cacheKey := "terminals:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var t domain.Terminal
			if err := json.Unmarshal(data, &t); err == nil {
				return &t, nil
			}
		}
	}

	t, err := s.terminals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(t); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600) // terminals rarely change
		}
	}
	return t, nil
}

// List returns all terminals.
func (s *TerminalService) List(ctx context.Context) ([]domain.Terminal, error) {
	return s.terminals.List(ctx)
}

// Search performs a name/province search on terminals.
func (s *TerminalService) Search(ctx context.Context, query string, limit int) ([]domain.Terminal, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("terminals:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var terminals []domain.Terminal
			if err := json.Unmarshal(data, &terminals); err == nil {
				return terminals, nil
			}
		}
	}

	terminals, err := s.terminals.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(terminals); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return terminals, nil
}
