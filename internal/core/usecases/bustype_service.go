package usecases

import (
	"context"
	"encoding/json"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// BusTypeService handles bus type lookups.
type BusTypeService struct {
	busTypes ports.BusTypeRepository
	cache    ports.CacheService
}

// NewBusTypeService creates a new BusTypeService. cache may be nil.
func NewBusTypeService(busTypes ports.BusTypeRepository, cache ports.CacheService) *BusTypeService {
	return &BusTypeService{busTypes: busTypes, cache: cache}
}

// GetByID returns a bus type with its seat layout.
func (s *BusTypeService) GetByID(ctx context.Context, id string) (*domain.BusType, error) {
	cacheKey := "bustypes:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var bt domain.BusType
			if err := json.Unmarshal(data, &bt); err == nil {
				return &bt, nil
			}
		}
	}

	bt, err := s.busTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(bt); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600) // layouts are static
		}
	}
	return bt, nil
}
