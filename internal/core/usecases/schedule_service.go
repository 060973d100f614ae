package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
)

// ScheduleService resolves trip schedules with their stop lists. It reads
// fresh on every call: schedules may change between booking attempts, so no
// resolution is cached.
type ScheduleService struct {
	schedules ports.ScheduleRepository
	now       func() time.Time
}

// NewScheduleService creates a new ScheduleService. A nil now falls back to
// the wall clock.
func NewScheduleService(schedules ports.ScheduleRepository, now func() time.Time) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{schedules: schedules, now: now}
}

// Resolve loads a trip schedule by ID, stops materialized in route order.
func (s *ScheduleService) Resolve(ctx context.Context, tripID string) (*domain.TripSchedule, error) {
	if strings.TrimSpace(tripID) == "" {
		return nil, ports.ErrTripNotFound
	}
	return s.schedules.GetTripSchedule(ctx, tripID)
}

// ListActive returns all schedules currently open for booking.
func (s *ScheduleService) ListActive(ctx context.Context) ([]domain.TripSchedule, error) {
	return s.schedules.ListActive(ctx)
}

// UpcomingDates returns the travel dates within the next `horizon` days on
// which the trip operates, starting today. Inactive trips have none.
func (s *ScheduleService) UpcomingDates(ctx context.Context, tripID string, horizon int) ([]time.Time, error) {
	if horizon <= 0 || horizon > 90 {
		horizon = 14
	}

	trip, err := s.Resolve(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.IsActive {
		return nil, nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var dates []time.Time
	for i := 0; i < horizon; i++ {
		d := today.AddDate(0, 0, i)
		if trip.RunsOn(domain.WeekdayOf(d)) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
