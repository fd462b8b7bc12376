package services

import (
	"context"
	"fmt"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/offline"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"
)

// ScheduleService searches schedules in the authority when online and in
// the snapshot when offline. A query error while online is returned, never
// papered over with cached data.
type ScheduleService struct {
	Schedules repositories.ScheduleRepository
	Cache     *offline.ScheduleCache
	RequestID string
}

func (s ScheduleService) Search(ctx context.Context, mode domain.Mode, q models.ScheduleQuery) ([]models.Schedule, error) {
	q.Normalize()
	if q.Origin == "" || q.Destination == "" || q.TravelDate == "" {
		return nil, domain.ValidationError{Msg: "origin, destination and date are required"}
	}
	if _, err := utils.ParseDate(q.TravelDate); err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err}
	}

	if mode == domain.ModeOffline {
		return s.Cache.Query(ctx, q)
	}

	found, err := s.Schedules.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefreshCache(ctx); err != nil {
		logger := utils.Logger("schedules")
		logger.Warn().Err(err).Msg("schedule snapshot not refreshed")
	}
	return found, nil
}

func (s ScheduleService) Get(ctx context.Context, mode domain.Mode, id int64) (models.Schedule, error) {
	if id <= 0 {
		return models.Schedule{}, domain.ValidationError{Field: "schedule_id", Msg: "invalid id"}
	}
	if mode == domain.ModeOnline {
		return s.Schedules.GetByID(ctx, id)
	}
	sched, ok, err := s.Cache.Get(ctx, id)
	if err != nil {
		return models.Schedule{}, err
	}
	if !ok {
		return models.Schedule{}, domain.NotFoundError{Resource: "schedule", Key: fmt.Sprint(id)}
	}
	return sched, nil
}

// RefreshCache replaces the offline snapshot with every upcoming schedule.
func (s ScheduleService) RefreshCache(ctx context.Context) (int, error) {
	all, err := s.Schedules.ListUpcoming(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.Cache.ReplaceSnapshot(ctx, all); err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "schedules", "cache", fmt.Sprintf("cached %d schedules for offline use", len(all)))
	return len(all), nil
}
