package services

import (
	"context"
	"time"

	"busbooking/internal/domain/models"
	"busbooking/internal/metrics"
	"busbooking/internal/offline"
)

// ConnectionService answers "are we online, and how much is waiting".
type ConnectionService struct {
	Store *offline.Store
	Now   func() time.Time
}

func (s ConnectionService) Status(ctx context.Context, online bool) (models.ConnectionStatus, error) {
	n, err := s.Store.PendingCount(ctx)
	if err != nil {
		return models.ConnectionStatus{}, err
	}
	metrics.SetPending(n)

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return models.ConnectionStatus{Online: online, PendingSyncCount: n, CheckedAt: now().UTC()}, nil
}
