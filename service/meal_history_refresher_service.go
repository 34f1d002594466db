package services

import (
	"context"
	"time"

	"github.com/apex/log"
)

// Refreshable is anything that can reload itself from the backend.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// MealHistoryRefresherService periodically refreshes the meal history.
type MealHistoryRefresherService struct {
	history Refreshable
}

// NewMealHistoryRefresherService constructs a new refresher.
func NewMealHistoryRefresherService(history Refreshable) *MealHistoryRefresherService {
	return &MealHistoryRefresherService{history: history}
}

// StartPeriodicJob launches the background loop at the given interval. The
// loop stops when ctx is done.
func (mr *MealHistoryRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go mr.startPeriodicJob(ctx, interval)
}

func (mr *MealHistoryRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("[MealHistoryRefresherService] Stopping periodic refresher.")
			return
		case <-ticker.C:
			mr.RunOnce(ctx)
		}
	}
}

// RunOnce refreshes the history once and logs the outcome.
func (mr *MealHistoryRefresherService) RunOnce(ctx context.Context) error {
	log.Debug("[MealHistoryRefresherService] Running meal history refresh.")
	if err := mr.history.Refresh(ctx); err != nil {
		log.Warnf("[MealHistoryRefresherService] Refresh returned error: %v", err)
		return err
	}
	log.Debug("[MealHistoryRefresherService] Refresh completed successfully.")
	return nil
}
