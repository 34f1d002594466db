package services

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"mealsnap/api"
	"mealsnap/models"
	"mealsnap/util"
)

const HISTORY_FAILED_MESSAGE = "Unable to load meals from the server right now."

// MealLister lists the saved meal history.
type MealLister interface {
	ListMeals(ctx context.Context) ([]models.MealRecord, error)
}

// MealCache keeps a copy of the last fetched history.
type MealCache interface {
	SetMeals(meals []models.MealRecord) error
	GetMeals() ([]models.MealRecord, error)
}

// HistoryState is a snapshot of the meal history.
type HistoryState struct {
	Meals   []models.MealRecord
	Loading bool
	Error   string
}

// MealHistoryService holds the meal history shared by the dashboard views.
type MealHistoryService struct {
	lister MealLister
	cache  MealCache

	mu      sync.RWMutex
	meals   []models.MealRecord
	loading bool
	err     string
}

// NewMealHistoryService constructs a new MealHistoryService. cache may be nil.
func NewMealHistoryService(lister MealLister, cache MealCache) *MealHistoryService {
	return &MealHistoryService{lister: lister, cache: cache}
}

// LoadCached seeds the history from the cache without calling the backend.
func (ms *MealHistoryService) LoadCached() error {
	if ms.cache == nil {
		return nil
	}
	meals, err := ms.cache.GetMeals()
	if err != nil {
		return err
	}
	if meals == nil {
		return nil
	}
	ms.mu.Lock()
	ms.meals = meals
	ms.mu.Unlock()
	log.Infof("[MealHistoryService] loaded %d cached meals", len(meals))
	return nil
}

// Refresh fetches the history from the backend. On failure the history is
// emptied and the error message recorded.
func (ms *MealHistoryService) Refresh(ctx context.Context) error {
	ms.mu.Lock()
	ms.loading = true
	ms.err = ""
	ms.mu.Unlock()

	meals, err := ms.lister.ListMeals(ctx)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.loading = false
	if err != nil {
		ms.meals = []models.MealRecord{}
		ms.err = api.ErrorMessage(err)
		if ms.err == "" {
			ms.err = HISTORY_FAILED_MESSAGE
		}
		log.Warnf("[MealHistoryService] refresh failed: %v", err)
		return err
	}
	ms.meals = meals
	if ms.cache != nil {
		if err := ms.cache.SetMeals(meals); err != nil {
			log.Warnf("[MealHistoryService] unable to cache meals: %v", err)
		}
	}
	log.Debugf("[MealHistoryService] refreshed %d meals", len(meals))
	return nil
}

// State returns a snapshot of the history.
func (ms *MealHistoryService) State() HistoryState {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	meals := make([]models.MealRecord, len(ms.meals))
	copy(meals, ms.meals)
	return HistoryState{Meals: meals, Loading: ms.loading, Error: ms.err}
}

// Meals returns the current history.
func (ms *MealHistoryService) Meals() []models.MealRecord {
	return ms.State().Meals
}

// WeeklySeries aggregates the history for the week ending at ref.
func (ms *MealHistoryService) WeeklySeries(ref time.Time) [7]float64 {
	return util.ComputeWeeklySeries(ms.Meals(), ref)
}

// HistoryMessage is shown above the recent meals list when there is nothing
// to display.
func (s HistoryState) HistoryMessage() string {
	if s.Error != "" {
		return s.Error
	}
	if !s.Loading && len(s.Meals) == 0 {
		return "No meal data available."
	}
	return ""
}
