package workflow

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/apex/log"

	"mealsnap/api"
	"mealsnap/models"
)

const SAVE_FAILED_MESSAGE = "Unable to save this meal right now. Please try again."

// ErrNoAnalysis is returned by Save when there is nothing to save.
var ErrNoAnalysis = errors.New("no analysis to save")

// Saver persists a reviewed meal.
type Saver interface {
	SaveMeal(ctx context.Context, req models.SaveMealRequest) (map[string]any, error)
	ResolveImage(value string) string
}

// Refresher reloads the meal history after a save.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ReviewStep shows the analysis and saves or discards it.
type ReviewStep struct {
	store     *Store
	saver     Saver
	refresher Refresher
	nav       Navigator

	mu     sync.Mutex
	saving bool
}

func NewReviewStep(store *Store, saver Saver, refresher Refresher, nav Navigator) *ReviewStep {
	return &ReviewStep{store: store, saver: saver, refresher: refresher, nav: nav}
}

// Mount enters the review view. It reports false, after redirecting home,
// when there is no analysis to review.
func (r *ReviewStep) Mount() bool {
	if r.store.Snapshot().Analysis == nil {
		r.nav.Navigate(StepHome)
		return false
	}
	r.nav.Navigate(StepResult)
	return true
}

// Cancel discards the flow and returns home.
func (r *ReviewStep) Cancel() {
	r.store.Reset()
	r.nav.Navigate(StepHome)
}

// Saving reports whether a save is in progress.
func (r *ReviewStep) Saving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saving
}

// Save persists the analysis. On failure the state is left intact and the
// error message is recorded so the user can retry.
func (r *ReviewStep) Save(ctx context.Context) error {
	analysis := r.store.Snapshot().Analysis
	if analysis == nil {
		return ErrNoAnalysis
	}
	r.mu.Lock()
	r.saving = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.saving = false
		r.mu.Unlock()
	}()
	r.store.SetError("")

	req := models.SaveMealRequest{
		Name:     mealName(analysis),
		Calories: RoundCalories(analysis.Calories),
		Image:    analysis.ImageReference,
	}
	if _, err := r.saver.SaveMeal(ctx, req); err != nil {
		message := api.ErrorMessage(err)
		if message == "" {
			message = SAVE_FAILED_MESSAGE
		}
		log.Warnf("[Review] save of %q failed: %v", req.Name, err)
		r.store.SetError(message)
		return err
	}
	log.Infof("[Review] saved %q (%d kcal)", req.Name, req.Calories)

	if r.refresher != nil {
		if err := r.refresher.Refresh(ctx); err != nil {
			log.Warnf("[Review] history refresh after save failed: %v", err)
		}
	}
	r.store.Reset()
	r.nav.Navigate(StepHome)
	return nil
}

// ImageSource picks what to display: the analysis preview, then the capture
// preview, then the backend image, then the default picture.
func (r *ReviewStep) ImageSource() string {
	state := r.store.Snapshot()
	if state.Analysis != nil && state.Analysis.PreviewURI != "" {
		return state.Analysis.PreviewURI
	}
	if state.Capture != nil && state.Capture.PreviewDataURI != "" {
		return state.Capture.PreviewDataURI
	}
	if state.Analysis != nil && state.Analysis.ImageReference != "" {
		return r.saver.ResolveImage(state.Analysis.ImageReference)
	}
	return r.saver.ResolveImage("")
}

// RoundCalories converts a loosely typed calories value to whole calories.
// Halves round toward positive infinity, so -120.5 becomes -120. Non-finite
// values become 0.
func RoundCalories(v any) int {
	c := models.CaloriesValue(v)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return int(math.Floor(c + 0.5))
}

func mealName(a *AnalysisResult) string {
	if a.MealName == "" {
		return DEFAULT_MEAL_NAME
	}
	return a.MealName
}
