package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"

	"mealsnap/api"
	"mealsnap/models"
)

const (
	SUCCESS_REDIRECT_DELAY = 3000 * time.Millisecond
	FAILURE_REDIRECT_DELAY = 2500 * time.Millisecond

	ANALYSIS_FAILED_MESSAGE = "We could not analyze this meal. Please try again."
)

// ErrNoUploadReference is returned when the upload response names no stored
// file.
var ErrNoUploadReference = errors.New("Upload failed. No filename returned from server.")

// Analyzer is the part of the food-log API the processing step needs.
type Analyzer interface {
	Upload(ctx context.Context, image models.ImageFile) (map[string]any, error)
	Predict(ctx context.Context, image models.ImageFile) (map[string]any, error)
}

// ProcessingStep uploads the capture, asks for a prediction and schedules
// the move to the review step (or back home on failure). One instance
// corresponds to one mounted processing view.
type ProcessingStep struct {
	store        *Store
	analyzer     Analyzer
	nav          Navigator
	afterFunc    AfterFunc
	successDelay time.Duration
	failureDelay time.Duration

	mu      sync.Mutex
	mounted bool
	cancel  context.CancelFunc
	timer   Timer
}

func NewProcessingStep(store *Store, analyzer Analyzer, nav Navigator) *ProcessingStep {
	return &ProcessingStep{
		store:        store,
		analyzer:     analyzer,
		nav:          nav,
		afterFunc:    realAfterFunc,
		successDelay: SUCCESS_REDIRECT_DELAY,
		failureDelay: FAILURE_REDIRECT_DELAY,
	}
}

// WithDelays overrides the redirect delays.
func (p *ProcessingStep) WithDelays(success, failure time.Duration) *ProcessingStep {
	p.successDelay = success
	p.failureDelay = failure
	return p
}

// WithAfterFunc replaces the timer scheduler, mainly for tests.
func (p *ProcessingStep) WithAfterFunc(fn AfterFunc) *ProcessingStep {
	p.afterFunc = fn
	return p
}

// Mount runs the step to completion. Without a capture it redirects home
// at once. The returned error is the failure already recorded in the store.
func (p *ProcessingStep) Mount(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.mounted = true
	p.cancel = cancel
	p.mu.Unlock()

	p.nav.Navigate(StepProcessing)

	state := p.store.Snapshot()
	if state.Capture == nil {
		p.nav.Navigate(StepHome)
		return nil
	}
	capture := state.Capture
	file := models.ImageFile{Name: capture.FileName, MimeType: capture.MimeType, Data: capture.Data}

	uploaded, err := p.analyzer.Upload(ctx, file)
	if err == nil && FirstNonEmpty(uploaded, UploadReferenceFields...) == "" {
		err = ErrNoUploadReference
	}
	if err != nil {
		return p.fail(err)
	}
	reference := FirstNonEmpty(uploaded, UploadReferenceFields...)
	if !p.isMounted() {
		return nil
	}

	prediction, err := p.analyzer.Predict(ctx, file)
	if err != nil {
		return p.fail(err)
	}
	if !p.isMounted() {
		return nil
	}

	name := FirstNonEmpty(prediction, PredictNameFields...)
	if name == "" {
		name = DEFAULT_MEAL_NAME
	}
	image := reference
	if image == "" {
		image = FirstNonEmpty(prediction, PredictImageFields...)
	}
	analysis := &AnalysisResult{
		MealName:       name,
		Ingredients:    Ingredients(prediction),
		Calories:       prediction["calories"],
		ImageReference: image,
		PreviewURI:     capture.PreviewDataURI,
		Raw:            prediction,
	}
	committed := p.store.Commit(p.isMounted, func(state *State) {
		state.Analysis = analysis
	})
	if !committed {
		return nil
	}
	log.Infof("[Processing] capture %s analyzed as %q", capture.ID, name)

	p.schedule(p.successDelay, StepResult)
	return nil
}

func (p *ProcessingStep) fail(err error) error {
	message := api.ErrorMessage(err)
	if message == "" {
		message = ANALYSIS_FAILED_MESSAGE
	}
	committed := p.store.Commit(p.isMounted, func(state *State) {
		state.Error = message
		state.Capture = nil
		state.Analysis = nil
	})
	if !committed {
		return err
	}
	log.Warnf("[Processing] analysis failed: %v", err)
	p.schedule(p.failureDelay, StepHome)
	return err
}

func (p *ProcessingStep) schedule(d time.Duration, step Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.afterFunc(d, func() {
		if p.isMounted() {
			p.nav.Navigate(step)
		}
	})
}

// Teardown cancels in-flight calls and any pending redirect. Safe to call
// more than once.
func (p *ProcessingStep) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mounted = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// isMounted is also called with the store lock held, so it must never take
// the store lock itself.
func (p *ProcessingStep) isMounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}
