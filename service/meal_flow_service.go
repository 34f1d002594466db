package services

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"mealsnap/api/foodlog"
	"mealsnap/imaging"
	"mealsnap/session"
	"mealsnap/workflow"
)

// MealFlowService connects the capture session to the workflow store and
// owns the processing step currently mounted.
type MealFlowService struct {
	session *session.Session
	store   *workflow.Store
	api     foodlog.FoodLogAPI
	history *MealHistoryService
	review  *workflow.ReviewStep

	successDelay time.Duration
	failureDelay time.Duration

	mu         sync.Mutex
	processing *workflow.ProcessingStep
	done       chan struct{}
}

// NewMealFlowService constructs a new MealFlowService.
func NewMealFlowService(sess *session.Session, store *workflow.Store, api foodlog.FoodLogAPI, history *MealHistoryService) *MealFlowService {
	return &MealFlowService{
		session:      sess,
		store:        store,
		api:          api,
		history:      history,
		review:       workflow.NewReviewStep(store, api, history, store),
		successDelay: workflow.SUCCESS_REDIRECT_DELAY,
		failureDelay: workflow.FAILURE_REDIRECT_DELAY,
	}
}

// WithDelays overrides the processing redirect delays.
func (fs *MealFlowService) WithDelays(success, failure time.Duration) *MealFlowService {
	fs.successDelay = success
	fs.failureDelay = failure
	return fs
}

func (fs *MealFlowService) Session() *session.Session { return fs.session }

func (fs *MealFlowService) Store() *workflow.Store { return fs.store }

func (fs *MealFlowService) Review() *workflow.ReviewStep { return fs.review }

// Confirm hands the ready photo to the workflow and starts processing in
// the background.
func (fs *MealFlowService) Confirm(ctx context.Context) error {
	return fs.session.Confirm(ctx, func(_ context.Context, img *imaging.CapturedImage) error {
		fs.Start(img)
		return nil
	})
}

// Start begins a new flow for img, tearing down any processing step still
// mounted.
func (fs *MealFlowService) Start(img *imaging.CapturedImage) {
	step := workflow.NewProcessingStep(fs.store, fs.api, fs.store).WithDelays(fs.successDelay, fs.failureDelay)
	done := make(chan struct{})

	fs.mu.Lock()
	if fs.processing != nil {
		fs.processing.Teardown()
	}
	fs.store.Begin(img)
	fs.processing = step
	fs.done = done
	fs.mu.Unlock()

	go func() {
		defer close(done)
		if err := step.Mount(context.Background()); err != nil {
			log.Debugf("[MealFlowService] processing ended with error: %v", err)
		}
	}()
}

// Analyze runs processing for img synchronously and returns the recorded
// error, if any. Redirect delays are skipped.
func (fs *MealFlowService) Analyze(ctx context.Context, img *imaging.CapturedImage) error {
	fs.store.Begin(img)
	step := workflow.NewProcessingStep(fs.store, fs.api, fs.store).WithDelays(0, 0)
	defer step.Teardown()
	return step.Mount(ctx)
}

// Wait blocks until the background processing started last has finished its
// calls, or ctx is done.
func (fs *MealFlowService) Wait(ctx context.Context) error {
	fs.mu.Lock()
	done := fs.done
	fs.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LeaveProcessing tears down the mounted processing step.
func (fs *MealFlowService) LeaveProcessing() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.processing != nil {
		fs.processing.Teardown()
		fs.processing = nil
	}
}

// Close tears everything down: processing, the capture session and its
// camera.
func (fs *MealFlowService) Close() {
	fs.LeaveProcessing()
	fs.session.Close()
}
