// Package workflow drives a confirmed meal photo through upload, prediction,
// review and save.
package workflow

import (
	"sync"

	"github.com/apex/log"

	"mealsnap/imaging"
)

// Step is the view the flow is currently on.
type Step string

const (
	StepHome       Step = "home"
	StepProcessing Step = "processing"
	StepResult     Step = "result"
)

// DEFAULT_MEAL_NAME is used when the predictor names nothing.
const DEFAULT_MEAL_NAME = "Logged Meal"

// AnalysisResult is the normalized prediction for one capture. Calories is
// passed through exactly as the predictor returned it.
type AnalysisResult struct {
	MealName       string         `json:"meal"`
	Ingredients    []string       `json:"ingredients"`
	Calories       any            `json:"calories"`
	ImageReference string         `json:"image"`
	PreviewURI     string         `json:"previewUrl,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}

// State is a snapshot of the workflow.
type State struct {
	Capture  *imaging.CapturedImage
	Analysis *AnalysisResult
	Error    string
	Step     Step
}

// Navigator moves the flow to another view.
type Navigator interface {
	Navigate(step Step)
}

// Store holds the workflow state shared by the processing and review steps.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Step: StepHome}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Begin starts a new flow for img: capture set, analysis and error cleared.
func (s *Store) Begin(img *imaging.CapturedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Capture = img
	s.state.Analysis = nil
	s.state.Error = ""
	log.Infof("[Workflow] capture %s accepted", captureID(img))
}

func (s *Store) SetAnalysis(a *AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Analysis = a
}

func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = message
}

// Reset clears capture and analysis. The error message is kept so it can
// still be shown.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Capture = nil
	s.state.Analysis = nil
}

// Commit runs update on the state while holding the store lock, but only
// when guard still reports true under that lock. It reports whether update
// ran.
func (s *Store) Commit(guard func() bool, update func(state *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if guard != nil && !guard() {
		return false
	}
	update(&s.state)
	return true
}

// Navigate records the current step. Store is its own Navigator when no
// view layer is attached.
func (s *Store) Navigate(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Step != step {
		log.Debugf("[Workflow] %s -> %s", s.state.Step, step)
	}
	s.state.Step = step
}

func captureID(img *imaging.CapturedImage) string {
	if img == nil {
		return "<nil>"
	}
	return img.ID
}
