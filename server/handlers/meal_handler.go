package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"

	"mealsnap/api/foodlog"
	services "mealsnap/service"
	"mealsnap/util"
	"mealsnap/workflow"
)

type MealHandler struct {
	flow     *services.MealFlowService
	history  *services.MealHistoryService
	resolver util.ImageResolver
	now      func() time.Time
}

func NewMealHandler(flow *services.MealFlowService, history *services.MealHistoryService, api foodlog.FoodLogAPI) *MealHandler {
	return &MealHandler{flow: flow, history: history, resolver: api.ResolveImage, now: time.Now}
}

type WorkflowState struct {
	Step     workflow.Step            `json:"step"`
	Error    string                   `json:"error,omitempty"`
	Capture  *CapturedImageView       `json:"capture,omitempty"`
	Analysis *workflow.AnalysisResult `json:"analysis,omitempty"`
}

type ReviewResult struct {
	Analysis *workflow.AnalysisResult `json:"analysis"`
	Image    string                   `json:"image"`
	Error    string                   `json:"error,omitempty"`
}

type HistoryResult struct {
	Meals   []util.MealView `json:"meals"`
	Loading bool            `json:"loading"`
	Message string          `json:"message,omitempty"`
}

type WeeklyResult struct {
	Labels []string   `json:"labels"`
	Series [7]float64 `json:"series"`
}

func newWorkflowState(flow *services.MealFlowService) WorkflowState {
	st := flow.Store().Snapshot()
	return WorkflowState{Step: st.Step, Error: st.Error, Capture: newCapturedImageView(st.Capture), Analysis: st.Analysis}
}

// Processing reports the state of the processing view.
func (h *MealHandler) Processing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newWorkflowState(h.flow))
}

// Result enters the review view. Without an analysis the caller is sent
// home.
func (h *MealHandler) Result(w http.ResponseWriter, r *http.Request) {
	h.flow.LeaveProcessing()
	review := h.flow.Review()
	if !review.Mount() {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Nothing to review yet.", Redirect: string(workflow.StepHome)})
		return
	}
	st := h.flow.Store().Snapshot()
	writeJSON(w, http.StatusOK, ReviewResult{Analysis: st.Analysis, Image: review.ImageSource(), Error: st.Error})
}

func (h *MealHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Review().Save(r.Context()); err != nil {
		if errors.Is(err, workflow.ErrNoAnalysis) {
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Nothing to save.", Redirect: string(workflow.StepHome)})
			return
		}
		writeError(w, http.StatusBadGateway, h.flow.Store().Snapshot().Error)
		return
	}
	writeJSON(w, http.StatusOK, newWorkflowState(h.flow))
}

func (h *MealHandler) CancelResult(w http.ResponseWriter, r *http.Request) {
	h.flow.LeaveProcessing()
	h.flow.Review().Cancel()
	writeJSON(w, http.StatusOK, newWorkflowState(h.flow))
}

// List returns every saved meal as a table row.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	st := h.history.State()
	msg := st.Error
	if msg == "" && !st.Loading && len(st.Meals) == 0 {
		msg = "No meals saved yet."
	}
	writeJSON(w, http.StatusOK, HistoryResult{Meals: util.TableRows(st.Meals, time.Local, h.resolver), Loading: st.Loading, Message: msg})
}

func (h *MealHandler) Recent(w http.ResponseWriter, r *http.Request) {
	st := h.history.State()
	recent := util.RecentMeals(st.Meals, util.RECENT_MEALS, time.Local, h.resolver)
	writeJSON(w, http.StatusOK, HistoryResult{Meals: recent, Loading: st.Loading, Message: st.HistoryMessage()})
}

func (h *MealHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, h.history.State().Error)
		return
	}
	h.List(w, r)
}

func (h *MealHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WeeklyResult{Labels: util.WEEKDAY_LABELS[:], Series: h.history.WeeklySeries(h.now())})
}

// WeeklyChart renders the weekly series as an HTML page.
func (h *MealHandler) WeeklyChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.RenderWeeklyChart(w, h.history.WeeklySeries(h.now())); err != nil {
		log.Errorf("[MealHandler] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *MealHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
