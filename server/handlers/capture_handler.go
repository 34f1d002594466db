package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"

	"mealsnap/api/foodlog"
	"mealsnap/capture"
	"mealsnap/imaging"
	services "mealsnap/service"
	"mealsnap/session"
)

// MAX_UPLOAD_BYTES bounds the multipart form kept in memory.
const MAX_UPLOAD_BYTES = 32 << 20

type CaptureHandler struct {
	flow *services.MealFlowService
}

func NewCaptureHandler(flow *services.MealFlowService) *CaptureHandler {
	return &CaptureHandler{flow: flow}
}

type CapturedImageView struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Preview  string `json:"preview"`
}

type CaptureState struct {
	Open    bool               `json:"open"`
	Status  string             `json:"status"`
	Message string             `json:"message,omitempty"`
	Image   *CapturedImageView `json:"image,omitempty"`
}

func newCapturedImageView(img *imaging.CapturedImage) *CapturedImageView {
	if img == nil {
		return nil
	}
	return &CapturedImageView{
		ID:       img.ID,
		FileName: img.FileName,
		MimeType: img.MimeType,
		Size:     len(img.Data),
		Width:    img.Width,
		Height:   img.Height,
		Preview:  img.PreviewDataURI,
	}
}

func (h *CaptureHandler) state() CaptureState {
	s := h.flow.Session()
	st := s.State()
	return CaptureState{
		Open:    s.IsOpen(),
		Status:  st.Status.String(),
		Message: st.Message,
		Image:   newCapturedImageView(st.Image),
	}
}

func (h *CaptureHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h *CaptureHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.flow.Session().Open()
	writeJSON(w, http.StatusOK, h.state())
}

// Upload processes the photo posted in the multipart "image" field, opening
// the session when needed. A missing file leaves the session as it was.
func (h *CaptureHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MAX_UPLOAD_BYTES); err != nil {
		writeError(w, http.StatusBadRequest, "Please attach a photo of your meal.")
		return
	}
	sess := h.flow.Session()
	if !sess.IsOpen() {
		sess.Open()
	}
	source := capture.NewFileSource(capture.UploadPicker{Form: r.MultipartForm, Field: foodlog.IMAGE_FORM_FIELD})
	if err := sess.Select(r.Context(), source); err != nil {
		log.Warnf("[CaptureHandler] upload processing failed: %v", err)
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, "A photo is already being processed.")
			return
		}
	}
	writeJSON(w, http.StatusOK, h.state())
}

// Camera takes a photo with the configured camera.
func (h *CaptureHandler) Camera(w http.ResponseWriter, r *http.Request) {
	sess := h.flow.Session()
	if !sess.IsOpen() {
		sess.Open()
	}
	if err := sess.CaptureFromCamera(r.Context()); err != nil {
		log.Warnf("[CaptureHandler] camera capture failed: %v", err)
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h *CaptureHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.flow.Session().Remove()
	writeJSON(w, http.StatusOK, h.state())
}

// Confirm starts processing the ready photo.
func (h *CaptureHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Confirm(r.Context()); err != nil {
		if errors.Is(err, session.ErrNotReady) {
			writeError(w, http.StatusConflict, "Take or choose a photo first.")
			return
		}
		writeError(w, http.StatusInternalServerError, "We could not start processing this photo.")
		return
	}
	writeJSON(w, http.StatusAccepted, newWorkflowState(h.flow))
}

func (h *CaptureHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.flow.Session().Cancel()
	writeJSON(w, http.StatusOK, h.state())
}
