// Package session implements the confirm/cancel interaction around one meal
// photo: pick or shoot, normalize, review, confirm.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"

	"mealsnap/capture"
	"mealsnap/imaging"
)

// Status is the phase of a capture session.
type Status int

const (
	Idle Status = iota
	Processing
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

const PROCESSING_FAILED_MESSAGE = "We couldn't process this photo. Please try another or reduce its size."

var (
	ErrNotReady = errors.New("no processed photo to confirm")
	ErrClosed   = errors.New("capture session is closed")
	ErrBusy     = errors.New("a photo is already being processed")
)

// State is a snapshot of the session. Image is set only when Ready,
// Message only when Error.
type State struct {
	Status  Status
	Image   *imaging.CapturedImage
	Message string
}

// Normalizer is the image normalization step.
type Normalizer interface {
	Normalize(ctx context.Context, src imaging.SourceFile) (*imaging.CapturedImage, error)
}

// releaser is implemented by sources that hold a device, e.g. the camera.
type releaser interface {
	Release()
}

// ConfirmFunc receives the confirmed photo.
type ConfirmFunc func(ctx context.Context, img *imaging.CapturedImage) error

// Session owns transient capture state. A new capture always discards the
// previous one; results of a capture that was discarded while still being
// processed are dropped.
type Session struct {
	normalizer Normalizer
	camera     capture.Source
	files      capture.Source

	mu         sync.Mutex
	id         string
	open       bool
	state      State
	generation uint64
}

// New creates a closed session. Either source may be nil.
func New(normalizer Normalizer, camera, files capture.Source) *Session {
	return &Session{normalizer: normalizer, camera: camera, files: files}
}

// Open starts a fresh session at Idle.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.open = true
	s.id = uuid.NewString()
	log.WithField("session", s.id).Debug("[Session] opened")
}

// IsOpen reports whether the session is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select acquires a photo from src and processes it. Choosing any source
// other than the session camera releases the camera first.
func (s *Session) Select(ctx context.Context, src capture.Source) error {
	if src != s.camera {
		s.releaseCamera()
	}
	return s.acquire(ctx, src)
}

// CaptureFromCamera takes a photo with the camera source.
func (s *Session) CaptureFromCamera(ctx context.Context) error {
	return s.Select(ctx, s.camera)
}

// CaptureFromFiles picks a photo with the file source.
func (s *Session) CaptureFromFiles(ctx context.Context) error {
	s.releaseCamera()
	return s.acquire(ctx, s.files)
}

// Retake discards the current photo and shoots a new one.
func (s *Session) Retake(ctx context.Context) error {
	s.Remove()
	return s.CaptureFromCamera(ctx)
}

// ChooseAnother discards the current photo and picks a new file.
func (s *Session) ChooseAnother(ctx context.Context) error {
	s.Remove()
	return s.CaptureFromFiles(ctx)
}

// Remove discards the current photo and returns to Idle; the session stays
// open.
func (s *Session) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) acquire(ctx context.Context, src capture.Source) error {
	if !s.IsOpen() {
		return ErrClosed
	}
	if src == nil {
		err := &capture.CaptureError{Reason: capture.CameraUnavailable}
		return s.fail(capture.UserMessage(err), err)
	}

	raw, err := src.AcquireImage(ctx)
	if err != nil {
		return s.fail(capture.UserMessage(err), err)
	}
	if raw == nil {
		// cancelled by the user
		return nil
	}
	return s.Process(ctx, raw)
}

// Process normalizes an already selected file: Processing, then Ready or
// Error.
func (s *Session) Process(ctx context.Context, file imaging.SourceFile) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state.Status == Processing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.generation++
	gen := s.generation
	s.state = State{Status: Processing}
	id := s.id
	s.mu.Unlock()

	img, err := s.normalizer.Normalize(ctx, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || gen != s.generation {
		log.WithField("session", id).Debug("[Session] dropping result of discarded capture")
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			s.state = State{Status: Idle}
			return err
		}
		log.WithField("session", id).Warnf("[Session] normalization failed: %v", err)
		s.state = State{Status: Error, Message: PROCESSING_FAILED_MESSAGE}
		return err
	}
	s.state = State{Status: Ready, Image: img}
	log.WithField("session", id).Infof("[Session] photo ready: %s (%d bytes)", img.FileName, len(img.Data))
	return nil
}

func (s *Session) fail(message string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == Processing {
		return err
	}
	s.state = State{Status: Error, Message: message}
	return err
}

// Confirm hands the ready photo to fn, then resets and closes the session
// whatever fn returns. Only valid from Ready.
func (s *Session) Confirm(ctx context.Context, fn ConfirmFunc) error {
	s.mu.Lock()
	if !s.open || s.state.Status != Ready || s.state.Image == nil {
		s.mu.Unlock()
		return ErrNotReady
	}
	img := s.state.Image
	s.mu.Unlock()

	err := fn(ctx, img)
	s.Close()
	return err
}

// Cancel discards any pending photo without confirming and closes.
func (s *Session) Cancel() {
	s.Close()
}

// Close resets to Idle, releases the camera and closes the session.
func (s *Session) Close() {
	s.mu.Lock()
	s.resetLocked()
	s.open = false
	s.mu.Unlock()
	s.releaseCamera()
}

func (s *Session) resetLocked() {
	s.generation++
	s.state = State{Status: Idle}
}

func (s *Session) releaseCamera() {
	if r, ok := s.camera.(releaser); ok {
		r.Release()
	}
}
