package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"github.com/apex/log"
)

// Facing selects which camera to open.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// FRAME_MIME_TYPE is the export type of grabbed frames. Go's PNG encoder is
// lossless, so the 0.92 export quality used for frames is implicit.
const FRAME_MIME_TYPE = "image/png"

// ErrPermission is returned by Camera.Open when the user declines access.
var ErrPermission = errors.New("permission denied")

// Camera is the platform capability for live video.
type Camera interface {
	Available() bool
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream is an open video feed.
type Stream interface {
	// Frame returns the current video frame at native resolution.
	Frame(ctx context.Context) (image.Image, error)
	// Stop ends all media tracks of the stream.
	Stop()
}

// Surface renders a live stream, e.g. a preview window.
type Surface interface {
	Attach(s Stream)
	Detach()
}

// CameraSource grabs a frame from a live camera stream. It owns at most one
// stream at a time.
type CameraSource struct {
	camera  Camera
	surface Surface
	facing  Facing

	mu     sync.Mutex
	stream Stream
}

// NewCameraSource creates a CameraSource preferring the rear camera.
// surface may be nil.
func NewCameraSource(camera Camera, surface Surface) *CameraSource {
	return &CameraSource{camera: camera, surface: surface, facing: FacingEnvironment}
}

// Start opens a stream and binds it to the surface, releasing any
// previous stream first.
func (c *CameraSource) Start(ctx context.Context) error {
	c.Release()

	if c.camera == nil || !c.camera.Available() {
		return &CaptureError{Reason: CameraUnavailable}
	}

	stream, err := c.camera.Open(ctx, c.facing)
	if err != nil {
		if errors.Is(err, ErrPermission) {
			return &CaptureError{Reason: CameraPermissionDenied, Err: err}
		}
		return &CaptureError{Reason: CameraAccessFailed, Err: err}
	}

	c.mu.Lock()
	c.stream = stream
	c.mu.Unlock()
	if c.surface != nil {
		c.surface.Attach(stream)
	}
	log.Debug("[CameraSource] stream started")
	return nil
}

// TakePhoto grabs the current frame of the running stream as PNG bytes.
func (c *CameraSource) TakePhoto(ctx context.Context) (*RawImage, error) {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()
	if stream == nil {
		return nil, &CaptureError{Reason: CameraAccessFailed, Err: errors.New("no active stream")}
	}

	frame, err := stream.Frame(ctx)
	if err != nil {
		return nil, &CaptureError{Reason: CameraAccessFailed, Err: err}
	}

	b := frame.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), frame, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, &CaptureError{Reason: CameraAccessFailed, Err: err}
	}
	return NewRawImage("camera-capture.png", FRAME_MIME_TYPE, buf.Bytes()), nil
}

// AcquireImage starts the camera, takes one photo and releases the stream.
func (c *CameraSource) AcquireImage(ctx context.Context) (*RawImage, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	defer c.Release()
	return c.TakePhoto(ctx)
}

// Release stops every track and detaches the surface. Safe to call at any
// time and any number of times.
func (c *CameraSource) Release() {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if c.surface != nil {
		c.surface.Detach()
	}
	if stream != nil {
		stream.Stop()
		log.Debug("[CameraSource] stream released")
	}
}

// Active reports whether a stream is currently open.
func (c *CameraSource) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}
