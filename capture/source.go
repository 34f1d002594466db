// Package capture acquires raw meal photos from a camera or a file picker.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// Source acquires one raw image. A nil image with a nil error means the
// user cancelled, which is not an error.
type Source interface {
	AcquireImage(ctx context.Context) (*RawImage, error)
}

// RawImage is an image as delivered by a capture source, before
// normalization. It satisfies imaging.SourceFile.
type RawImage struct {
	name     string
	mimeType string
	open     func() (io.ReadCloser, error)
}

// NewRawImage wraps in-memory bytes.
func NewRawImage(name, mimeType string, data []byte) *RawImage {
	return &RawImage{
		name:     name,
		mimeType: mimeType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewLazyRawImage defers reading until Open is called.
func NewLazyRawImage(name, mimeType string, open func() (io.ReadCloser, error)) *RawImage {
	return &RawImage{name: name, mimeType: mimeType, open: open}
}

func (r *RawImage) Name() string { return r.name }

func (r *RawImage) Type() string { return r.mimeType }

func (r *RawImage) Open() (io.ReadCloser, error) { return r.open() }

// Reason classifies capture failures.
type Reason int

const (
	CameraUnavailable Reason = iota + 1
	CameraPermissionDenied
	CameraAccessFailed
)

func (r Reason) String() string {
	switch r {
	case CameraUnavailable:
		return "camera unavailable"
	case CameraPermissionDenied:
		return "camera permission denied"
	case CameraAccessFailed:
		return "camera access failed"
	default:
		return "unknown capture failure"
	}
}

var (
	ErrCameraUnavailable      = errors.New("camera unavailable")
	ErrCameraPermissionDenied = errors.New("camera permission denied")
	ErrCameraAccessFailed     = errors.New("camera access failed")
)

// CaptureError carries the typed reason plus the underlying cause.
type CaptureError struct {
	Reason Reason
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's reason.
func (e *CaptureError) Is(target error) bool {
	switch target {
	case ErrCameraUnavailable:
		return e.Reason == CameraUnavailable
	case ErrCameraPermissionDenied:
		return e.Reason == CameraPermissionDenied
	case ErrCameraAccessFailed:
		return e.Reason == CameraAccessFailed
	}
	return false
}

// UserMessage is the sentence shown when a capture source fails.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrCameraUnavailable):
		return "Camera is not available on this device. Please upload a photo instead."
	case errors.Is(err, ErrCameraPermissionDenied):
		return "Camera access was denied. Please allow access or upload a photo instead."
	case errors.Is(err, ErrCameraAccessFailed):
		return "We couldn't start the camera. Please try again or upload a photo instead."
	default:
		return "We couldn't get a photo. Please try again."
	}
}
