package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"
)

// SnapshotCamera is a network camera that serves still frames over HTTP.
// It stands in for a device camera on hosts that have none.
type SnapshotCamera struct {
	URL    string
	Client *http.Client
}

// NewSnapshotCamera creates a SnapshotCamera; an empty url means no camera.
func NewSnapshotCamera(url string) *SnapshotCamera {
	return &SnapshotCamera{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *SnapshotCamera) Available() bool {
	return c != nil && c.URL != ""
}

// Open probes the snapshot endpoint once so that permission problems
// surface before the user takes a photo.
func (c *SnapshotCamera) Open(ctx context.Context, facing Facing) (Stream, error) {
	if _, err := c.fetch(ctx); err != nil {
		return nil, err
	}
	return &snapshotStream{camera: c}, nil
}

func (c *SnapshotCamera) fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrPermission, res.Status)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status code: %s", res.Status)
	}

	img, _, err := image.Decode(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

type snapshotStream struct {
	camera  *SnapshotCamera
	stopped bool
}

func (s *snapshotStream) Frame(ctx context.Context) (image.Image, error) {
	if s.stopped {
		return nil, errors.New("stream stopped")
	}
	return s.camera.fetch(ctx)
}

func (s *snapshotStream) Stop() {
	s.stopped = true
}
