package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStream struct {
	frame image.Image
	stops int
}

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	return s.frame, nil
}

func (s *fakeStream) Stop() { s.stops++ }

type fakeCamera struct {
	available bool
	openErr   error
	opened    []*fakeStream
}

func (c *fakeCamera) Available() bool { return c.available }

func (c *fakeCamera) Open(ctx context.Context, facing Facing) (Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	s := &fakeStream{frame: image.NewRGBA(image.Rect(0, 0, 64, 48))}
	c.opened = append(c.opened, s)
	return s, nil
}

type fakeSurface struct {
	attached Stream
	detaches int
}

func (s *fakeSurface) Attach(st Stream) { s.attached = st }
func (s *fakeSurface) Detach() {
	s.attached = nil
	s.detaches++
}

func TestCameraSource_AcquireImage_PNGAtNativeResolution(t *testing.T) {
	camera := &fakeCamera{available: true}
	surface := &fakeSurface{}
	source := NewCameraSource(camera, surface)

	raw, err := source.AcquireImage(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, FRAME_MIME_TYPE, raw.Type())
	rc, _ := raw.Open()
	data, _ := io.ReadAll(rc)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)

	assert.Len(t, camera.opened, 1)
	assert.Equal(t, 1, camera.opened[0].stops)
	assert.Nil(t, surface.attached)
	assert.False(t, source.Active())
}

func TestCameraSource_Unavailable(t *testing.T) {
	source := NewCameraSource(&fakeCamera{available: false}, nil)

	_, err := source.AcquireImage(context.Background())

	assert.True(t, errors.Is(err, ErrCameraUnavailable))
	var capErr *CaptureError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, CameraUnavailable, capErr.Reason)
}

func TestCameraSource_NilCameraIsUnavailable(t *testing.T) {
	_, err := NewCameraSource(nil, nil).AcquireImage(context.Background())
	assert.True(t, errors.Is(err, ErrCameraUnavailable))
}

func TestCameraSource_PermissionDeniedAndAccessFailed(t *testing.T) {
	_, err := NewCameraSource(&fakeCamera{available: true, openErr: ErrPermission}, nil).AcquireImage(context.Background())
	assert.True(t, errors.Is(err, ErrCameraPermissionDenied))
	assert.False(t, errors.Is(err, ErrCameraAccessFailed))

	_, err = NewCameraSource(&fakeCamera{available: true, openErr: errors.New("device busy")}, nil).AcquireImage(context.Background())
	assert.True(t, errors.Is(err, ErrCameraAccessFailed))
}

func TestCameraSource_StartReleasesPreviousStream(t *testing.T) {
	camera := &fakeCamera{available: true}
	source := NewCameraSource(camera, &fakeSurface{})

	assert.NoError(t, source.Start(context.Background()))
	assert.NoError(t, source.Start(context.Background()))

	assert.Len(t, camera.opened, 2)
	assert.Equal(t, 1, camera.opened[0].stops)
	assert.Equal(t, 0, camera.opened[1].stops)
	assert.True(t, source.Active())
}

func TestCameraSource_ReleaseIsIdempotent(t *testing.T) {
	camera := &fakeCamera{available: true}
	surface := &fakeSurface{}
	source := NewCameraSource(camera, surface)
	assert.NoError(t, source.Start(context.Background()))

	source.Release()
	source.Release()

	assert.Equal(t, 1, camera.opened[0].stops)
	assert.Equal(t, 3, surface.detaches)
}

func TestCameraSource_TakePhotoWithoutStream(t *testing.T) {
	_, err := NewCameraSource(&fakeCamera{available: true}, nil).TakePhoto(context.Background())
	assert.True(t, errors.Is(err, ErrCameraAccessFailed))
}

func TestFileSource_FirstFileOrNil(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "lunch.jpg")
	second := filepath.Join(dir, "dinner.png")
	assert.NoError(t, os.WriteFile(first, []byte("one"), 0644))
	assert.NoError(t, os.WriteFile(second, []byte("two"), 0644))

	raw, err := NewFileSource(PathPicker{Paths: []string{first, second}}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "lunch.jpg", raw.Name())
	assert.Equal(t, "image/jpeg", raw.Type())

	raw, err = NewFileSource(PathPicker{}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, raw)
}

func TestFileSource_SkipsNonImages(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	lunch := filepath.Join(dir, "lunch.jpg")
	assert.NoError(t, os.WriteFile(notes, []byte("hello"), 0644))
	assert.NoError(t, os.WriteFile(lunch, []byte("one"), 0644))

	raw, err := NewFileSource(PathPicker{Paths: []string{notes}}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = NewFileSource(PathPicker{Paths: []string{notes, lunch}}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "lunch.jpg", raw.Name())
}

func TestFileSource_SniffsUntypedFiles(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	picker := fixedFiles{
		NewRawImage("upload", "", []byte("just text")),
		NewRawImage("photo", "", buf.Bytes()),
	}

	raw, err := NewFileSource(picker).AcquireImage(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "photo", raw.Name())
	assert.Equal(t, "image/jpeg", raw.Type())
}

type fixedFiles []*RawImage

func (f fixedFiles) Pick(ctx context.Context, accept string) ([]*RawImage, error) {
	return f, nil
}

func TestMatchesAccept(t *testing.T) {
	tests := []struct {
		accept   string
		mimeType string
		want     bool
	}{
		{"image/*", "image/png", true},
		{"image/*", "image/jpeg; charset=binary", true},
		{"image/*", "text/plain; charset=utf-8", false},
		{"image/*", "", false},
		{"image/png, image/webp", "image/webp", true},
		{"image/png", "image/jpeg", false},
		{"*/*", "application/pdf", true},
		{"", "application/pdf", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesAccept(tt.accept, tt.mimeType), "%s accepts %s", tt.accept, tt.mimeType)
	}
}

func TestUploadPickerSkipsNonImageParts(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "menu.pdf")
	part.Write([]byte("%PDF-1.4"))
	mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.NoError(t, req.ParseMultipartForm(1<<20))

	raw, err := NewFileSource(UploadPicker{Form: req.MultipartForm, Field: "image"}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, raw)
}

func TestUploadPicker(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "meal.jpg")
	part.Write([]byte("jpeg"))
	mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.NoError(t, req.ParseMultipartForm(1<<20))

	raw, err := NewFileSource(UploadPicker{Form: req.MultipartForm, Field: "image"}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "meal.jpg", raw.Name())
	rc, err := raw.Open()
	assert.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, []byte("jpeg"), data)

	raw, err = NewFileSource(UploadPicker{Form: req.MultipartForm, Field: "photo"}).AcquireImage(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSnapshotCamera(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/locked" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 32, 16))
		img.Set(0, 0, color.White)
		jpeg.Encode(w, img, nil)
	}))
	defer srv.Close()

	raw, err := NewCameraSource(NewSnapshotCamera(srv.URL+"/snap.jpg"), nil).AcquireImage(context.Background())
	assert.NoError(t, err)
	rc, _ := raw.Open()
	cfg, _, err := image.DecodeConfig(rc)
	assert.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)

	_, err = NewCameraSource(NewSnapshotCamera(srv.URL+"/locked"), nil).AcquireImage(context.Background())
	assert.True(t, errors.Is(err, ErrCameraPermissionDenied))

	assert.False(t, NewSnapshotCamera("").Available())
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(&CaptureError{Reason: CameraUnavailable}), "upload a photo")
	assert.Contains(t, UserMessage(&CaptureError{Reason: CameraPermissionDenied}), "denied")
	assert.Equal(t, "We couldn't get a photo. Please try again.", UserMessage(errors.New("x")))
}
