package capture

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
)

// IMAGE_ACCEPT restricts file selection to images.
const IMAGE_ACCEPT = "image/*"

// Picker is the platform file selection affordance. An empty result means
// the user cancelled.
type Picker interface {
	Pick(ctx context.Context, accept string) ([]*RawImage, error)
}

// FileSource resolves with the first picked file whose type matches
// IMAGE_ACCEPT. Files of any other type are skipped.
type FileSource struct {
	picker Picker
}

func NewFileSource(picker Picker) *FileSource {
	return &FileSource{picker: picker}
}

func (f *FileSource) AcquireImage(ctx context.Context) (*RawImage, error) {
	files, err := f.picker.Pick(ctx, IMAGE_ACCEPT)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if accepted := Accept(IMAGE_ACCEPT, file); accepted != nil {
			return accepted, nil
		}
		log.Infof("[FileSource] skipping %q: not an image", file.Name())
	}
	return nil, nil
}

// Accept returns file when its type matches the accept list, or nil. A file
// without a declared type is sniffed from its first bytes and returned with
// the detected type.
func Accept(accept string, file *RawImage) *RawImage {
	if file == nil {
		return nil
	}
	mimeType := file.Type()
	if mimeType == "" {
		rc, err := file.Open()
		if err != nil {
			return nil
		}
		detected, err := mimetype.DetectReader(rc)
		rc.Close()
		if err != nil {
			return nil
		}
		mimeType = detected.String()
		file = NewLazyRawImage(file.name, mimeType, file.open)
	}
	if !MatchesAccept(accept, mimeType) {
		return nil
	}
	return file
}

// MatchesAccept reports whether mimeType is allowed by a comma separated
// accept list such as "image/*" or "image/png,image/jpeg". An empty list
// allows everything.
func MatchesAccept(accept, mimeType string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	for _, pattern := range strings.Split(accept, ",") {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "*/*" || pattern == mediaType:
			return true
		case strings.HasSuffix(pattern, "/*") && strings.HasPrefix(mediaType, strings.TrimSuffix(pattern, "*")):
			return true
		}
	}
	return false
}

// PathPicker picks files given on the command line.
type PathPicker struct {
	Paths []string
}

func (p PathPicker) Pick(ctx context.Context, accept string) ([]*RawImage, error) {
	files := make([]*RawImage, 0, len(p.Paths))
	for _, path := range p.Paths {
		path := path
		files = append(files, NewLazyRawImage(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)),
			func() (io.ReadCloser, error) { return os.Open(path) }))
	}
	return files, nil
}

// UploadPicker picks the files posted in a multipart form field.
type UploadPicker struct {
	Form  *multipart.Form
	Field string
}

func (p UploadPicker) Pick(ctx context.Context, accept string) ([]*RawImage, error) {
	if p.Form == nil {
		return nil, nil
	}
	headers := p.Form.File[p.Field]
	files := make([]*RawImage, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}
		files = append(files, NewLazyRawImage(fh.Filename, mimeType,
			func() (io.ReadCloser, error) { return fh.Open() }))
	}
	return files, nil
}
