// Package imaging bounds the size of captured meal photos before upload.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DEFAULT_MAX_DIMENSION = 720
	DEFAULT_QUALITY       = 0.6
	DEFAULT_MIME_TYPE     = "image/jpeg"

	// Images above this size are re-encoded even when no scaling is needed.
	REENCODE_SIZE_THRESHOLD = 2 * 1024 * 1024

	defaultBaseName = "meal-photo"
)

// ErrReadFailure is returned when the source bytes cannot be read at all.
// Every other failure falls back to the original bytes.
var ErrReadFailure = errors.New("unable to read image file")

// ErrUnsupportedOutput is returned by the default encoder for output types
// it cannot produce.
var ErrUnsupportedOutput = errors.New("unsupported output image type")

// SourceFile is a raw image handed to the normalizer.
type SourceFile interface {
	Name() string
	Type() string
	Open() (io.ReadCloser, error)
}

// CapturedImage is the normalized output. It is never mutated after
// Normalize returns it.
type CapturedImage struct {
	ID             string
	FileName       string
	Data           []byte
	MimeType       string
	PreviewDataURI string
	Width          int
	Height         int
	Scaled         bool
}

// Options tunes the normalizer; zero values take the defaults.
type Options struct {
	MaxDimension       int
	Quality            float64
	MimeType           string
	CorrectOrientation bool
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DEFAULT_MAX_DIMENSION
	}
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DEFAULT_QUALITY
	}
	if o.MimeType == "" {
		o.MimeType = DEFAULT_MIME_TYPE
	}
	return o
}

// EncodeFunc writes img to w as mimeType at the given quality (0..1].
type EncodeFunc func(w io.Writer, img image.Image, mimeType string, quality float64) error

// Normalizer downscales and re-encodes images.
type Normalizer struct {
	opts   Options
	encode EncodeFunc
}

// NewNormalizer creates a Normalizer using the standard JPEG/PNG encoders.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts.withDefaults(), encode: Encode}
}

// WithEncoder swaps the encoder, mainly for tests.
func (n *Normalizer) WithEncoder(fn EncodeFunc) *Normalizer {
	n.encode = fn
	return n
}

// Options returns the effective options.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize reads src and returns a bounded image plus its preview. Only a
// read failure (or a cancelled ctx) is returned as an error.
func (n *Normalizer) Normalize(ctx context.Context, src SourceFile) (*CapturedImage, error) {
	data, err := readAll(src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := src.Type()
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}

	if !IsImageType(mimeType) {
		return n.passthrough(src.Name(), data, mimeType, 0, 0), nil
	}

	dims, decoded, err := n.measure(data)
	if err != nil || dims.X == 0 || dims.Y == 0 {
		log.Warnf("[Normalizer] could not read dimensions of %q, keeping original: %v", src.Name(), err)
		return n.passthrough(src.Name(), data, mimeType, 0, 0), nil
	}

	width, height, scaled := ScaledDimensions(dims.X, dims.Y, n.opts.MaxDimension)
	if !scaled && len(data) <= REENCODE_SIZE_THRESHOLD {
		return n.passthrough(src.Name(), data, mimeType, width, height), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := n.reencode(data, decoded, width, height)
	if err != nil {
		log.Warnf("[Normalizer] re-encoding %q failed, keeping original: %v", src.Name(), err)
		return n.passthrough(src.Name(), data, mimeType, dims.X, dims.Y), nil
	}
	if !scaled && len(out) >= len(data) {
		return n.passthrough(src.Name(), data, mimeType, width, height), nil
	}

	log.Infof("[Normalizer] %q: %d bytes -> %d bytes (%dx%d -> %dx%d)",
		src.Name(), len(data), len(out), dims.X, dims.Y, width, height)

	return &CapturedImage{
		ID:             uuid.NewString(),
		FileName:       BuildFileName(src.Name(), extensionFor(n.opts.MimeType)),
		Data:           out,
		MimeType:       n.opts.MimeType,
		PreviewDataURI: DataURI(n.opts.MimeType, out),
		Width:          width,
		Height:         height,
		Scaled:         scaled,
	}, nil
}

// measure returns the display dimensions. The cheap header-only decode is
// tried first; a full decode is the fallback, and its raster is handed back
// so it is not decoded twice.
func (n *Normalizer) measure(data []byte) (image.Point, image.Image, error) {
	orientation := 1
	if n.opts.CorrectOrientation {
		orientation = Orientation(data)
	}

	var dims image.Point
	var decoded image.Image
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		dims = image.Pt(cfg.Width, cfg.Height)
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return image.Point{}, nil, fmt.Errorf("failed to decode image: %w", err)
		}
		dims = img.Bounds().Size()
		decoded = img
	}

	if swapsAxes(orientation) {
		dims = image.Pt(dims.Y, dims.X)
	}
	return dims, decoded, nil
}

func (n *Normalizer) reencode(data []byte, decoded image.Image, width, height int) ([]byte, error) {
	img := decoded
	if img == nil {
		var err error
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
	}
	if n.opts.CorrectOrientation {
		img = Orient(img, Orientation(data))
	}

	// Opaque canvas: transparent areas become white.
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := n.encode(&buf, canvas, n.opts.MimeType, n.opts.Quality); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("encoder produced no data")
	}
	return buf.Bytes(), nil
}

func (n *Normalizer) passthrough(name string, data []byte, mimeType string, width, height int) *CapturedImage {
	return &CapturedImage{
		ID:             uuid.NewString(),
		FileName:       passthroughName(name),
		Data:           data,
		MimeType:       mimeType,
		PreviewDataURI: DataURI(mimeType, data),
		Width:          width,
		Height:         height,
	}
}

// Encode is the default EncodeFunc: JPEG at round(quality*100), or PNG.
func Encode(w io.Writer, img image.Image, mimeType string, quality float64) error {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		q := int(math.Round(quality * 100))
		if q < 1 {
			q = 1
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case "image/png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, mimeType)
	}
}

// ScaledDimensions bounds the longest side to maxDimension, keeping the
// aspect ratio. Sides are rounded to the nearest pixel and never drop below 1.
func ScaledDimensions(width, height, maxDimension int) (int, int, bool) {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxDimension {
		return width, height, false
	}
	scale := float64(maxDimension) / float64(longest)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, true
}

// IsImageType reports whether a MIME type names an image.
func IsImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// BuildFileName swaps the extension of name, defaulting the base to
// "meal-photo".
func BuildFileName(name, extension string) string {
	base := name
	if i := strings.LastIndex(base, "."); i >= 0 && i < len(base)-1 && !strings.ContainsAny(base[i+1:], "/.") {
		base = base[:i]
	}
	if base == "" {
		base = defaultBaseName
	}
	if extension == "" {
		extension = "jpg"
	}
	return base + "." + extension
}

func passthroughName(name string) string {
	if name == "" {
		return defaultBaseName
	}
	return name
}

func extensionFor(mimeType string) string {
	if i := strings.Index(mimeType, "/"); i >= 0 && i < len(mimeType)-1 {
		return mimeType[i+1:]
	}
	return "jpg"
}

func readAll(src SourceFile) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	return data, nil
}
