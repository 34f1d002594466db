package imaging

import (
	"bytes"
	"io"
)

// BytesFile is an in-memory SourceFile.
type BytesFile struct {
	FileName string
	MimeType string
	Data     []byte
}

func (f BytesFile) Name() string { return f.FileName }

func (f BytesFile) Type() string { return f.MimeType }

func (f BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}
