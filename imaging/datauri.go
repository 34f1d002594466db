package imaging

import "encoding/base64"

// DataURI renders data as a base64 data URI for previews.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
