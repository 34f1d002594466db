package workflow

import (
	"fmt"
	"strconv"
)

// Accessor reads one candidate value from a loosely typed response.
type Accessor func(map[string]any) string

// Field reads key, treating empty strings, zero numbers and booleans as
// absent.
func Field(key string) Accessor {
	return func(m map[string]any) string {
		switch v := m[key].(type) {
		case string:
			return v
		case float64:
			if v == 0 {
				return ""
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case nil, bool:
			return ""
		default:
			return fmt.Sprint(v)
		}
	}
}

// FirstNonEmpty returns the first non-empty accessor value, in order.
func FirstNonEmpty(m map[string]any, accessors ...Accessor) string {
	if m == nil {
		return ""
	}
	for _, get := range accessors {
		if v := get(m); v != "" {
			return v
		}
	}
	return ""
}

var (
	// UploadReferenceFields is where the stored file reference may appear
	// in an upload response.
	UploadReferenceFields = []Accessor{Field("path"), Field("image_url"), Field("image"), Field("filename"), Field("file")}
	PredictNameFields     = []Accessor{Field("meal"), Field("food")}
	PredictImageFields    = []Accessor{Field("image"), Field("image_url")}
)

// Ingredients reads the ingredient list, defaulting to empty.
func Ingredients(m map[string]any) []string {
	list, _ := m["ingredients"].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
