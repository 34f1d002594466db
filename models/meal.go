package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MealRecord is one entry of the meal history returned by GET /meals.
type MealRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Calories  *float64 `json:"calories"`
	Date      string   `json:"date,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	Image     string   `json:"image,omitempty"`
}

// UnmarshalJSON accepts numeric or string ids and calories, and picks the
// image reference from image, image_url or filename.
func (m *MealRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Name      string          `json:"name"`
		Calories  json.RawMessage `json:"calories"`
		Date      string          `json:"date"`
		CreatedAt string          `json:"created_at"`
		Image     string          `json:"image"`
		ImageURL  string          `json:"image_url"`
		Filename  string          `json:"filename"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal meal record: %w", err)
	}

	m.ID = rawToString(raw.ID)
	m.Name = raw.Name
	m.Date = raw.Date
	m.CreatedAt = raw.CreatedAt
	m.Calories = nil
	if len(raw.Calories) > 0 {
		var v any
		if err := json.Unmarshal(raw.Calories, &v); err == nil && v != nil {
			if f := CaloriesValue(v); !math.IsNaN(f) && !math.IsInf(f, 0) {
				m.Calories = &f
			}
		}
	}
	switch {
	case raw.Image != "":
		m.Image = raw.Image
	case raw.ImageURL != "":
		m.Image = raw.ImageURL
	default:
		m.Image = raw.Filename
	}
	return nil
}

// DateValue returns the primary date field, falling back to created_at.
func (m MealRecord) DateValue() string {
	if m.Date != "" {
		return m.Date
	}
	return m.CreatedAt
}

// CaloriesValue converts a loosely typed calories value to a number.
// Anything that is not a number or a numeric string yields NaN.
func CaloriesValue(v any) float64 {
	switch c := v.(type) {
	case float64:
		return c
	case float32:
		return float64(c)
	case int:
		return float64(c)
	case int64:
		return float64(c)
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(c)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
