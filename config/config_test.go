package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MEALSNAP_ENV", "")
	t.Setenv("FOODLOG_API_BASE_URL", "")
	t.Setenv("IMAGE_MAX_DIMENSION", "")
	t.Setenv("IMAGE_CORRECT_ORIENTATION", "")

	s := Load()

	assert.Equal(t, "prod", s.Env)
	assert.Equal(t, FOODLOG_API_BASE_URL, s.APIBaseURL)
	assert.Equal(t, IMAGE_MAX_DIMENSION, s.ImageMaxDimension)
	assert.Equal(t, IMAGE_QUALITY, s.ImageQuality)
	assert.False(t, s.ImageCorrectOrientation)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MEALSNAP_ENV", "dev")
	t.Setenv("FOODLOG_API_BASE_URL", "http://backend:5000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IMAGE_QUALITY", "0.8")
	t.Setenv("IMAGE_MAX_DIMENSION", "big")
	t.Setenv("IMAGE_CORRECT_ORIENTATION", "true")

	s := Load()

	assert.Equal(t, "dev", s.Env)
	assert.Equal(t, "http://backend:5000", s.APIBaseURL)
	assert.Equal(t, 3, s.RedisDB)
	assert.Equal(t, 0.8, s.ImageQuality)
	assert.Equal(t, IMAGE_MAX_DIMENSION, s.ImageMaxDimension)
	assert.True(t, s.ImageCorrectOrientation)
}

func TestGetResourcePath(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "/srv/mealsnap")

	assert.Equal(t, filepath.Join("/srv/mealsnap", "resources", MEALS_RESPONSE_RESOURCE), GetResourcePath(MEALS_RESPONSE_RESOURCE))
}
