package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mealsnap/api/foodlog"
	"mealsnap/config"
	"mealsnap/db"
)

func TestNewContainer_Local(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "..")
	settings := config.Settings{Env: ENV_LOCAL, ImageMaxDimension: 720, ImageQuality: 0.6, ListenAddress: ":0"}

	c, err := NewContainer(context.Background(), settings)

	assert.NoError(t, err)
	assert.IsType(t, &db.MockRedisClient{}, c.RedisClient)
	assert.IsType(t, &foodlog.FoodLogApiClientMock{}, c.FoodLogAPI)
	assert.False(t, c.Camera.Active())
	assert.False(t, c.AuthService.IsAuthenticated())
	assert.Equal(t, 720, c.Normalizer.Options().MaxDimension)
	assert.False(t, c.Normalizer.Options().CorrectOrientation)
}

func TestNewContainer_CorrectOrientationSetting(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "..")
	settings := config.Settings{Env: ENV_LOCAL, ImageMaxDimension: 720, ImageQuality: 0.6, ImageCorrectOrientation: true, ListenAddress: ":0"}

	c, err := NewContainer(context.Background(), settings)

	assert.NoError(t, err)
	assert.True(t, c.Normalizer.Options().CorrectOrientation)
}
