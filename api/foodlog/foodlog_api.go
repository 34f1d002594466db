package foodlog

import (
	"context"

	"mealsnap/models"
)

// FoodLogAPI defines the interface for interacting with the food log backend
type FoodLogAPI interface {
	Upload(ctx context.Context, image models.ImageFile) (map[string]any, error)
	Predict(ctx context.Context, image models.ImageFile) (map[string]any, error)
	ListMeals(ctx context.Context) ([]models.MealRecord, error)
	SaveMeal(ctx context.Context, req models.SaveMealRequest) (map[string]any, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context) (*models.Profile, error)
	ResolveImage(value string) string
}
