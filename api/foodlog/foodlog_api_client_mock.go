package foodlog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"mealsnap/api"
	"mealsnap/config"
	"mealsnap/models"
	"mealsnap/util"
)

// mockCredentials mirrors the test users the development backend accepts.
var mockCredentials = map[string]string{
	"momeni.salar@gmail.com": "1234",
	"test@example.com":       "1234",
}

const MOCK_TOKEN = "valid_token_123"

// FoodLogApiClientMock serves fixture responses from the resources
// directory and keeps saved meals in memory.
type FoodLogApiClientMock struct {
	mu     sync.Mutex
	meals  []models.MealRecord
	loaded bool
}

// NewFoodLogApiClientMock creates a new instance of FoodLogApiClientMock
func NewFoodLogApiClientMock() *FoodLogApiClientMock {
	return &FoodLogApiClientMock{}
}

func (c *FoodLogApiClientMock) Upload(ctx context.Context, image models.ImageFile) (map[string]any, error) {
	if len(image.Data) == 0 {
		return nil, &api.APIError{Status: 400, Message: "No image provided"}
	}
	resp, err := util.ReadObjectFromJSON(config.GetResourcePath(config.UPLOAD_RESPONSE_RESOURCE))
	if err != nil {
		log.Warnf("[FoodLogApiClientMock] could not read upload response: %v", err)
		return nil, err
	}
	return resp, nil
}

func (c *FoodLogApiClientMock) Predict(ctx context.Context, image models.ImageFile) (map[string]any, error) {
	if len(image.Data) == 0 {
		return nil, &api.APIError{Status: 400, Message: "No image provided"}
	}
	resp, err := util.ReadObjectFromJSON(config.GetResourcePath(config.PREDICT_RESPONSE_RESOURCE))
	if err != nil {
		log.Warnf("[FoodLogApiClientMock] could not read predict response: %v", err)
		return nil, err
	}
	return resp, nil
}

func (c *FoodLogApiClientMock) ListMeals(ctx context.Context) ([]models.MealRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]models.MealRecord, len(c.meals))
	copy(out, c.meals)
	return out, nil
}

func (c *FoodLogApiClientMock) SaveMeal(ctx context.Context, req models.SaveMealRequest) (map[string]any, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &api.APIError{Status: 400, Message: "Meal name and calories are required."}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(); err != nil {
		return nil, err
	}

	now := time.Now()
	calories := float64(req.Calories)
	meal := models.MealRecord{
		ID:        strconv.Itoa(len(c.meals) + 1),
		Name:      req.Name,
		Calories:  &calories,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now.Format("2006-01-02T15:04:05"),
		Image:     req.Image,
	}
	c.meals = append(c.meals, meal)
	return map[string]any{"message": "Meal saved", "id": meal.ID}, nil
}

func (c *FoodLogApiClientMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, &api.APIError{Status: 400, Message: "Email and password are required."}
	}
	if expected, ok := mockCredentials[email]; ok && expected == req.Password {
		return &models.LoginResponse{Token: MOCK_TOKEN, Message: "Login successful", Email: strings.TrimSpace(req.Email)}, nil
	}
	return nil, &api.APIError{Status: 401, Message: "Invalid credentials"}
}

func (c *FoodLogApiClientMock) GetProfile(ctx context.Context) (*models.Profile, error) {
	return util.ReadProfileFromJSON(config.GetResourcePath(config.PROFILE_RESPONSE_RESOURCE))
}

func (c *FoodLogApiClientMock) ResolveImage(value string) string {
	return ResolveBackendImage(config.FOODLOG_API_BASE_URL, value)
}

func (c *FoodLogApiClientMock) loadLocked() error {
	if c.loaded {
		return nil
	}
	meals, err := util.ReadMealsFromJSON(config.GetResourcePath(config.MEALS_RESPONSE_RESOURCE))
	if err != nil {
		return fmt.Errorf("could not read meals fixture: %w", err)
	}
	c.meals = meals
	c.loaded = true
	return nil
}
