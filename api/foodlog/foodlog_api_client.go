package foodlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mealsnap/api"
	"mealsnap/models"
)

const IMAGE_FORM_FIELD = "image"

// DefaultMealImage is shown when a meal has no usable image reference.
const DefaultMealImage = "/img/home-decor-1.jpeg"

// FoodLogApiClient embeds the common HTTPClient
type FoodLogApiClient struct {
	*api.HTTPClient // Embed HTTPClient to reuse its methods and properties
	assetsBaseURL   string
}

// NewFoodLogApiClient creates a new instance of FoodLogApiClient. The http
// client's BaseURL already carries the /api prefix; assetsBaseURL is the bare
// backend origin used for uploaded images.
func NewFoodLogApiClient(httpClient *api.HTTPClient, assetsBaseURL string) *FoodLogApiClient {
	return &FoodLogApiClient{
		HTTPClient:    httpClient,
		assetsBaseURL: strings.TrimRight(assetsBaseURL, "/"),
	}
}

// Upload stores the image on the backend and returns the raw response.
func (c *FoodLogApiClient) Upload(ctx context.Context, image models.ImageFile) (map[string]any, error) {
	var response map[string]any
	if err := c.HTTPClient.Upload(ctx, "/upload", IMAGE_FORM_FIELD, image.Name, image.MimeType, image.Data, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Predict asks the backend to analyze the image.
func (c *FoodLogApiClient) Predict(ctx context.Context, image models.ImageFile) (map[string]any, error) {
	var response map[string]any
	if err := c.HTTPClient.Upload(ctx, "/predict", IMAGE_FORM_FIELD, image.Name, image.MimeType, image.Data, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// ListMeals returns the meal history. A non-array response is treated as empty.
func (c *FoodLogApiClient) ListMeals(ctx context.Context) ([]models.MealRecord, error) {
	var raw json.RawMessage
	if err := c.Request(ctx, "GET", "/meals", nil, nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []models.MealRecord{}, nil
	}
	var meals []models.MealRecord
	if err := json.Unmarshal(trimmed, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meals: %w", err)
	}
	return meals, nil
}

// SaveMeal persists a reviewed meal.
func (c *FoodLogApiClient) SaveMeal(ctx context.Context, req models.SaveMealRequest) (map[string]any, error) {
	var response map[string]any
	if err := c.Request(ctx, "POST", "/save_meal", nil, req, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Login exchanges credentials for a token.
func (c *FoodLogApiClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var response models.LoginResponse
	if err := c.Request(ctx, "POST", "/login", nil, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetProfile fetches the user profile.
func (c *FoodLogApiClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var response models.Profile
	if err := c.Request(ctx, "GET", "/profile", nil, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ResolveImage turns a stored image reference into a displayable URL.
func (c *FoodLogApiClient) ResolveImage(value string) string {
	return ResolveBackendImage(c.assetsBaseURL, value)
}

// ResolveBackendImage maps a stored reference to <base>/uploads/<name>.
// Absolute http(s) URLs pass through untouched; an empty reference yields
// DefaultMealImage.
func ResolveBackendImage(baseURL, value string) string {
	if value == "" {
		return DefaultMealImage
	}
	if strings.HasPrefix(value, "http") {
		return value
	}
	normalized := strings.TrimLeft(strings.ReplaceAll(value, `\`, "/"), "/")
	normalized = strings.TrimPrefix(normalized, "uploads/")
	return baseURL + "/uploads/" + normalized
}
