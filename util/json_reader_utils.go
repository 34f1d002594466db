package util

import (
	"encoding/json"
	"fmt"
	"os"

	"mealsnap/models"
)

// ReadMealsFromJSON loads a meal history fixture from JSON on disk.
func ReadMealsFromJSON(filePath string) ([]models.MealRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var meals []models.MealRecord
	if err := json.Unmarshal(data, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meals: %w", err)
	}
	return meals, nil
}

// ReadObjectFromJSON loads a free-form JSON object (upload or predict
// responses) from disk.
func ReadObjectFromJSON(filePath string) (map[string]any, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}
	return obj, nil
}

// ReadProfileFromJSON loads a Profile from JSON on disk.
func ReadProfileFromJSON(filePath string) (*models.Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Profile: %w", err)
	}
	return &p, nil
}
