package redis

import (
	"encoding/json"
	"errors"
	"fmt"

	"mealsnap/db"
	"mealsnap/models"
)

const MEALS_CACHE_KEY_V1 = "meals_cache_v1"

// RedisMealDAO caches the last meal history fetched from the backend.
type RedisMealDAO struct {
	client db.RedisClient
}

// NewRedisMealDAO initializes a RedisMealDAO with the Redis client.
func NewRedisMealDAO(client db.RedisClient) *RedisMealDAO {
	return &RedisMealDAO{client: client}
}

// SetMeals replaces the cached history.
func (dao *RedisMealDAO) SetMeals(meals []models.MealRecord) error {
	data, err := json.Marshal(meals)
	if err != nil {
		return fmt.Errorf("failed to marshal meals: %w", err)
	}
	if err := dao.client.Set(MEALS_CACHE_KEY_V1, string(data)); err != nil {
		return fmt.Errorf("failed to set meals in redis: %w", err)
	}
	return nil
}

// GetMeals returns the cached history; a cache miss yields nil, nil.
func (dao *RedisMealDAO) GetMeals() ([]models.MealRecord, error) {
	str, err := dao.client.Get(MEALS_CACHE_KEY_V1)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meals from redis: %w", err)
	}
	var meals []models.MealRecord
	if err := json.Unmarshal([]byte(str), &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meals JSON: %w", err)
	}
	return meals, nil
}

// ClearMeals drops the cached history.
func (dao *RedisMealDAO) ClearMeals() error {
	if err := dao.client.Del(MEALS_CACHE_KEY_V1); err != nil {
		return fmt.Errorf("failed to delete meals cache: %w", err)
	}
	return nil
}
