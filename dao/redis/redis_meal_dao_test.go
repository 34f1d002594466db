package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mealsnap/db"
	"mealsnap/models"
)

func TestRedisMealDAO_SetAndGetMeals(t *testing.T) {
	// Setup
	mockClient := db.NewMockRedisClient(context.Background())
	dao := NewRedisMealDAO(mockClient)
	calories := 420.0
	meals := []models.MealRecord{
		{ID: "1", Name: "Caesar Salad", Calories: &calories, Date: "2026-10-12", Image: "uploads/caesar.jpg"},
		{ID: "2", Name: "Mystery", CreatedAt: "2026-10-13T08:00:00"},
	}

	// Act
	err := dao.SetMeals(meals)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err := dao.GetMeals()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, meals, got)
}

func TestRedisMealDAO_GetMeals_CacheMiss(t *testing.T) {
	dao := NewRedisMealDAO(db.NewMockRedisClient(context.Background()))

	got, err := dao.GetMeals()

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisMealDAO_ClearMeals(t *testing.T) {
	dao := NewRedisMealDAO(db.NewMockRedisClient(context.Background()))
	_ = dao.SetMeals([]models.MealRecord{{ID: "1", Name: "Toast"}})

	assert.NoError(t, dao.ClearMeals())

	got, _ := dao.GetMeals()
	assert.Nil(t, got)
}
