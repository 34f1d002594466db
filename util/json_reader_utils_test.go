package util

import (
	"os"
	"testing"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tempFile, err := os.CreateTemp("", "test*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	_, err = tempFile.Write([]byte(content))
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tempFile.Close()
	return tempFile.Name()
}

func TestReadMealsFromJSON(t *testing.T) {
	// Arrange
	content := `[
		{"id": 7, "name": "Toast", "calories": "180", "date": "2026-10-14", "image_url": "uploads/toast.jpg"},
		{"id": "b2", "name": "Soup", "calories": null, "created_at": "2026-10-13T18:00:00"}
	]`
	tempFile := createTempFile(t, content)
	defer os.Remove(tempFile)

	// Act
	meals, err := ReadMealsFromJSON(tempFile)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("Expected 2 meals, got %d", len(meals))
	}
	if meals[0].ID != "7" {
		t.Errorf("Expected ID '7', got %s", meals[0].ID)
	}
	if meals[0].Calories == nil || *meals[0].Calories != 180 {
		t.Errorf("Expected Calories 180, got %v", meals[0].Calories)
	}
	if meals[0].Image != "uploads/toast.jpg" {
		t.Errorf("Expected Image 'uploads/toast.jpg', got %s", meals[0].Image)
	}
	if meals[1].Calories != nil {
		t.Errorf("Expected nil Calories, got %v", *meals[1].Calories)
	}
	if meals[1].DateValue() != "2026-10-13T18:00:00" {
		t.Errorf("Expected created_at fallback, got %s", meals[1].DateValue())
	}
}

func TestReadObjectFromJSON(t *testing.T) {
	// Arrange
	tempFile := createTempFile(t, `{"path": "uploads/meal.jpg"}`)
	defer os.Remove(tempFile)

	// Act
	obj, err := ReadObjectFromJSON(tempFile)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if obj["path"] != "uploads/meal.jpg" {
		t.Errorf("Expected path 'uploads/meal.jpg', got %v", obj["path"])
	}
}

func TestReadProfileFromJSON(t *testing.T) {
	// Arrange
	tempFile := createTempFile(t, `{"name": "Ada", "age": 31}`)
	defer os.Remove(tempFile)

	// Act
	profile, err := ReadProfileFromJSON(tempFile)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if profile.Name != "Ada" {
		t.Errorf("Expected Name 'Ada', got %s", profile.Name)
	}
	if profile.Age != 31 {
		t.Errorf("Expected Age 31, got %v", profile.Age)
	}
}

func TestReadMealsFromJSON_MissingFile(t *testing.T) {
	if _, err := ReadMealsFromJSON("does-not-exist.json"); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}
