package foodlog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"mealsnap/api"
	"mealsnap/models"
)

func newTestClient(srv *httptest.Server) *FoodLogApiClient {
	return NewFoodLogApiClient(api.NewHTTPClient(srv.URL+"/api"), srv.URL)
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST; got %s", r.Method)
		}
		if r.URL.Path != "/api/upload" {
			t.Errorf("expected path /api/upload; got %s", r.URL.Path)
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("expected image field: %v", err)
			return
		}
		b, _ := io.ReadAll(file)
		assert.Equal(t, []byte("jpeg-bytes"), b)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"filename": "a.jpg", "path": "uploads/a.jpg"})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Upload(context.Background(), models.ImageFile{Name: "a.jpg", MimeType: "image/jpeg", Data: []byte("jpeg-bytes")})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "uploads/a.jpg", got["path"])
}

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/predict" {
			t.Errorf("expected path /api/predict; got %s", r.URL.Path)
		}
		w.Write([]byte(`{"meal": "Salad", "ingredients": ["lettuce"], "calories": 120.6}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Predict(context.Background(), models.ImageFile{Name: "a.jpg", Data: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "Salad", got["meal"])
	assert.Equal(t, 120.6, got["calories"])
}

func TestListMeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/meals" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[{"id": 7, "name": "Soup", "calories": "250", "date": "2026-10-10", "image_url": "uploads/soup.jpg"}]`))
	}))
	defer srv.Close()

	meals, err := newTestClient(srv).ListMeals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if assert.Len(t, meals, 1) {
		assert.Equal(t, "7", meals[0].ID)
		assert.Equal(t, "Soup", meals[0].Name)
		assert.Equal(t, 250.0, *meals[0].Calories)
		assert.Equal(t, "uploads/soup.jpg", meals[0].Image)
	}
}

func TestListMeals_NonArrayIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": "not here"}`))
	}))
	defer srv.Close()

	meals, err := newTestClient(srv).ListMeals(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, meals)
	assert.Empty(t, meals)
}

func TestSaveMeal(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/save_meal" {
			t.Errorf("expected /api/save_meal; got %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &received)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "saved"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SaveMeal(context.Background(), models.SaveMealRequest{Name: "Salad", Calories: 121, Image: "uploads/a.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		key  string
		want interface{}
	}{
		{"name", "Salad"},
		{"calories", 121.0},
		{"image", "uploads/a.jpg"},
	}
	for _, c := range checks {
		if got, ok := received[c.key]; !ok || got != c.want {
			t.Errorf("body[%q] = %v; want %v", c.key, got, c.want)
		}
	}
}

func TestLogin_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid credentials"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "x"})

	assert.Nil(t, resp)
	assert.Equal(t, "Invalid credentials", api.ErrorMessage(err))
}

func TestResolveBackendImage(t *testing.T) {
	base := "http://127.0.0.1:5000"
	tests := []struct {
		in, want string
	}{
		{"", DefaultMealImage},
		{"https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"uploads/a.jpg", base + "/uploads/a.jpg"},
		{"/uploads/a.jpg", base + "/uploads/a.jpg"},
		{`uploads\b.jpg`, base + "/uploads/b.jpg"},
		{"c.jpg", base + "/uploads/c.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveBackendImage(base, tt.in), tt.in)
	}
}
