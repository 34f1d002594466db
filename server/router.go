package server

import (
	"mealsnap/server/handlers"

	"github.com/gorilla/mux"
)

type Router struct {
	authHandler    *handlers.AuthHandler
	captureHandler *handlers.CaptureHandler
	mealHandler    *handlers.MealHandler
	auth           Authenticator
	router         *mux.Router
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	authHandler *handlers.AuthHandler,
	captureHandler *handlers.CaptureHandler,
	mealHandler *handlers.MealHandler,
	auth Authenticator,
	router *mux.Router) *Router {
	return &Router{
		authHandler:    authHandler,
		captureHandler: captureHandler,
		mealHandler:    mealHandler,
		auth:           auth,
		router:         router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.HandleFunc("/ping", r.mealHandler.Ping).Methods("GET")
	r.router.HandleFunc("/v1/login", r.authHandler.Login).Methods("POST")
	r.router.HandleFunc("/v1/logout", r.authHandler.Logout).Methods("POST")

	protected := r.router.PathPrefix("/v1").Subrouter()
	protected.Use(RequireAuth(r.auth))

	protected.HandleFunc("/profile", r.authHandler.Profile).Methods("GET")

	// capture session
	protected.HandleFunc("/capture", r.captureHandler.Get).Methods("GET")
	protected.HandleFunc("/capture/open", r.captureHandler.Open).Methods("POST")
	// expects multipart form with the photo in the "image" field
	protected.HandleFunc("/capture/upload", r.captureHandler.Upload).Methods("POST")
	protected.HandleFunc("/capture/camera", r.captureHandler.Camera).Methods("POST")
	protected.HandleFunc("/capture/photo", r.captureHandler.Remove).Methods("DELETE")
	protected.HandleFunc("/capture/confirm", r.captureHandler.Confirm).Methods("POST")
	protected.HandleFunc("/capture/cancel", r.captureHandler.Cancel).Methods("POST")

	// processing and review
	protected.HandleFunc("/processing", r.mealHandler.Processing).Methods("GET")
	protected.HandleFunc("/result", r.mealHandler.Result).Methods("GET")
	protected.HandleFunc("/result/save", r.mealHandler.Save).Methods("POST")
	protected.HandleFunc("/result/cancel", r.mealHandler.CancelResult).Methods("POST")

	// history
	protected.HandleFunc("/meals", r.mealHandler.List).Methods("GET")
	protected.HandleFunc("/meals/recent", r.mealHandler.Recent).Methods("GET")
	protected.HandleFunc("/meals/refresh", r.mealHandler.Refresh).Methods("POST")
	protected.HandleFunc("/meals/weekly", r.mealHandler.Weekly).Methods("GET")
	protected.HandleFunc("/meals/weekly/chart", r.mealHandler.WeeklyChart).Methods("GET")
}
