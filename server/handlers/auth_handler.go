package handlers

import (
	"encoding/json"
	"net/http"

	"mealsnap/models"
	services "mealsnap/service"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginResult struct {
	Email string `json:"email"`
}

type ProfileResult struct {
	Profile models.Profile `json:"profile"`
	Warning string         `json:"warning,omitempty"`
}

// Login expects {"email": ..., "password": ...}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, services.LoginErrorMessage(err))
		return
	}
	result := LoginResult{}
	if user.Email != nil {
		result.Email = *user.Email
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(); err != nil {
		writeError(w, http.StatusInternalServerError, "Unable to sign out right now.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile always answers with a profile; a warning is set when the saved
// details are shown instead of the backend ones.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Profile(r.Context())
	result := ProfileResult{Profile: profile}
	if err != nil {
		result.Warning = services.ProfileErrorMessage(err)
	}
	writeJSON(w, http.StatusOK, result)
}
