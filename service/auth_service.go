package services

import (
	"context"
	"errors"
	"strings"

	"github.com/apex/log"

	"mealsnap/api"
	"mealsnap/api/foodlog"
	"mealsnap/models"
)

const (
	// DEFAULT_TOKEN is stored when a successful login returns no token.
	DEFAULT_TOKEN = "test_token"

	LOGIN_FAILED_MESSAGE     = "We could not sign you in. Please check your credentials."
	PROFILE_FALLBACK_MESSAGE = "Unable to load profile from the server. Showing saved details."
)

var ErrMissingCredentials = errors.New("email and password are required")

// SessionStore persists the auth token and user descriptor.
type SessionStore interface {
	SaveSession(token, email, provider string) error
	GetToken() (string, error)
	GetUser() (*models.User, error)
	ClearSession() error
}

type AuthService struct {
	sessions SessionStore
	api      foodlog.FoodLogAPI
}

// NewAuthService constructs a new AuthService.
func NewAuthService(sessions SessionStore, api foodlog.FoodLogAPI) *AuthService {
	return &AuthService{sessions: sessions, api: api}
}

// Login checks the credentials against the backend and persists the
// session. Nothing is stored when the backend rejects them.
func (as *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := as.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Warnf("[AuthService] login failed for %s: %v", email, err)
		return nil, err
	}

	token := resp.Token
	if token == "" {
		token = DEFAULT_TOKEN
	}
	if e := strings.TrimSpace(resp.Email); e != "" {
		email = e
	}
	if err := as.sessions.SaveSession(token, email, ""); err != nil {
		return nil, err
	}
	log.Infof("[AuthService] %s signed in", email)
	return &models.User{Email: &email, Provider: "password"}, nil
}

// LoginErrorMessage is the sentence shown on the sign-in form for err.
func LoginErrorMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return "Please enter your email and password."
	}
	if msg := api.ErrorMessage(err); msg != "" {
		return msg
	}
	return LOGIN_FAILED_MESSAGE
}

// Logout clears every stored session key.
func (as *AuthService) Logout() error {
	return as.sessions.ClearSession()
}

// IsAuthenticated reports whether a token is stored.
func (as *AuthService) IsAuthenticated() bool {
	token, err := as.sessions.GetToken()
	if err != nil {
		log.Warnf("[AuthService] unable to read token: %v", err)
		return false
	}
	return token != ""
}

// Token returns the stored token, or "".
func (as *AuthService) Token() string {
	token, _ := as.sessions.GetToken()
	return token
}

// CurrentUser returns the stored user descriptor, or nil.
func (as *AuthService) CurrentUser() *models.User {
	user, err := as.sessions.GetUser()
	if err != nil {
		log.Warnf("[AuthService] unable to read user: %v", err)
		return nil
	}
	return user
}

// Profile loads the profile with fallbacks for every missing field. When
// the backend call fails the fallback profile is returned, carrying the
// stored email if there is one, together with the error.
func (as *AuthService) Profile(ctx context.Context) (models.Profile, error) {
	profile, err := as.api.GetProfile(ctx)
	if err == nil && profile != nil {
		return profile.WithFallbacks(), nil
	}

	fallback := models.FallbackProfile
	if user := as.CurrentUser(); user != nil && user.Email != nil && *user.Email != "" {
		fallback.Email = *user.Email
	}
	if err == nil {
		return fallback, nil
	}
	log.Warnf("[AuthService] profile unavailable, showing saved details: %v", err)
	return fallback, err
}

// ProfileErrorMessage is the sentence shown when the profile falls back.
func ProfileErrorMessage(err error) string {
	if msg := api.ErrorMessage(err); msg != "" {
		return msg
	}
	return PROFILE_FALLBACK_MESSAGE
}
