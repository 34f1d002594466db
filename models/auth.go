package models

// LoginRequest is the JSON body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse holds the fields of a successful login the client consumes.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
}

// User is the lightweight descriptor persisted next to the auth token.
type User struct {
	Email    *string `json:"email"`
	Provider string  `json:"provider"`
}
