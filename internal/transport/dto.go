package transport

import "time"

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Username  string `form:"username"   json:"username"`
	Password  string `form:"password"   json:"password"`
	GrantType string `form:"grant_type" json:"grant_type"`
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MeResponse struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
