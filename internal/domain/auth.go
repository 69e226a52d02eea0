package domain

// Auth types for the single-user demo login.

// Credentials is the persisted account record. The password is stored as a
// bcrypt hash, never in clear.
type Credentials struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Name         string `json:"name"`
}

// LoginRequest is the body of POST /v1/auth/login and /v1/auth/register.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}
