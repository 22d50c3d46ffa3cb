package dto

// SignupRequest represents a signup request
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
	Phone           string `json:"phone"`
	BusinessType    string `json:"business_type"`
	PaymentTerms    string `json:"payment_terms"`
}

// SigninRequest represents a signin request
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthUser is the user shape embedded in auth responses
type AuthUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// AuthResponse represents a signup or signin response
type AuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

// Session mirrors the session object the SPA stores client-side
type Session struct {
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresAt   int64    `json:"expires_at"`
}

// SessionData wraps a session for the session endpoint
type SessionData struct {
	Session *Session `json:"session"`
}

// SessionResponse represents the session endpoint response
type SessionResponse struct {
	Data SessionData `json:"data"`
}

// ResetRequestRequest asks for a password reset email
type ResetRequestRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetRequest performs the reset with a previously issued token
type ResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateCredentialsRequest updates the signed-in user's email or password
type UpdateCredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
