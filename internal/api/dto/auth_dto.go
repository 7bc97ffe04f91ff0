package dto

// EmailRequest asks for a confirmation code to be mailed
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenRequest exchanges email + confirmation code for tokens
type TokenRequest struct {
	Email            string `json:"email" binding:"required,email"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// AuthResponse carries a freshly issued token pair
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
}

// RefreshTokenRequest for obtaining a new token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse returns the rotated token pair
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RevokeTokenRequest invalidates a refresh token
type RevokeTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RevokeTokenResponse acknowledges revocation
type RevokeTokenResponse struct {
	Message string `json:"message"`
}
