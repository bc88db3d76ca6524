package api

// RegisterRequest is a request to create a new account
type RegisterRequest struct {
	Username string `json:"username"` // username
	Password string `json:"password"` // plain password, hashed by the server
}

// RegisterResponse is returned after successful registration
type RegisterResponse struct {
	UserID  string `json:"user_id"` // user UUID
	Message string `json:"message"` // human readable confirmation
}

// LoginRequest is an authentication request
type LoginRequest struct {
	Username string `json:"username"` // username
	Password string `json:"password"` // plain password
}

// TokenResponse carries the access token issued on login
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	UserID      string `json:"user_id"`      // user UUID, owner id for records
	ExpiresIn   int64  `json:"expires_in"`   // access token lifetime in seconds
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code
	Message string `json:"message,omitempty"` // details
}
