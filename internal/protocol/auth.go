package protocol

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the account and a fresh token pair.
type LoginResponse struct {
	User         AccountSummary `json:"user"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
}

// RefreshRequest is the body of POST /api/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// PingResponse answers liveness probes.
type PingResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
