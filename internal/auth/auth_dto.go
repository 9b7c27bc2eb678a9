package auth

type LoginRequest struct {
	Role      string `json:"role" binding:"required"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

type AuthResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type LoginResponse struct {
	User        AuthResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
}
