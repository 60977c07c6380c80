package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expires_in"`
	Admin     *AdminResponse  `json:"admin,omitempty"`
	Driver    *DriverResponse `json:"driver,omitempty"`
}

// ClientInfo describes where a login attempt came from.
type ClientInfo struct {
	IPAddress *string
	UserAgent *string
}
