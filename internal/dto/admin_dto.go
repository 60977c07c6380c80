package dto

import (
	"time"

	"occupancy/internal/entity"
)

type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

type UpdateAdminRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Role     *string `json:"role" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

type AdminResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"last_login"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewAdminResponse(admin entity.Admin) AdminResponse {
	return AdminResponse{
		ID:        admin.ID,
		Username:  admin.Username,
		Name:      admin.Name,
		Role:      admin.Role,
		Email:     admin.Email,
		LastLogin: admin.LastLogin,
		Status:    string(admin.Status),
		CreatedAt: admin.CreatedAt,
		UpdatedAt: admin.UpdatedAt,
	}
}

func NewAdminResponses(admins []entity.Admin) []AdminResponse {
	out := make([]AdminResponse, 0, len(admins))
	for _, admin := range admins {
		out = append(out, NewAdminResponse(admin))
	}
	return out
}
