package service

import (
	"time"

	"occupancy/internal/entity"
	"occupancy/internal/utils"
)

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(subject uint, username string, role entity.Role) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, ErrInvalidToken
	}
	return j.Manager.IssueAccessToken(subject, username, string(role))
}

func (j JWTAccessIssuer) ParseAccessToken(token string) (*TokenClaims, error) {
	if j.Manager == nil {
		return nil, ErrInvalidToken
	}
	claims, err := j.Manager.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	subject, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	role := entity.Role(claims.Role)
	if role != entity.RoleAdmin && role != entity.RoleDriver {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{
		Subject:   subject,
		Username:  claims.Username,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
