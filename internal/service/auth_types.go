package service

import (
	"context"
	"time"

	"occupancy/internal/entity"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(subject uint, username string, role entity.Role) (string, time.Duration, error)
	ParseAccessToken(token string) (*TokenClaims, error)
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   uint
	Username  string
	Role      entity.Role
	TokenID   string
	ExpiresAt time.Time
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID        uint
	Username  string
	Role      entity.Role
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator is the contract the HTTP layer relies on before any session
// or occupancy call.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
