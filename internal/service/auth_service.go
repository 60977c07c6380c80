package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// dummyPassword is verified against when the username is unknown so that
// both paths spend one bcrypt comparison.
const dummyPassword = "occupancy-dummy-password"

type AuthService struct {
	admins       repository.AdminRepository
	drivers      repository.DriverRepository
	loginHistory repository.LoginHistoryRepository
	blacklist    repository.BlacklistedTokenRepository

	passwordHash PasswordHasher
	accessTokens AccessTokenIssuer
	clock        Clock
	logger       logrus.FieldLogger
	dummyHash    string
}

func NewAuthService(
	admins repository.AdminRepository,
	drivers repository.DriverRepository,
	loginHistory repository.LoginHistoryRepository,
	blacklist repository.BlacklistedTokenRepository,
	passwordHash PasswordHasher,
	accessTokens AccessTokenIssuer,
	clock Clock,
	logger logrus.FieldLogger,
) *AuthService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dummyHash, err := passwordHash.Hash(dummyPassword)
	if err != nil {
		logger.WithError(err).Warn("failed to prepare dummy password hash")
	}
	return &AuthService{
		admins:       admins,
		drivers:      drivers,
		loginHistory: loginHistory,
		blacklist:    blacklist,
		passwordHash: passwordHash,
		accessTokens: accessTokens,
		clock:        clock,
		logger:       logger,
		dummyHash:    dummyHash,
	}
}

func (s *AuthService) AdminLogin(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		_ = s.passwordHash.Verify(s.dummyHash, input.Password)
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(admin.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	if admin.Status != entity.AdminStatusActive {
		return nil, ErrAccountInactive
	}

	now := s.clock.Now()
	if err := s.admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		return nil, err
	}
	admin.LastLogin = &now

	token, expiresIn, err := s.accessTokens.IssueAccessToken(admin.ID, admin.Username, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	resp := dto.NewAdminResponse(*admin)
	s.logger.WithField("admin_id", admin.ID).Info("admin logged in")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(expiresIn.Seconds()),
		Admin:     &resp,
	}, nil
}

// DriverLogin authenticates a driver and records the attempt in the login
// history whenever the username is known.
func (s *AuthService) DriverLogin(ctx context.Context, input dto.LoginRequest, client dto.ClientInfo) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	driver, err := s.drivers.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		_ = s.passwordHash.Verify(s.dummyHash, input.Password)
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	if !s.passwordHash.Verify(driver.PasswordHash, input.Password) {
		s.logLogin(ctx, driver.ID, now, client, entity.LoginFailed, map[string]any{"reason": "invalid_password"})
		return nil, ErrInvalidCredentials
	}
	if !driver.IsActive() {
		s.logLogin(ctx, driver.ID, now, client, entity.LoginFailed, map[string]any{"reason": "inactive"})
		return nil, ErrAccountInactive
	}

	if err := s.drivers.TouchLastLogin(ctx, driver.ID, now); err != nil {
		return nil, err
	}
	driver.LastLogin = &now

	token, expiresIn, err := s.accessTokens.IssueAccessToken(driver.ID, driver.Username, entity.RoleDriver)
	if err != nil {
		return nil, err
	}
	s.logLogin(ctx, driver.ID, now, client, entity.LoginSuccess, nil)

	resp := dto.NewDriverResponse(*driver)
	s.logger.WithField("driver_id", driver.ID).Info("driver logged in")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(expiresIn.Seconds()),
		Driver:    &resp,
	}, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.accessTokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &Identity{
		ID:        claims.Subject,
		Username:  claims.Username,
		Role:      claims.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.blacklist.Exists(ctx, utils.HashToken(token))
}

// Logout blacklists the token until it would have expired anyway. For
// drivers the open login history row is closed as well.
func (s *AuthService) Logout(ctx context.Context, token string, identity Identity) error {
	now := s.clock.Now()
	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(24 * time.Hour)
	}
	if err := s.blacklist.Add(ctx, &entity.BlacklistedToken{
		TokenHash:     utils.HashToken(token),
		BlacklistedAt: now,
		ExpiresAt:     expiresAt,
	}); err != nil {
		return err
	}

	if identity.Role == entity.RoleDriver {
		if err := s.loginHistory.CloseLatest(ctx, identity.ID, now); err != nil {
			s.logger.WithError(err).WithField("driver_id", identity.ID).Warn("failed to close login history")
		}
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": identity.ID,
		"role":    identity.Role,
	}).Info("logged out")
	return nil
}

// PurgeExpiredTokens drops blacklist rows whose tokens have expired.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.blacklist.DeleteExpired(ctx, s.clock.Now())
}

func (s *AuthService) logLogin(
	ctx context.Context,
	driverID uint,
	at time.Time,
	client dto.ClientInfo,
	status entity.LoginStatus,
	metadata map[string]any,
) {
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	entry := &entity.DriverLoginHistory{
		DriverID:    driverID,
		LoginTime:   at,
		IPAddress:   client.IPAddress,
		DeviceInfo:  client.UserAgent,
		LoginStatus: status,
		Metadata:    payload,
	}
	if err := s.loginHistory.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("driver_id", driverID).Warn("failed to record login history")
	}
}
