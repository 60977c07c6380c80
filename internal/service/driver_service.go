package service

import (
	"context"
	"errors"
	"strings"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/utils"
)

type DriverService struct {
	tx           repository.Transactor
	drivers      repository.DriverRepository
	sessions     repository.SessionRepository
	loginHistory repository.LoginHistoryRepository
	passwordHash PasswordHasher
}

func NewDriverService(
	tx repository.Transactor,
	drivers repository.DriverRepository,
	sessions repository.SessionRepository,
	loginHistory repository.LoginHistoryRepository,
	passwordHash PasswordHasher,
) *DriverService {
	return &DriverService{
		tx:           tx,
		drivers:      drivers,
		sessions:     sessions,
		loginHistory: loginHistory,
		passwordHash: passwordHash,
	}
}

func (s *DriverService) List(ctx context.Context) ([]entity.Driver, error) {
	return s.drivers.List(ctx)
}

func (s *DriverService) Get(ctx context.Context, id uint) (*entity.Driver, error) {
	driver, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrDriverNotFound
	}
	return driver, nil
}

func (s *DriverService) Create(ctx context.Context, input dto.CreateDriverRequest) (*entity.Driver, error) {
	username := strings.TrimSpace(input.Username)
	rfidCode := strings.TrimSpace(input.RFIDCode)
	name := strings.TrimSpace(input.NamaDriver)
	if username == "" || rfidCode == "" || name == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}
	status := entity.DriverStatusActive
	if input.Status != "" {
		parsed, err := parseDriverStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	if err := s.ensureRFIDFree(ctx, rfidCode); err != nil {
		return nil, err
	}
	email := normalizeOptionalEmail(input.Email)
	if email != nil {
		if err := s.ensureEmailFree(ctx, *email); err != nil {
			return nil, err
		}
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	driver := &entity.Driver{
		RFIDCode:     rfidCode,
		NamaDriver:   name,
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Status:       status,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, storeError(err, ErrDuplicate)
	}
	return driver, nil
}

// Update never touches the driver's active session; sessions end only
// through EndSession.
func (s *DriverService) Update(ctx context.Context, id uint, input dto.UpdateDriverRequest) (*entity.Driver, error) {
	driver, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.RFIDCode != nil {
		rfidCode := strings.TrimSpace(*input.RFIDCode)
		if rfidCode == "" {
			return nil, ErrInvalidInput
		}
		if rfidCode != driver.RFIDCode {
			if err := s.ensureRFIDFree(ctx, rfidCode); err != nil {
				return nil, err
			}
			driver.RFIDCode = rfidCode
		}
	}
	if input.NamaDriver != nil {
		name := strings.TrimSpace(*input.NamaDriver)
		if name == "" {
			return nil, ErrInvalidInput
		}
		driver.NamaDriver = name
	}
	if input.Email != nil {
		email := normalizeOptionalEmail(input.Email)
		if email != nil && (driver.Email == nil || *driver.Email != *email) {
			if err := s.ensureEmailFree(ctx, *email); err != nil {
				return nil, err
			}
		}
		driver.Email = email
	}
	if input.Status != nil {
		status, err := parseDriverStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		driver.Status = status
	}
	if input.Password != nil {
		hash, err := s.passwordHash.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		driver.PasswordHash = hash
	}

	if err := s.drivers.Update(ctx, driver); err != nil {
		return nil, storeError(err, ErrDuplicate)
	}
	return driver, nil
}

// Delete removes a driver that never had a session. The driver row is locked
// so a concurrent StartSession cannot slip in between the check and delete.
func (s *DriverService) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		driver, err := s.drivers.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if driver == nil {
			return ErrDriverNotFound
		}
		history, err := s.sessions.CountByDriver(ctx, driver.ID)
		if err != nil {
			return err
		}
		if history > 0 {
			return ErrDriverInUse
		}
		return s.drivers.Delete(ctx, driver.ID)
	})
	if errors.Is(err, repository.ErrReferenced) {
		return ErrDriverInUse
	}
	return storeError(err, nil)
}

func (s *DriverService) LoginHistory(ctx context.Context, id uint) ([]entity.DriverLoginHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.loginHistory.ListByDriver(ctx, id)
}

func (s *DriverService) ensureUsernameFree(ctx context.Context, username string) error {
	existing, err := s.drivers.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUsernameTaken
	}
	return nil
}

func (s *DriverService) ensureRFIDFree(ctx context.Context, rfidCode string) error {
	existing, err := s.drivers.FindByRFID(ctx, rfidCode)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrRFIDTaken
	}
	return nil
}

func (s *DriverService) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.drivers.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return nil
}

func normalizeOptionalEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := utils.NormalizeEmail(*email)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func parseDriverStatus(status string) (entity.DriverStatus, error) {
	switch entity.DriverStatus(utils.NormalizeStatus(status)) {
	case entity.DriverStatusActive:
		return entity.DriverStatusActive, nil
	case entity.DriverStatusInactive:
		return entity.DriverStatusInactive, nil
	}
	return "", ErrInvalidStatus
}
