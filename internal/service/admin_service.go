package service

import (
	"context"
	"strings"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/utils"
)

const defaultAdminRole = "admin"

type AdminService struct {
	admins       repository.AdminRepository
	passwordHash PasswordHasher
}

func NewAdminService(admins repository.AdminRepository, passwordHash PasswordHasher) *AdminService {
	return &AdminService{admins: admins, passwordHash: passwordHash}
}

func (s *AdminService) List(ctx context.Context) ([]entity.Admin, error) {
	return s.admins.List(ctx)
}

func (s *AdminService) Get(ctx context.Context, id uint) (*entity.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

func (s *AdminService) Create(ctx context.Context, input dto.CreateAdminRequest) (*entity.Admin, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	email := utils.NormalizeEmail(input.Email)
	if username == "" || name == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = defaultAdminRole
	}

	existing, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &entity.Admin{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Email:        email,
		Status:       entity.AdminStatusActive,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, storeError(err, ErrDuplicate)
	}
	return admin, nil
}

func (s *AdminService) Update(ctx context.Context, id uint, input dto.UpdateAdminRequest) (*entity.Admin, error) {
	admin, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		admin.Name = name
	}
	if input.Role != nil && strings.TrimSpace(*input.Role) != "" {
		admin.Role = strings.TrimSpace(*input.Role)
	}
	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrInvalidInput
		}
		if email != admin.Email {
			existing, err := s.admins.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailTaken
			}
			admin.Email = email
		}
	}
	if input.Status != nil {
		switch entity.AdminStatus(utils.NormalizeStatus(*input.Status)) {
		case entity.AdminStatusActive:
			admin.Status = entity.AdminStatusActive
		case entity.AdminStatusInactive:
			admin.Status = entity.AdminStatusInactive
		default:
			return nil, ErrInvalidStatus
		}
	}
	if input.Password != nil {
		hash, err := s.passwordHash.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, storeError(err, ErrDuplicate)
	}
	return admin, nil
}

func (s *AdminService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.admins.Delete(ctx, id)
}

// EnsureAdmin creates the bootstrap account unless an admin with the same
// username already exists. It reports whether an account was created.
func (s *AdminService) EnsureAdmin(ctx context.Context, input dto.CreateAdminRequest) (bool, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return false, nil
	}
	existing, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.Create(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}
