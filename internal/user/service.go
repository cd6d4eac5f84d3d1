// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Exists(
	ctx context.Context,
	username, email string,
) (bool, error) {
	return s.repo.ExistsByUsernameOrEmail(ctx, username, strings.ToLower(email))
}

func (s *Service) Create(
	ctx context.Context,
	params auth.NewUser,
) (*auth.UserInfo, error) {
	role := params.Role
	if role == "" {
		role = RoleViewer
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     params.Username,
		Email:        strings.ToLower(params.Email),
		PasswordHash: params.PasswordHash,
		Role:         role,
		TenantID:     params.TenantID,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
	updatedAt time.Time,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash, updatedAt)
}

// SetStatus enables or disables an account of tenantID. Accounts of other
// tenants are reported as not found.
func (s *Service) SetStatus(
	ctx context.Context,
	tenantID, userID, status string,
) (*auth.UserInfo, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("set status %q: %w", status, core.ErrInvalidInput)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TenantID != tenantID {
		return nil, fmt.Errorf("set status: %w", core.ErrNotFound)
	}

	updatedAt := time.Now()
	if err := s.repo.UpdateStatus(ctx, userID, status, updatedAt); err != nil {
		return nil, err
	}

	user.Status = status
	user.UpdatedAt = updatedAt
	return toUserInfo(user), nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TenantID:     u.TenantID,
		Status:       u.Status,
		Active:       u.IsActive(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
