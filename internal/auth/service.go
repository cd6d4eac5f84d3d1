// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/light618/linkbot-ai/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	ErrPasswordTooShort = fmt.Errorf(
		"password shorter than %d characters: %w",
		MinPasswordLength,
		core.ErrInvalidInput,
	)
	ErrPasswordTooLong = fmt.Errorf(
		"password longer than %d bytes: %w",
		MaxPasswordBytes,
		core.ErrInvalidInput,
	)
)

const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72

	registeredRole     = "admin"
	registrationDomain = "linkbot-ai.com"
	tokenType          = "Bearer"
)

type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	TenantID     string
	Status       string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	TenantID     string
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	UpdatePassword(
		ctx context.Context,
		userID, passwordHash string,
		updatedAt time.Time,
	) error
}

type TenantInfo struct {
	ID        string
	Name      string
	Domain    string
	Plan      string
	Status    string
	ExpiresAt time.Time
}

type NewTenant struct {
	Name   string
	Domain string
}

type TenantProvider interface {
	GetByID(ctx context.Context, id string) (*TenantInfo, error)
	Create(ctx context.Context, tenant NewTenant) (*TenantInfo, error)
}

// Authentication is the outcome of a successful credential check.
type Authentication struct {
	Identity Identity
	User     *UserInfo
	Tenant   TenantSummary
}

type Service struct {
	tokens  *TokenService
	users   UserProvider
	tenants TenantProvider
	locks   *accountLocks
	now     func() time.Time
}

func NewService(
	tokens *TokenService,
	users UserProvider,
	tenants TenantProvider,
) *Service {
	return &Service{
		tokens:  tokens,
		users:   users,
		tenants: tenants,
		locks:   newAccountLocks(),
		now:     time.Now,
	}
}

func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Authenticate checks username and password, then account status, then the
// tenant reference, in that order.
func (s *Service) Authenticate(
	ctx context.Context,
	username, password string,
) (*Authentication, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	tenant, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return &Authentication{
		Identity: identityOf(user),
		User:     user,
		Tenant:   toTenantSummary(tenant),
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	result, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		core.AddSpanEvent(ctx, "auth.login_failed",
			attribute.String("reason", err.Error()),
		)
		return nil, err
	}

	return s.authResponse(result.User, result.Tenant)
}

// Register creates a tenant on a trial plan and its first admin user.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if err := checkPassword(req.Password); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	exists, err := s.users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tenantName := req.TenantName
	if tenantName == "" {
		tenantName = req.Username + "的企业"
	}

	tenant, err := s.tenants.Create(ctx, NewTenant{
		Name:   tenantName,
		Domain: req.Username + "." + registrationDomain,
	})
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         registeredRole,
		TenantID:     tenant.ID,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "tenant registered",
		"tenant_id", tenant.ID,
		"user_id", user.ID,
	)

	return s.authResponse(user, toTenantSummary(tenant))
}

// Refresh trades a still-valid token for a new one carrying the same
// identity.
func (s *Service) Refresh(
	ctx context.Context,
	token string,
) (*TokenResponse, error) {
	signed, claims, err := s.tokens.Refresh(token)
	if err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "auth.token_refreshed",
		attribute.String("user_id", claims.UserID),
	)

	return &TokenResponse{
		Token:     signed,
		TokenType: tokenType,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// ChangePassword replaces the stored hash. Concurrent changes for the same
// account are serialized.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) error {
	if err := checkPassword(newPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash, s.now()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *Service) authResponse(
	user *UserInfo,
	tenant TenantSummary,
) (*AuthResponse, error) {
	token, claims, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: claims.ExpiresAt,
		User:      ToUserResponse(user),
		Tenant:    tenant,
	}, nil
}

func identityOf(u *UserInfo) Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}

// checkPassword bounds a new password. The upper bound is in bytes, the
// most bcrypt accepts.
func checkPassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}
