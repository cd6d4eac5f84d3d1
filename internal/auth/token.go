// AngelaMos | 2026
// token.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/light618/linkbot-ai/internal/config"
	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/middleware"
)

// Identity is the set of claims a session token asserts.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Role     string
	TenantID string
}

// Claims is a verified token: the identity plus its validity window.
type Claims struct {
	Identity
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies stateless HS256 session tokens signed
// with a process-wide shared secret.
type TokenService struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token service: jwt secret: %w", core.ErrNotConfigured)
	}

	ttl := cfg.TokenExpire
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &TokenService{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL is the lifetime of every issued token.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(identity Identity) (string, *Claims, error) {
	issuedAt := s.now().Truncate(time.Second)
	return s.sign(identity, issuedAt, issuedAt.Add(s.ttl))
}

func (s *TokenService) sign(
	identity Identity,
	issuedAt, expiresAt time.Time,
) (string, *Claims, error) {
	claims := &Claims{
		Identity:  identity,
		ID:        uuid.New().String(),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	builder := jwt.NewBuilder().
		JwtID(claims.ID).
		Subject(identity.UserID).
		IssuedAt(claims.IssuedAt).
		Expiration(claims.ExpiresAt).
		Claim("username", identity.Username).
		Claim("email", identity.Email).
		Claim("role", identity.Role).
		Claim("tenant_id", identity.TenantID)
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), claims, nil
}

// Verify checks signature, issuer and expiry. Every failure wraps
// core.ErrTokenInvalid; expiry additionally wraps core.ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf(
				"verify token: %w (%w)",
				core.ErrTokenInvalid,
				core.ErrTokenExpired,
			)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	claims := &Claims{Identity: Identity{UserID: subject}}

	for name, dst := range map[string]*string{
		"username":  &claims.Username,
		"email":     &claims.Email,
		"role":      &claims.Role,
		"tenant_id": &claims.TenantID,
	} {
		if err := token.Get(name, dst); err != nil {
			return nil, fmt.Errorf(
				"verify token: missing %s claim: %w",
				name,
				core.ErrTokenInvalid,
			)
		}
	}

	claims.ID, _ = token.JwtID()
	claims.IssuedAt, _ = token.IssuedAt()
	claims.ExpiresAt, _ = token.Expiration()

	return claims, nil
}

// Refresh re-issues the identity of a valid token with a renewed expiry,
// always strictly later than the presented one. The account behind the
// token is not consulted.
func (s *TokenService) Refresh(tokenString string) (string, *Claims, error) {
	current, err := s.Verify(tokenString)
	if err != nil {
		return "", nil, err
	}

	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)
	if !expiresAt.After(current.ExpiresAt) {
		expiresAt = current.ExpiresAt.Add(time.Second)
	}

	return s.sign(current.Identity, issuedAt, expiresAt)
}

// VerifyAccessToken adapts Verify to middleware.TokenVerifier.
func (s *TokenService) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	return &middleware.AccessTokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
		TenantID: claims.TenantID,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

var _ middleware.TokenVerifier = (*TokenService)(nil)
