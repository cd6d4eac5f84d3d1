// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/core"
)

type ServiceTestSuite struct {
	suite.Suite
	repo    *MemoryRepository
	service *Service
	ctx     context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.repo = NewMemoryRepository()
	s.service = NewService(s.repo)
	s.ctx = context.Background()
}

func (s *ServiceTestSuite) create(username, email string) *auth.UserInfo {
	info, err := s.service.Create(s.ctx, auth.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		TenantID:     "tenant-1",
	})
	s.Require().NoError(err)
	return info
}

func (s *ServiceTestSuite) TestCreateDefaults() {
	info := s.create("alice", "Alice@Example.com")

	s.NotEmpty(info.ID)
	s.Equal("alice@example.com", info.Email)
	s.Equal(RoleViewer, info.Role)
	s.Equal(StatusActive, info.Status)
	s.True(info.Active)
}

func (s *ServiceTestSuite) TestExistsIsCaseInsensitiveOnEmail() {
	s.create("alice", "alice@example.com")

	exists, err := s.service.Exists(s.ctx, "someone", "ALICE@example.com")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.service.Exists(s.ctx, "alice", "other@example.com")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.service.Exists(s.ctx, "bob", "bob@example.com")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ServiceTestSuite) TestDuplicateCreate() {
	s.create("alice", "alice@example.com")

	_, err := s.service.Create(s.ctx, auth.NewUser{
		Username: "alice",
		Email:    "new@example.com",
	})
	s.ErrorIs(err, core.ErrDuplicateKey)
}

func (s *ServiceTestSuite) TestUpdatePassword() {
	info := s.create("alice", "alice@example.com")
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.service.UpdatePassword(s.ctx, info.ID, "new-hash", at))

	got, err := s.service.GetByID(s.ctx, info.ID)
	s.Require().NoError(err)
	s.Equal("new-hash", got.PasswordHash)
	s.Equal(at, got.UpdatedAt)

	s.ErrorIs(s.service.UpdatePassword(s.ctx, "missing", "x", at), core.ErrNotFound)
}

func (s *ServiceTestSuite) TestSetStatus() {
	info := s.create("alice", "alice@example.com")

	updated, err := s.service.SetStatus(s.ctx, "tenant-1", info.ID, StatusInactive)
	s.Require().NoError(err)
	s.False(updated.Active)

	got, err := s.service.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(got.Active)
	s.Equal(StatusInactive, got.Status)

	updated, err = s.service.SetStatus(s.ctx, "tenant-1", info.ID, StatusActive)
	s.Require().NoError(err)
	s.True(updated.Active)
}

func (s *ServiceTestSuite) TestSetStatusRejections() {
	info := s.create("alice", "alice@example.com")

	_, err := s.service.SetStatus(s.ctx, "tenant-1", info.ID, "banned")
	s.ErrorIs(err, core.ErrInvalidInput)

	_, err = s.service.SetStatus(s.ctx, "tenant-2", info.ID, StatusInactive)
	s.ErrorIs(err, core.ErrNotFound)

	_, err = s.service.SetStatus(s.ctx, "tenant-1", "missing", StatusInactive)
	s.ErrorIs(err, core.ErrNotFound)

	got, err := s.service.GetByID(s.ctx, info.ID)
	s.Require().NoError(err)
	s.True(got.Active)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
