// AngelaMos | 2026
// mocks_test.go

package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (*UserInfo, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*UserInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*UserInfo, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*UserInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) Exists(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, user NewUser) (*UserInfo, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*UserInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUsers) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, userID, passwordHash, updatedAt)
	return args.Error(0)
}

type mockTenants struct {
	mock.Mock
}

func (m *mockTenants) GetByID(ctx context.Context, id string) (*TenantInfo, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*TenantInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTenants) Create(ctx context.Context, tenant NewTenant) (*TenantInfo, error) {
	args := m.Called(ctx, tenant)
	if t := args.Get(0); t != nil {
		return t.(*TenantInfo), args.Error(1)
	}
	return nil, args.Error(1)
}
