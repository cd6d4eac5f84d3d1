// AngelaMos | 2026
// handler_test.go

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/middleware"
	"github.com/light618/linkbot-ai/internal/reply"
	"github.com/light618/linkbot-ai/internal/user"
)

type fixedCounter int

func (c fixedCounter) Count(context.Context) (int, error) { return int(c), nil }

func withRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID:   "1",
				Role:     role,
				TenantID: "tenant-1",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newAdminRouter(role string) *chi.Mux {
	return newAdminRouterWithAccounts(role, nil)
}

func newAdminRouterWithAccounts(role string, accounts AccountManager) *chi.Mux {
	h := NewHandler(HandlerConfig{
		Driver:     "memory",
		ReplyStats: func() reply.Stats { return reply.Stats{IntentReplies: 4} },
		Users:      fixedCounter(2),
		Tenants:    fixedCounter(1),
		Accounts:   accounts,
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r, withRole(role), middleware.RequireAdmin)
	return r
}

func TestGetSystemStats_MemoryDriver(t *testing.T) {
	rec := httptest.NewRecorder()
	newAdminRouter("admin").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "memory", resp.Data.Storage)
	assert.Equal(t, 2, resp.Data.Users)
	assert.Equal(t, 1, resp.Data.Tenants)
	assert.False(t, resp.Data.Database.Enabled)
	assert.Nil(t, resp.Data.Database.Stats)
	assert.False(t, resp.Data.Redis.Enabled)
	require.NotNil(t, resp.Data.Replies)
	assert.Equal(t, int64(4), resp.Data.Replies.IntentReplies)
	assert.NotEmpty(t, resp.Data.Runtime.GoVersion)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	rec := httptest.NewRecorder()
	newAdminRouter("operator").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetUserStatus(t *testing.T) {
	users := user.NewService(user.NewMemoryRepository())
	ctx := context.Background()

	operator, err := users.Create(ctx, auth.NewUser{
		Username: "operator",
		Email:    "operator@linkbot-ai.com",
		Role:     user.RoleOperator,
		TenantID: "tenant-1",
	})
	require.NoError(t, err)
	outsider, err := users.Create(ctx, auth.NewUser{
		Username: "outsider",
		Email:    "outsider@example.com",
		TenantID: "tenant-2",
	})
	require.NoError(t, err)

	router := newAdminRouterWithAccounts("admin", users)
	put := func(id, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut,
			"/admin/users/"+id+"/status", bytes.NewBufferString(body)))
		return rec
	}

	rec := put(operator.ID, `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data auth.UserResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, user.StatusInactive, resp.Data.Status)

	got, err := users.GetByID(ctx, operator.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.Equal(t, http.StatusBadRequest, put(operator.ID, `{"status":"banned"}`).Code)
	assert.Equal(t, http.StatusBadRequest, put("1", `{"status":"inactive"}`).Code)
	assert.Equal(t, http.StatusNotFound, put(outsider.ID, `{"status":"inactive"}`).Code)
	assert.Equal(t, http.StatusNotFound, put("missing", `{"status":"inactive"}`).Code)
}
