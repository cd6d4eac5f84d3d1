// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/middleware"
	"github.com/light618/linkbot-ai/internal/reply"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AccountManager enables and disables accounts within a tenant.
type AccountManager interface {
	SetStatus(
		ctx context.Context,
		tenantID, userID, status string,
	) (*auth.UserInfo, error)
}

// Handler serves operator statistics. Every dependency is optional; the
// memory driver leaves the database hooks nil.
type Handler struct {
	driver     string
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	replyStats func() reply.Stats
	users      Counter
	tenants    Counter
	accounts   AccountManager
	validator  *validator.Validate
}

type HandlerConfig struct {
	Driver     string
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	ReplyStats func() reply.Stats
	Users      Counter
	Tenants    Counter
	Accounts   AccountManager
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		driver:     cfg.Driver,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		replyStats: cfg.ReplyStats,
		users:      cfg.Users,
		tenants:    cfg.Tenants,
		accounts:   cfg.Accounts,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/replies", h.GetReplyStats)
		r.Put("/users/{id}/status", h.SetUserStatus)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := SystemStatsResponse{
		Storage: h.driver,
		Database: DatabaseStatus{
			Enabled: h.dbPing != nil,
			Healthy: pingHealthy(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Enabled: h.redisPing != nil,
			Healthy: pingHealthy(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
		Replies: h.getReplyStats(),
	}

	var err error
	if response.Users, err = count(ctx, h.users); err != nil {
		core.InternalServerError(w, err)
		return
	}
	if response.Tenants, err = count(ctx, h.tenants); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, response)
}

func (h *Handler) GetReplyStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getReplyStats())
}

func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	userID := chi.URLParam(r, "id")
	if userID == middleware.GetUserID(r.Context()) {
		core.BadRequest(w, "cannot change your own status")
		return
	}

	user, err := h.accounts.SetStatus(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		userID,
		req.Status,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "status must be active or inactive")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, auth.ToUserResponse(user))
}

func pingHealthy(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return false
	}
	return ping(ctx) == nil
}

func count(ctx context.Context, c Counter) (int, error) {
	if c == nil {
		return 0, nil
	}
	return c.Count(ctx)
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	if stats == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func (h *Handler) getReplyStats() *reply.Stats {
	if h.replyStats == nil {
		return nil
	}
	stats := h.replyStats()
	return &stats
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type SystemStatsResponse struct {
	Storage  string         `json:"storage"`
	Users    int            `json:"users"`
	Tenants  int            `json:"tenants"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
	Replies  *reply.Stats   `json:"replies,omitempty"`
}

type DatabaseStatus struct {
	Enabled bool         `json:"enabled"`
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Enabled bool            `json:"enabled"`
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
