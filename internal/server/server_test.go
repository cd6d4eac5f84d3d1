// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light618/linkbot-ai/internal/config"
)

type notifier struct {
	shutdown bool
}

func (n *notifier) SetShutdown(shutdown bool) { n.shutdown = shutdown }

func TestServer_AddrAndRecoverer(t *testing.T) {
	srv := New(Config{
		ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 3001},
	})
	assert.Equal(t, "127.0.0.1:3001", srv.Addr())

	srv.Router().Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ShutdownNotifiesHealth(t *testing.T) {
	n := &notifier{}
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: n,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx, 10*time.Millisecond))
	assert.True(t, n.shutdown)
}
