// AngelaMos | 2026
// coze_test.go

package reply

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/light618/linkbot-ai/internal/config"
)

func newTestCoze(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.ProviderConfig)) *CozeClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ProviderConfig{
		Enabled: true,
		BaseURL: srv.URL + "/v3/",
		BotID:   "bot-123",
		Token:   "pat-secret",
		Model:   "coze-bot",
		Timeout: time.Second,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return NewCozeClient(cfg)
}

func TestCozeClient_Chat(t *testing.T) {
	client := newTestCoze(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/bot/chat", r.URL.Path)
		assert.Equal(t, "Bearer pat-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ChatRequest{BotID: "bot-123", User: "u-1", Query: "你好"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"ok","data":{"messages":[{"role":"assistant","type":"answer","content":"您好！"}]}}`)) //nolint:errcheck // test server
	})

	resp, err := client.Chat(context.Background(), "u-1", "你好")
	require.NoError(t, err)

	text, ok := resp.FirstContent()
	assert.True(t, ok)
	assert.Equal(t, "您好！", text)
	assert.Equal(t, "coze-bot", client.Model())
}

func TestCozeClient_MissingContentPath(t *testing.T) {
	bodies := []string{
		`{"code":0}`,
		`{"code":0,"data":{}}`,
		`{"code":0,"data":{"messages":[]}}`,
		`{"code":0,"data":{"messages":[{"role":"assistant"}]}}`,
		`{"data":"x"}`,
		`{"data":[]}`,
		`{"data":{"messages":{}}}`,
		`{"data":{"messages":["x"]}}`,
		`{"data":{"messages":[{"content":42}]}}`,
		`[]`,
		`null`,
	}

	for _, body := range bodies {
		client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body)) //nolint:errcheck // test server
		})

		resp, err := client.Chat(context.Background(), "u", "q")
		require.NoError(t, err, body)

		_, ok := resp.FirstContent()
		assert.False(t, ok, body)
	}
}

func TestCozeClient_MistypedSiblingFields(t *testing.T) {
	client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
		//nolint:errcheck // test server
		_, _ = w.Write([]byte(`{"code":"0","msg":7,"data":{"messages":[{"role":1,"content":"您好"}]}}`))
	})

	resp, err := client.Chat(context.Background(), "u", "q")
	require.NoError(t, err)

	text, ok := resp.FirstContent()
	assert.True(t, ok)
	assert.Equal(t, "您好", text)
	assert.Zero(t, resp.Code)
}

func TestResolver_MistypedProviderBodyIsNotUnderstood(t *testing.T) {
	client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"messages":{}}}`)) //nolint:errcheck // test server
	})
	intents := new(mockIntents)
	intents.On("ActiveIntents", mock.Anything, "tenant-1").Return(nil, nil)

	res := NewResolver(ResolverConfig{
		Intents:  intents,
		Provider: client,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).Resolve(context.Background(), Request{Message: "hi", TenantID: "tenant-1", UserID: "1"})

	assert.Equal(t, SourceExternalModel, res.Source)
	assert.Equal(t, NotUnderstoodReply, res.Reply)
}

func TestCozeClient_NonSuccessStatus(t *testing.T) {
	client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Chat(context.Background(), "u", "q")
	assert.ErrorIs(t, err, ErrProviderStatus)
}

func TestCozeClient_MalformedBody(t *testing.T) {
	client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`)) //nolint:errcheck // test server
	})

	_, err := client.Chat(context.Background(), "u", "q")
	assert.ErrorIs(t, err, ErrProviderMalformed)
}

func TestCozeClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	client := newTestCoze(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "u", "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout", failureReason(err))
}

func TestCozeClient_LocalRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestCoze(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"code":0}`)) //nolint:errcheck // test server
	}, func(cfg *config.ProviderConfig) {
		cfg.RateLimit = 0.001
		cfg.Burst = 1
	})

	_, err := client.Chat(context.Background(), "u", "q")
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), "u", "q")
	assert.ErrorIs(t, err, ErrProviderRateLimited)
	assert.Equal(t, int32(1), calls.Load())
}
