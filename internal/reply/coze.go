// AngelaMos | 2026
// coze.go

package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/light618/linkbot-ai/internal/config"
)

var (
	ErrProviderStatus      = errors.New("provider returned non-2xx status")
	ErrProviderRateLimited = errors.New("provider call refused by local rate limit")
	ErrProviderMalformed   = errors.New("provider returned malformed payload")
)

const maxResponseBytes = 1 << 20

type ChatRequest struct {
	BotID  string `json:"bot_id"`
	User   string `json:"user"`
	Query  string `json:"query"`
	Stream bool   `json:"stream"`
}

// ChatResponse mirrors the parts of the Coze envelope the resolver reads.
// Missing levels decode to nil.
type ChatResponse struct {
	Code int       `json:"code"`
	Msg  string    `json:"msg"`
	Data *ChatData `json:"data"`
}

type ChatData struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// UnmarshalJSON decodes each level of the envelope independently. A level
// of the wrong JSON type is treated as absent, so only a syntax error fails
// the decode.
func (r *ChatResponse) UnmarshalJSON(b []byte) error {
	*r = ChatResponse{}

	var envelope struct {
		Code json.RawMessage `json:"code"`
		Msg  json.RawMessage `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if !decodeLoose(b, &envelope) {
		return nil
	}
	decodeLoose(envelope.Code, &r.Code)
	decodeLoose(envelope.Msg, &r.Msg)

	var data struct {
		Messages json.RawMessage `json:"messages"`
	}
	var messages []json.RawMessage
	if !decodeLoose(envelope.Data, &data) || !decodeLoose(data.Messages, &messages) {
		return nil
	}

	r.Data = &ChatData{Messages: make([]ChatMessage, 0, len(messages))}
	for _, raw := range messages {
		var fields struct {
			Role    json.RawMessage `json:"role"`
			Type    json.RawMessage `json:"type"`
			Content json.RawMessage `json:"content"`
		}
		var msg ChatMessage
		if decodeLoose(raw, &fields) {
			decodeLoose(fields.Role, &msg.Role)
			decodeLoose(fields.Type, &msg.Type)
			decodeLoose(fields.Content, &msg.Content)
		}
		r.Data.Messages = append(r.Data.Messages, msg)
	}
	return nil
}

func decodeLoose(raw json.RawMessage, dst any) bool {
	return len(raw) > 0 && json.Unmarshal(raw, dst) == nil
}

// FirstContent returns the first message's text, or false when the path
// data.messages[0].content is absent or empty.
func (r *ChatResponse) FirstContent() (string, bool) {
	if r == nil || r.Data == nil || len(r.Data.Messages) == 0 {
		return "", false
	}
	content := r.Data.Messages[0].Content
	if content == "" {
		return "", false
	}
	return content, true
}

// CozeClient calls the Coze bot chat API with one attempt per message.
type CozeClient struct {
	baseURL    string
	botID      string
	token      string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewCozeClient(cfg config.ProviderConfig) *CozeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &CozeClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		botID:   cfg.BotID,
		token:   cfg.Token,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

func (c *CozeClient) Model() string {
	return c.model
}

func (c *CozeClient) Chat(
	ctx context.Context,
	user, query string,
) (*ChatResponse, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrProviderRateLimited
	}

	body, err := json.Marshal(ChatRequest{
		BotID:  c.botID,
		User:   user,
		Query:  query,
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/bot/chat",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		//nolint:errcheck // drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode)
	}

	var out ChatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderMalformed, err)
	}

	return &out, nil
}

var _ Provider = (*CozeClient)(nil)
