// AngelaMos | 2026
// resolver.go

package reply

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/intent"
)

type Source string

const (
	SourceIntent        Source = "intent"
	SourceExternalModel Source = "external_model"
	SourceFallback      Source = "fallback"
)

const (
	FallbackReply         = "感谢您的咨询！我们的客服会尽快回复您。"
	NotUnderstoodReply    = "抱歉，我暂时无法理解您的问题，请稍后再试。"
	ProviderFailureEvent  = "ExternalProviderFailure"
	defaultProviderBudget = 5 * time.Second
)

var errProviderNotConfigured = errors.New("provider not configured")

// IntentSource yields a tenant's active intents in stored order.
type IntentSource interface {
	ActiveIntents(ctx context.Context, tenantID string) ([]intent.Intent, error)
}

type Provider interface {
	Chat(ctx context.Context, user, query string) (*ChatResponse, error)
	Model() string
}

type Request struct {
	Message        string
	TenantID       string
	UserID         string
	ConversationID string
	ChannelID      string
}

type Result struct {
	Reply    string `json:"reply"`
	Source   Source `json:"source"`
	IntentID string `json:"intent_id,omitempty"`
	Model    string `json:"model,omitempty"`
}

type Stats struct {
	IntentReplies    int64 `json:"intent_replies"`
	ModelReplies     int64 `json:"model_replies"`
	FallbackReplies  int64 `json:"fallback_replies"`
	ProviderFailures int64 `json:"provider_failures"`
	Audits           int64 `json:"audits"`
	BlockedAudits    int64 `json:"blocked_audits"`
}

type counters struct {
	intentReplies   atomic.Int64
	modelReplies    atomic.Int64
	fallbackReplies atomic.Int64
	failures        atomic.Int64
	audits          atomic.Int64
	blocked         atomic.Int64
}

// Resolver picks the automated reply for an inbound message: a matching
// intent, else the external model, else the fixed fallback text.
type Resolver struct {
	intents  IntentSource
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
	stats    counters
}

type ResolverConfig struct {
	Intents  IntentSource
	Provider Provider
	Timeout  time.Duration
	Logger   *slog.Logger
}

func NewResolver(cfg ResolverConfig) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProviderBudget
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		intents:  cfg.Intents,
		provider: cfg.Provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Resolve always produces a reply. Provider failures are logged and
// recorded, never returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	ctx, span := core.StartSpan(ctx, "reply.resolve",
		attribute.String("tenant_id", req.TenantID),
	)
	defer span.End()

	if matched, ok := r.matchIntent(ctx, req); ok {
		r.stats.intentReplies.Add(1)
		span.SetAttributes(attribute.String("reply.source", string(SourceIntent)))
		return Result{
			Reply:    matched.Response,
			Source:   SourceIntent,
			IntentID: matched.ID,
		}
	}

	result, err := r.delegate(ctx, req)
	if err != nil {
		r.recordProviderFailure(ctx, req, err)
		r.stats.fallbackReplies.Add(1)
		span.SetAttributes(attribute.String("reply.source", string(SourceFallback)))
		return Result{
			Reply:  FallbackReply,
			Source: SourceFallback,
		}
	}

	r.stats.modelReplies.Add(1)
	span.SetAttributes(attribute.String("reply.source", string(SourceExternalModel)))
	return result
}

func (r *Resolver) matchIntent(
	ctx context.Context,
	req Request,
) (*intent.Intent, bool) {
	if r.intents == nil {
		return nil, false
	}

	active, err := r.intents.ActiveIntents(ctx, req.TenantID)
	if err != nil {
		r.logger.WarnContext(ctx, "intent lookup failed, skipping intent tier",
			"tenant_id", req.TenantID,
			"error", err,
		)
		core.SetSpanError(ctx, err)
		return nil, false
	}

	for i := range active {
		if active[i].IsActive && matchAny(req.Message, active[i].Keywords) {
			return &active[i], true
		}
	}

	return nil, false
}

func (r *Resolver) delegate(ctx context.Context, req Request) (Result, error) {
	if r.provider == nil {
		return Result{}, errProviderNotConfigured
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.Chat(callCtx, req.UserID, req.Message)
	if err != nil {
		return Result{}, err
	}

	text, ok := resp.FirstContent()
	if !ok {
		text = NotUnderstoodReply
	}

	return Result{
		Reply:  text,
		Source: SourceExternalModel,
		Model:  r.provider.Model(),
	}, nil
}

func (r *Resolver) recordProviderFailure(
	ctx context.Context,
	req Request,
	err error,
) {
	r.stats.failures.Add(1)

	reason := failureReason(err)

	r.logger.WarnContext(ctx, "external provider failed, using fallback reply",
		"event", ProviderFailureEvent,
		"tenant_id", req.TenantID,
		"conversation_id", req.ConversationID,
		"channel_id", req.ChannelID,
		"reason", reason,
		"error", err,
	)

	core.AddSpanEvent(ctx, ProviderFailureEvent,
		attribute.String("tenant_id", req.TenantID),
		attribute.String("reason", reason),
		attribute.String("error", err.Error()),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errProviderNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrProviderStatus):
		return "bad_status"
	case errors.Is(err, ErrProviderMalformed):
		return "malformed_payload"
	default:
		return "transport"
	}
}

// SensitiveTerms is the static audit list.
var SensitiveTerms = []string{"政治", "色情", "暴力", "赌博"}

const (
	ActionBlock = "block"
	ActionPass  = "pass"

	blockedConfidence = 0.9
	passedConfidence  = 0.1
)

type AuditResult struct {
	IsBlocked     bool     `json:"is_blocked"`
	DetectedTerms []string `json:"detected_terms"`
	Confidence    float64  `json:"confidence"`
	Action        string   `json:"action"`
}

// Audit flags content containing any sensitive term. The confidence values
// are fixed placeholders.
func (r *Resolver) Audit(content string) AuditResult {
	detected := matchAll(content, SensitiveTerms)
	r.stats.audits.Add(1)

	if len(detected) == 0 {
		return AuditResult{
			IsBlocked:     false,
			DetectedTerms: detected,
			Confidence:    passedConfidence,
			Action:        ActionPass,
		}
	}

	r.stats.blocked.Add(1)
	return AuditResult{
		IsBlocked:     true,
		DetectedTerms: detected,
		Confidence:    blockedConfidence,
		Action:        ActionBlock,
	}
}

func (r *Resolver) Stats() Stats {
	return Stats{
		IntentReplies:    r.stats.intentReplies.Load(),
		ModelReplies:     r.stats.modelReplies.Load(),
		FallbackReplies:  r.stats.fallbackReplies.Load(),
		ProviderFailures: r.stats.failures.Load(),
		Audits:           r.stats.audits.Load(),
		BlockedAudits:    r.stats.blocked.Load(),
	}
}
