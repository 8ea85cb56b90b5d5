// Package pipeline wires the layered defenses into the two request
// flows: guest chat (rate limit → sanitize → resolve context →
// sensitive gate → generate → output filter → hallucination validator)
// and calendar sync (rate limit → guarded fetch). Ordering is strict;
// no stage is skipped on the happy path.
package pipeline

import (
	"context"
	"strings"

	"github.com/hostling/guestgate/internal/bruteforce"
	"github.com/hostling/guestgate/internal/fetchguard"
	"github.com/hostling/guestgate/internal/halluc"
	"github.com/hostling/guestgate/internal/llm"
	"github.com/hostling/guestgate/internal/outfilter"
	"github.com/hostling/guestgate/internal/promptgate"
	"github.com/hostling/guestgate/internal/property"
	"github.com/hostling/guestgate/internal/ratelimit"
	"github.com/hostling/guestgate/internal/sanitize"
	"github.com/hostling/guestgate/internal/secerr"
	"github.com/hostling/guestgate/internal/topic"
)

// Pipeline holds the assembled defenses.
type Pipeline struct {
	Limiter     *ratelimit.Limiter
	Gate        *promptgate.Gate
	Guard       *bruteforce.Guard
	Fetcher     *fetchguard.Fetcher
	Generator   llm.Generator
	Temperature float64
}

// ChatRequest is one guest question.
type ChatRequest struct {
	Question       string
	Identifier     string // rate-limit identity: session ID or client address
	DefaultContext topic.Context
}

// ChatResponse is the filtered, validated answer.
type ChatResponse struct {
	Answer            string
	Context           topic.Resolution
	SensitiveIncluded bool
	Filtered          bool
	FilterReason      string
	Hallucinations    int
}

// Chat runs the full guest-chat flow against one property record.
func (p *Pipeline) Chat(ctx context.Context, rec *property.Record, req ChatRequest) (*ChatResponse, error) {
	question, resolution, info, err := p.prepare(ctx, rec, req)
	if err != nil {
		return nil, err
	}

	raw, err := p.Generator.Generate(ctx, systemPrompt(rec, resolution.Context, info.Text), question, p.Temperature)
	if err != nil {
		return nil, secerr.Wrap(secerr.InfrastructureFailure, "generation_failed", err)
	}

	return p.postProcess(rec, raw, resolution, info), nil
}

// ChatStream runs the chat flow with a streaming generator. The stream
// is collected before the post-generation filters run: no chunk leaves
// the pipeline until the whole response has been filtered and
// validated, because leak and bulk-disclosure checks need the complete
// text.
func (p *Pipeline) ChatStream(ctx context.Context, rec *property.Record, req ChatRequest) (*ChatResponse, error) {
	question, resolution, info, err := p.prepare(ctx, rec, req)
	if err != nil {
		return nil, err
	}

	chunks, err := p.Generator.GenerateStream(ctx, systemPrompt(rec, resolution.Context, info.Text), question, p.Temperature)
	if err != nil {
		return nil, secerr.Wrap(secerr.InfrastructureFailure, "generation_failed", err)
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, secerr.Wrap(secerr.InfrastructureFailure, "generation_failed", chunk.Err)
		}
		b.WriteString(chunk.Text)
	}
	if err := ctx.Err(); err != nil {
		return nil, secerr.Wrap(secerr.InfrastructureFailure, "generation_failed", err)
	}

	return p.postProcess(rec, b.String(), resolution, info), nil
}

// prepare runs the pre-generation stages shared by both chat variants.
func (p *Pipeline) prepare(ctx context.Context, rec *property.Record, req ChatRequest) (string, topic.Resolution, promptgate.Info, error) {
	var zero topic.Resolution

	if res := p.Limiter.Allow(ctx, "chat", req.Identifier); !res.Allowed {
		return "", zero, promptgate.Info{}, secerr.New(secerr.PolicyDenied, "rate_limited")
	}

	san := sanitize.Sanitize(req.Question)
	if san.Rejected {
		code := "invalid_input"
		if san.InjectionDetected {
			code = "injection_detected"
		}
		return "", zero, promptgate.Info{}, secerr.New(secerr.ValidationRejected, code)
	}

	resolution := topic.Resolve(san.Sanitized, req.DefaultContext)
	info := p.Gate.BuildInfo(ctx, rec, san.Sanitized, req.Identifier)
	return san.Sanitized, resolution, info, nil
}

func (p *Pipeline) postProcess(rec *property.Record, raw string, resolution topic.Resolution, info promptgate.Info) *ChatResponse {
	filtered := outfilter.Filter(raw)
	validated := halluc.Validate(filtered.Filtered, rec)

	return &ChatResponse{
		Answer:            validated.Validated,
		Context:           resolution,
		SensitiveIncluded: info.SensitiveIncluded,
		Filtered:          filtered.WasFiltered,
		FilterReason:      filtered.Reason,
		Hallucinations:    len(validated.Hallucinations),
	}
}

// SyncCalendar fetches an owner-supplied calendar URL under the SSRF
// guard. Parsing and persistence belong to external collaborators; the
// pipeline returns the raw feed.
func (p *Pipeline) SyncCalendar(ctx context.Context, identifier, url string) ([]byte, error) {
	if res := p.Limiter.Allow(ctx, "calendar_sync", identifier); !res.Allowed {
		return nil, secerr.New(secerr.PolicyDenied, "rate_limited")
	}

	resp, err := p.Fetcher.Fetch(ctx, url, map[string]string{"Accept": "text/calendar"})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Verify runs one identity verification attempt under the brute-force
// guard. match is the external comparison (booking code lookup, name
// check); it only runs when neither scope is locked. The caller must
// render the same response for a lockout and a failed match — the
// boolean deliberately carries no distinction.
func (p *Pipeline) Verify(ctx context.Context, callerID, resourceID string, match func() bool) bool {
	if res := p.Limiter.Allow(ctx, "verify", callerID); !res.Allowed {
		return false
	}
	if p.Guard.IsLocked(ctx, callerID, resourceID) {
		return false
	}
	if !match() {
		// Errors here are logged upstream at most; enforcement is fail-open.
		_ = p.Guard.RecordFailure(ctx, callerID, resourceID)
		return false
	}
	return true
}
