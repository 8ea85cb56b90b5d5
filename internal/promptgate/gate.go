// Package promptgate decides whether secret property fields may enter
// the prompt at all. Non-secret fields always pass through; secrets
// require the question to actually ask for them, and even then the
// lookup is rate limited on its own budget so a chatty session cannot
// drain every code in one window.
package promptgate

import (
	"context"
	"strings"

	"github.com/hostling/guestgate/internal/property"
	"github.com/hostling/guestgate/internal/ratelimit"
)

// Endpoint is the dedicated limiter endpoint for sensitive lookups.
const Endpoint = "sensitive_lookup"

// Placeholders rendered instead of secrets.
const (
	withheldNotice  = "Sensitive access details (WiFi credentials, entry codes) exist for this property but are only shared when the guest asks for them."
	rateLimitNotice = "Sensitive access details are temporarily unavailable: the lookup limit for this session has been reached."
	notProvided     = "not provided"
)

// sensitiveKeywords is the access/connectivity vocabulary that makes a
// question eligible for secrets. Matched as lower-case substrings.
var sensitiveKeywords = []string{
	"wifi", "wi-fi", "internet", "network", "password", "passcode",
	"code", "pin", "lock", "unlock", "lockbox", "door", "gate",
	"garage", "keypad", "key", "entry", "access", "get in", "enter",
	"arrival", "arrive", "check in", "check-in", "login", "log in",
	"sign in", "connect", "credentials",
}

// Info is the property block handed to prompt assembly.
type Info struct {
	Text              string
	SensitiveIncluded bool
}

// Gate builds the property information block for one request.
type Gate struct {
	limiter *ratelimit.Limiter
}

// New creates a gate over a limiter whose table carries the
// sensitive-lookup endpoint.
func New(limiter *ratelimit.Limiter) *Gate {
	return &Gate{limiter: limiter}
}

// mentionsSensitive reports whether the question reaches for access or
// connectivity vocabulary.
func mentionsSensitive(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// BuildInfo renders the property block. identifier scopes the
// sensitive-lookup budget (one per guest session or client address).
func (g *Gate) BuildInfo(ctx context.Context, rec *property.Record, question, identifier string) Info {
	var b strings.Builder
	writeField(&b, "Property", rec.Name)
	writeField(&b, "Address", joinNonEmpty(rec.Address, rec.City))
	writeField(&b, "Check-in time", rec.CheckInTime)
	writeField(&b, "Check-out time", rec.CheckOutTime)
	writeField(&b, "House rules", rec.HouseRules)
	writeField(&b, "Additional info", rec.CustomInfo)
	writeField(&b, "Local tips", rec.LocalTips)

	if !rec.HasSecrets() {
		return Info{Text: b.String()}
	}

	if !mentionsSensitive(question) {
		b.WriteString(withheldNotice)
		b.WriteString("\n")
		return Info{Text: b.String()}
	}

	if res := g.limiter.Allow(ctx, Endpoint, identifier); !res.Allowed {
		b.WriteString(rateLimitNotice)
		b.WriteString("\n")
		return Info{Text: b.String()}
	}

	// The header doubles as a leak signature for the output filter: a
	// model echoing this block verbatim gives itself away.
	b.WriteString("\nSENSITIVE ACCESS DETAILS:\n")
	for _, f := range rec.SecretFields() {
		value := f.Value
		if value == "" {
			value = notProvided
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	return Info{Text: b.String(), SensitiveIncluded: true}
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
