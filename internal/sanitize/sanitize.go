// Package sanitize normalizes and bounds free-text guest input before
// it can reach prompt assembly. Detected injection attempts are refused
// outright: partially sanitizing adversarial text is unreliable, so
// there is no salvage path.
package sanitize

import (
	"strings"
)

// MaxInputLength is the cap on guest input, in runes.
const MaxInputLength = 500

// Result is the outcome of a sanitization pass.
type Result struct {
	Sanitized         string
	WasModified       bool
	Rejected          bool
	InjectionDetected bool
}

// Sanitize trims, strips control characters, truncates, and scans the
// input against the injection catalogue, in that order.
func Sanitize(raw string) Result {
	if raw == "" {
		return Result{Rejected: true}
	}

	text := strings.TrimSpace(raw)
	text, stripped := stripControl(text)
	modified := stripped || text != raw

	if runes := []rune(text); len(runes) > MaxInputLength {
		text = string(runes[:MaxInputLength])
		modified = true
	}

	if text == "" {
		return Result{WasModified: modified, Rejected: true}
	}

	if sig := matchInjection(text); sig != "" {
		return Result{
			Sanitized:         text,
			WasModified:       modified,
			Rejected:          true,
			InjectionDetected: true,
		}
	}

	return Result{Sanitized: text, WasModified: modified}
}

// DetectInjection reports whether text matches any injection signature.
// Exposed separately so callers can scan text they do not intend to
// normalize.
func DetectInjection(text string) bool {
	return matchInjection(text) != ""
}

// stripControl removes C0 control characters (keeping tab, LF, CR) and
// the C1 range while preserving normal whitespace.
func stripControl(s string) (string, bool) {
	var b strings.Builder
	stripped := false
	for _, r := range s {
		if isControl(r) {
			stripped = true
			continue
		}
		b.WriteRune(r)
	}
	if !stripped {
		return s, false
	}
	return b.String(), true
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}
