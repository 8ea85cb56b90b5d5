// Package outfilter is the post-generation text firewall. It never
// edits a leaking response — a single leak signature discards the whole
// text, because no partial leak is acceptable — and it counts secret
// disclosures to catch the model dumping every code at once.
package outfilter

import (
	"strings"
)

// Policy constants.
const (
	// MaxResponseLength caps the response, in runes.
	MaxResponseLength = 2000

	// BulkDisclosureThreshold is the total secret-shaped disclosures at
	// which a response is treated as a dump. One or two codes in an
	// answer is normal conversation; three or more is the model handing
	// everything over.
	BulkDisclosureThreshold = 3

	// truncationTail is the fraction of the budget, from the end, in
	// which a sentence boundary is preferred for truncation.
	truncationTail = 0.3
)

// Replacement texts. Fixed catalogue; nothing model-generated survives
// a filtered case.
const (
	emptyFallback  = "I'm sorry, I wasn't able to answer that. Could you try asking again?"
	leakRedirect   = "I can only help with questions about your stay. What would you like to know?"
	bulkDisclosure = "For security, please ask about one access code at a time and I'll be happy to help."
)

// Filter reasons.
const (
	ReasonEmpty          = "empty_response"
	ReasonSystemLeak     = "system_prompt_leak"
	ReasonBulkDisclosure = "bulk_code_disclosure"
	ReasonTruncated      = "truncated"
)

// Result is the outcome of filtering one response.
type Result struct {
	Filtered    string
	WasFiltered bool
	Reason      string
}

// Filter applies the firewall to raw model output. Running it again on
// its own output is a no-op.
func Filter(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Filtered: emptyFallback, WasFiltered: true, Reason: ReasonEmpty}
	}

	if matchLeak(raw) {
		return Result{Filtered: leakRedirect, WasFiltered: true, Reason: ReasonSystemLeak}
	}

	if countDisclosures(raw) >= BulkDisclosureThreshold {
		return Result{Filtered: bulkDisclosure, WasFiltered: true, Reason: ReasonBulkDisclosure}
	}

	if truncated, ok := truncate(raw); ok {
		return Result{Filtered: truncated, WasFiltered: true, Reason: ReasonTruncated}
	}

	return Result{Filtered: raw}
}

// truncate bounds text to MaxResponseLength runes, preferring the last
// sentence boundary within the trailing 30% of the budget. Returns
// (text, false) when no truncation was needed.
func truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxResponseLength {
		return text, false
	}

	window := runes[:MaxResponseLength]
	floor := int(float64(MaxResponseLength) * (1 - truncationTail))
	for i := len(window) - 1; i >= floor; i-- {
		switch window[i] {
		case '.', '!', '?':
			return string(window[:i+1]), true
		}
	}
	return string(runes[:MaxResponseLength-3]) + "...", true
}
