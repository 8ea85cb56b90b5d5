// Package topic maps free-text guest questions to a conversational
// context. Scoring is deliberately dumb: summed character length of
// matched keywords, so longer and more specific keywords outweigh short
// generic ones. No probabilistic model hides behind "confidence" — it
// is the matched score over a fixed saturation constant, capped at 1.
package topic

import "strings"

// Context is a topical bucket for a guest question.
type Context string

const (
	ContextWiFi      Context = "wifi"
	ContextCheckIn   Context = "check_in"
	ContextCheckOut  Context = "check_out"
	ContextAccess    Context = "access"
	ContextParking   Context = "parking"
	ContextAmenities Context = "amenities"
	ContextLocal     Context = "local_area"
	ContextRules     Context = "house_rules"
	ContextEmergency Context = "emergency"
	ContextGeneral   Context = "general"
)

const (
	// scoreFloor discards matches of fewer than two characters — there
	// are no one-character keywords, so this means "no real match".
	scoreFloor = 2

	// saturation converts a score to confidence: score/saturation,
	// capped at 1. Preserved exactly; thresholds are tuned against it.
	saturation = 20.0

	// detectionThreshold is the minimum confidence for a detected topic
	// to override the caller-supplied default.
	detectionThreshold = 0.3
)

// Source records how a resolution was reached.
type Source string

const (
	SourceDetected Source = "detected"
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of resolving a question.
type Resolution struct {
	Context    Context
	Source     Source
	Confidence float64
}

type entry struct {
	context  Context
	keywords []string
}

// entries is an ordered list, not a map: ties keep the first-seen
// topic, and that tie-break must be deterministic.
var entries = []entry{
	{ContextWiFi, []string{"wifi", "wi-fi", "internet", "network", "password", "router", "connection", "connect"}},
	{ContextCheckIn, []string{"check in", "check-in", "checkin", "arrival", "arrive", "early", "key pickup", "get in", "access code"}},
	{ContextCheckOut, []string{"check out", "check-out", "checkout", "departure", "leave", "late", "vacate"}},
	{ContextAccess, []string{"door", "gate", "lock", "unlock", "code", "keypad", "lockbox", "garage", "entry", "key"}},
	{ContextParking, []string{"parking", "park", "car", "garage spot", "driveway", "street parking"}},
	{ContextAmenities, []string{"pool", "hot tub", "kitchen", "washer", "dryer", "laundry", "coffee", "towels", "linens", "air conditioning", "heating", "thermostat", "tv", "netflix"}},
	{ContextLocal, []string{"restaurant", "food", "eat", "grocery", "beach", "attraction", "things to do", "nearby", "around", "visit", "tour"}},
	{ContextRules, []string{"rules", "smoking", "pets", "party", "quiet hours", "guests", "allowed"}},
	{ContextEmergency, []string{"emergency", "fire", "police", "hospital", "urgent", "broken", "not working", "help"}},
}

// Detect scores the question against every topic. The highest nonzero
// score wins; the boolean is false when nothing cleared the floor.
func Detect(question string) (Context, float64, bool) {
	q := strings.ToLower(question)

	var best Context
	bestScore := 0
	for _, e := range entries {
		score := 0
		for _, kw := range e.keywords {
			if strings.Contains(q, kw) {
				score += len(kw)
			}
		}
		if score > bestScore {
			best = e.context
			bestScore = score
		}
	}

	if bestScore < scoreFloor {
		return "", 0, false
	}
	confidence := float64(bestScore) / saturation
	if confidence > 1 {
		confidence = 1
	}
	return best, confidence, true
}

// Resolve picks the detected topic when its confidence clears the
// threshold, otherwise falls back to the supplied default, or to
// ContextGeneral when none was supplied.
func Resolve(question string, fallback Context) Resolution {
	if ctx, confidence, ok := Detect(question); ok && confidence >= detectionThreshold {
		return Resolution{Context: ctx, Source: SourceDetected, Confidence: confidence}
	}
	if fallback == "" {
		fallback = ContextGeneral
	}
	return Resolution{Context: fallback, Source: SourceFallback}
}
