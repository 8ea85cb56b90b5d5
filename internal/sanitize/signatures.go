package sanitize

import "regexp"

// Signature is one named injection pattern. All whitespace quantifiers
// are length-bounded: an unbounded \s+ over attacker-controlled input
// invites catastrophic backtracking.
type Signature struct {
	Name string
	re   *regexp.Regexp
}

// signatures is the injection catalogue. Scanning stops at the first
// match; the catalogue is data so it can be tested exhaustively and
// extended without touching control flow.
var signatures = []Signature{
	{
		Name: "ignore_instructions",
		re: regexp.MustCompile(`(?i)\b(?:ignore|disregard|forget|override)\s{1,6}(?:all\s{1,6}|any\s{1,6}|the\s{1,6})?(?:previous|prior|above|earlier|preceding|your)\s{1,6}(?:instructions?|prompts?|rules?|directions?|context)`),
	},
	{
		Name: "reveal_system_prompt",
		re: regexp.MustCompile(`(?i)\b(?:reveal|show|print|repeat|display|output|tell\s{1,6}me)\s{1,6}(?:me\s{1,6})?(?:your|the)\s{1,6}(?:system\s{1,6}|initial\s{1,6}|original\s{1,6})?(?:prompt|instructions?)`),
	},
	{
		Name: "system_prompt_probe",
		re:   regexp.MustCompile(`(?i)\bwhat\s{1,6}(?:is|are|was|were)\s{1,6}your\s{1,6}(?:system\s{1,6})?(?:prompt|instructions?)`),
	},
	{
		Name: "jailbreak_persona",
		re:   regexp.MustCompile(`(?i)\b(?:jailbreak|jailbroken|DAN\s{1,6}mode|developer\s{1,6}mode|do\s{1,6}anything\s{1,6}now)\b`),
	},
	{
		Name: "roleplay_reframe",
		re:   regexp.MustCompile(`(?i)\b(?:you\s{1,6}are\s{1,6}now|act\s{1,6}as|pretend\s{1,6}(?:to\s{1,6}be|you\s{1,6}are)|roleplay\s{1,6}as|from\s{1,6}now\s{1,6}on\s{1,6}you)\b`),
	},
	{
		Name: "new_instructions",
		re:   regexp.MustCompile(`(?i)\b(?:new|updated|real)\s{1,6}(?:instructions?|system\s{1,6}prompt)\s{0,6}:`),
	},
	{
		Name: "chat_template_tokens",
		re:   regexp.MustCompile(`(?i)(?:<\|[a-z_]{1,24}\|>|\[/?(?:INST|SYS)\]|<<\s{0,4}/?SYS\s{0,4}>>|<\s{0,4}/?system\s{0,4}>)`),
	},
}

// matchInjection returns the name of the first matching signature, or
// the empty string when the text is clean.
func matchInjection(text string) string {
	for _, sig := range signatures {
		if sig.re.MatchString(text) {
			return sig.Name
		}
	}
	return ""
}

// Signatures exposes the catalogue for exhaustive tests.
func Signatures() []Signature { return signatures }

// Matches reports whether this signature matches the text.
func (s Signature) Matches(text string) bool { return s.re.MatchString(text) }
