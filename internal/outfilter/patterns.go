package outfilter

import "regexp"

// leakSignatures match a model describing its own instructions. Any hit
// replaces the entire response. Whitespace quantifiers are bounded.
var leakSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:my|the)\s{1,6}system\s{1,6}(?:prompt|instructions?|message)\b`),
	regexp.MustCompile(`(?i)\bmy\s{1,6}(?:instructions?|guidelines|directives)\s{1,6}(?:are|say|tell|state|include)\b`),
	regexp.MustCompile(`(?i)\bi\s{1,6}(?:was|am|have\s{1,6}been)\s{1,6}(?:instructed|programmed|told|configured)\s{1,6}to\b`),
	regexp.MustCompile(`(?i)\bas\s{1,6}(?:per|stated\s{1,6}in)\s{1,6}my\s{1,6}(?:prompt|instructions?)\b`),
	regexp.MustCompile(`(?i)\bhere\s{1,6}(?:is|are)\s{1,6}(?:my|the)\s{1,6}(?:full\s{1,6})?(?:prompt|instructions?)\b`),
	// Internal prompt section headers leaking verbatim.
	regexp.MustCompile(`PROPERTY INFORMATION:|SENSITIVE ACCESS DETAILS:|ASSISTANT RULES:`),
}

// disclosurePatterns match "secret-field: value" shapes. The bulk check
// sums matches across all of them.
var disclosurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdoor\s{1,6}code\s{0,6}(?:is|:)\s{0,6}\S{1,32}`),
	regexp.MustCompile(`(?i)\bgate\s{1,6}code\s{0,6}(?:is|:)\s{0,6}\S{1,32}`),
	regexp.MustCompile(`(?i)\bgarage\s{1,6}(?:door\s{1,6})?code\s{0,6}(?:is|:)\s{0,6}\S{1,32}`),
	regexp.MustCompile(`(?i)\block\s{0,1}box\s{1,6}code\s{0,6}(?:is|:)\s{0,6}\S{1,32}`),
	regexp.MustCompile(`(?i)\bwifi\s{1,6}password\s{0,6}(?:is|:)\s{0,6}\S{1,32}`),
	regexp.MustCompile(`(?i)\bpassword\s{0,6}:\s{0,6}\S{1,32}`),
}

func matchLeak(text string) bool {
	for _, re := range leakSignatures {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// countDisclosures totals secret-shaped matches across the catalogue.
// Overlapping matches ("WiFi password: x" hits both the wifi shape and
// the generic password shape) count once.
func countDisclosures(text string) int {
	var spans [][]int
	for _, re := range disclosurePatterns {
		spans = append(spans, re.FindAllStringIndex(text, -1)...)
	}

	count := 0
	for i, s := range spans {
		overlapped := false
		for j, t := range spans {
			if j >= i {
				break
			}
			if s[0] < t[1] && t[0] < s[1] {
				overlapped = true
				break
			}
		}
		if !overlapped {
			count++
		}
	}
	return count
}
