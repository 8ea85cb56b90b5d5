package halluc

import (
	"regexp"
	"strings"
)

// mention is one candidate value found in response text.
type mention struct {
	field FieldType
	value string
}

// extractor pairs a field type with one phrasing of how models state
// that field. Each pattern captures exactly the claimed value and keeps
// whitespace quantifiers bounded.
type extractor struct {
	field FieldType
	re    *regexp.Regexp
}

// codeValue and wordValue are the capture shapes shared below: codes
// are short digit-heavy tokens, words stop at whitespace and sentence
// punctuation. Neither can capture the redaction placeholder, which
// keeps Validate idempotent.
const (
	codeValue = `["']?([0-9#*]{3,12})["']?`
	wordValue = `["']?([A-Za-z0-9!@#$%^&*_\-.]{1,64})["']?`
	timeValue = `([0-9]{1,2}(?::[0-9]{2})?\s{0,3}(?:am|pm|AM|PM)?)`
)

// extractors is the pattern family catalogue, multiple phrasings per
// field type.
var extractors = []extractor{
	{FieldWiFiPassword, regexp.MustCompile(`(?i)\bwi[\-– ]?fi\s{1,6}password\s{0,6}(?:is|:)\s{0,6}` + wordValue)},
	{FieldWiFiPassword, regexp.MustCompile(`(?i)\bpassword\s{1,6}for\s{1,6}the\s{1,6}wi[\-– ]?fi\s{1,6}(?:is|:)\s{0,6}` + wordValue)},
	{FieldWiFiPassword, regexp.MustCompile(`(?i)\bnetwork\s{1,6}password\s{0,6}(?:is|:)\s{0,6}` + wordValue)},

	{FieldWiFiNetwork, regexp.MustCompile(`(?i)\bwi[\-– ]?fi\s{1,6}(?:network|name)\s{0,6}(?:is|:)\s{0,6}` + wordValue)},
	{FieldWiFiNetwork, regexp.MustCompile(`(?i)\bnetwork\s{1,6}(?:name|called)\s{0,6}(?:is|:)?\s{0,6}` + wordValue)},
	{FieldWiFiNetwork, regexp.MustCompile(`(?i)\bssid\s{0,6}(?:is|:)\s{0,6}` + wordValue)},
	{FieldWiFiNetwork, regexp.MustCompile(`(?i)\bconnect\s{1,6}to\s{1,6}(?:the\s{1,6})?["']([^"']{1,64})["']`)},

	{FieldDoorCode, regexp.MustCompile(`(?i)\b(?:front\s{1,6})?door\s{1,6}code\s{0,6}(?:is|:)\s{0,6}` + codeValue)},
	{FieldDoorCode, regexp.MustCompile(`(?i)\bcode\s{1,6}for\s{1,6}the\s{1,6}(?:front\s{1,6})?door\s{1,6}(?:is|:)\s{0,6}` + codeValue)},

	{FieldGateCode, regexp.MustCompile(`(?i)\bgate\s{1,6}code\s{0,6}(?:is|:)\s{0,6}` + codeValue)},
	{FieldGateCode, regexp.MustCompile(`(?i)\bcode\s{1,6}for\s{1,6}the\s{1,6}gate\s{1,6}(?:is|:)\s{0,6}` + codeValue)},

	{FieldLockboxCode, regexp.MustCompile(`(?i)\block\s{0,1}box\s{1,6}code\s{0,6}(?:is|:)\s{0,6}` + codeValue)},
	{FieldLockboxCode, regexp.MustCompile(`(?i)\bcode\s{1,6}for\s{1,6}the\s{1,6}lock\s{0,1}box\s{1,6}(?:is|:)\s{0,6}` + codeValue)},

	{FieldGarageCode, regexp.MustCompile(`(?i)\bgarage\s{1,6}(?:door\s{1,6})?code\s{0,6}(?:is|:)\s{0,6}` + codeValue)},

	{FieldCheckInTime, regexp.MustCompile(`(?i)\bcheck[\- ]?in\s{1,6}(?:time\s{1,6})?(?:is|:|at|starts)\s{0,6}(?:at\s{1,6})?` + timeValue)},
	{FieldCheckOutTime, regexp.MustCompile(`(?i)\bcheck[\- ]?out\s{1,6}(?:time\s{1,6})?(?:is|:|at|by)\s{0,6}(?:at\s{1,6}|by\s{1,6})?` + timeValue)},
}

// extract runs the whole catalogue over the response and returns every
// captured (field, value) pair.
func extract(response string) []mention {
	var mentions []mention
	for _, ex := range extractors {
		for _, m := range ex.re.FindAllStringSubmatch(response, -1) {
			if len(m) < 2 {
				continue
			}
			// Sentence punctuation rides along in greedy captures.
			value := strings.TrimRight(m[1], ".,;:!?")
			if value != "" {
				mentions = append(mentions, mention{field: ex.field, value: value})
			}
		}
	}
	return mentions
}
