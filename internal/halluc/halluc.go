// Package halluc reconciles secret and time values the model claims
// against the property record. Mismatches are redacted, never
// corrected: substituting the real value into free-form model text is
// itself a leak risk, so redaction only removes.
package halluc

import (
	"strings"

	"github.com/hostling/guestgate/internal/property"
)

// FieldType identifies which ground-truth value a mention refers to.
type FieldType string

const (
	FieldWiFiPassword FieldType = "wifi_password"
	FieldWiFiNetwork  FieldType = "wifi_network"
	FieldDoorCode     FieldType = "door_code"
	FieldGateCode     FieldType = "gate_code"
	FieldLockboxCode  FieldType = "lockbox_code"
	FieldGarageCode   FieldType = "garage_code"
	FieldCheckInTime  FieldType = "check_in_time"
	FieldCheckOutTime FieldType = "check_out_time"
)

// redactionPlaceholder replaces a mismatched value in the response.
const redactionPlaceholder = "(please ask me specifically for this detail)"

// Hallucination is one value the model asserted that does not match
// ground truth.
type Hallucination struct {
	Field     FieldType
	Mentioned string
	Actual    string
}

// Result is the reconciled response.
type Result struct {
	Validated      string
	Hallucinations []Hallucination
}

// actualValue reads the ground-truth value for a field type. An empty
// string means the field is unset and mentions of it are never flagged.
func actualValue(rec *property.Record, field FieldType) string {
	switch field {
	case FieldWiFiPassword:
		return rec.WiFiPassword
	case FieldWiFiNetwork:
		return rec.WiFiNetwork
	case FieldDoorCode:
		return rec.DoorCode
	case FieldGateCode:
		return rec.GateCode
	case FieldLockboxCode:
		return rec.LockboxCode
	case FieldGarageCode:
		return rec.GarageCode
	case FieldCheckInTime:
		return rec.CheckInTime
	case FieldCheckOutTime:
		return rec.CheckOutTime
	}
	return ""
}

// normalize prepares a value for comparison: lower-case, trimmed,
// wrapping quotes stripped.
func normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// Validate extracts claimed values from the response and reconciles
// them against the record. Every mismatched literal is replaced with a
// fixed placeholder; the validated text never gains the real value.
// Running Validate on its own clean output is a no-op.
func Validate(response string, rec *property.Record) Result {
	result := Result{Validated: response}

	for _, mention := range extract(response) {
		actual := actualValue(rec, mention.field)
		if actual == "" {
			continue
		}
		if normalize(mention.value) == normalize(actual) {
			continue
		}
		result.Hallucinations = append(result.Hallucinations, Hallucination{
			Field:     mention.field,
			Mentioned: mention.value,
			Actual:    actual,
		})
		result.Validated = strings.ReplaceAll(result.Validated, mention.value, redactionPlaceholder)
	}

	return result
}
