package model

import "encoding/json"

// Confidence is the per-field trust tier assigned by extraction and
// enrichment. Levels form a total order: none < low < medium < high.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// ParseConfidence maps a string tier back to a Confidence. Unknown
// strings map to none.
func ParseConfidence(s string) Confidence {
	switch s {
	case "low":
		return ConfidenceLow
	case "medium":
		return ConfidenceMedium
	case "high":
		return ConfidenceHigh
	default:
		return ConfidenceNone
	}
}

// AtLeast reports whether c is at or above the given tier.
func (c Confidence) AtLeast(o Confidence) bool { return c >= o }

// Trusted reports whether a field at this tier is protected from being
// overwritten by later pipeline stages.
func (c Confidence) Trusted() bool { return c >= ConfidenceMedium }

// Downgrade lowers the tier exactly one step. Only high is affected;
// medium and low pass through unchanged, none stays none.
func (c Confidence) Downgrade() Confidence {
	if c == ConfidenceHigh {
		return ConfidenceMedium
	}
	return c
}

// MarshalJSON encodes the tier as its string name.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a string tier name.
func (c *Confidence) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = ParseConfidence(s)
	return nil
}

// Field names a draft field tracked in the confidence map.
type Field string

const (
	FieldName        Field = "name"
	FieldAddress     Field = "address"
	FieldCity        Field = "city"
	FieldCountry     Field = "country"
	FieldContinent   Field = "continent"
	FieldCoordinates Field = "coordinates"
	FieldCategory    Field = "category"
	FieldPhoto       Field = "photo"
)

// gatedFields are the location-critical fields that force user
// confirmation when any of them is below high confidence. Category is
// deliberately excluded: a wrong category is cheap to fix.
var gatedFields = []Field{FieldName, FieldCity, FieldCountry, FieldCoordinates}

// RequiresConfirmation is the confirmation gate: true whenever any
// location-critical field is below high confidence.
func RequiresConfirmation(fields map[Field]Confidence) bool {
	for _, f := range gatedFields {
		if fields[f] < ConfidenceHigh {
			return true
		}
	}
	return false
}
