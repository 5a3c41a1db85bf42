package kinship

import "strings"

// Gender selects the grammatical form of a kinship term. It never affects topology.
type Gender string

// Supported genders.
const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// ParseGender normalizes a gender string case-insensitively. Anything that is not
// male or female maps to Other.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male
	case "female", "f":
		return Female
	default:
		return Other
	}
}

// term picks the masculine, feminine or neutral form.
func (g Gender) term(masc, fem, neutral string) string {
	switch g {
	case Male:
		return masc
	case Female:
		return fem
	default:
		return neutral
	}
}
