package person

import (
	"strings"

	"golang.org/x/text/cases"
)

// Gender is the closed set of genders accepted in the input file.
// The zero value is not a valid gender.
type Gender int

const (
	Male Gender = iota + 1
	Female
)

// genders lists every valid variant in declaration order.
var genders = []Gender{Male, Female}

// FullName returns the canonical name, e.g. "Male".
func (g Gender) FullName() string {
	switch g {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return ""
	}
}

// ShortCode returns the one-letter code, e.g. "M".
func (g Gender) ShortCode() string {
	switch g {
	case Male:
		return "M"
	case Female:
		return "F"
	default:
		return ""
	}
}

func (g Gender) IsMale() bool   { return g == Male }
func (g Gender) IsFemale() bool { return g == Female }

// Valid reports whether g is one of the declared variants.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

func (g Gender) String() string {
	if !g.Valid() {
		return "Unknown"
	}
	return g.FullName()
}

// ParseGender matches value against the full name and short code of each
// variant, ignoring case and surrounding whitespace.
func ParseGender(value string) (Gender, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, &ValueError{Kind: "gender", Value: value}
	}

	fold := cases.Fold()
	normalized := fold.String(trimmed)
	for _, g := range genders {
		if normalized == fold.String(g.FullName()) || normalized == fold.String(g.ShortCode()) {
			return g, nil
		}
	}

	return 0, &ValueError{Kind: "gender", Value: value}
}
