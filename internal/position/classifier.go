// Package position maps raw position labels onto the three defensive groups.
package position

import (
	"strings"

	"github.com/Mereki/three-point-predictor/internal/domain"
)

type flags struct {
	guard, forward, center bool
}

func parse(raw string) flags {
	var f flags
	upper := strings.ToUpper(raw)
	f.guard = strings.Contains(upper, "GUARD")
	f.forward = strings.Contains(upper, "FORWARD")
	f.center = strings.Contains(upper, "CENTER")

	tokens := strings.FieldsFunc(upper, func(r rune) bool {
		return r == '-' || r == '/' || r == ' ' || r == ','
	})
	for _, tok := range tokens {
		switch tok {
		case "PG", "SG", "G":
			f.guard = true
		case "SF", "PF", "F":
			f.forward = true
		case "C":
			f.center = true
		}
	}
	return f
}

// Classify never fails: anything it cannot place is treated as a guard, the
// group that takes most three-point attempts.
func Classify(raw string) domain.PositionGroup {
	f := parse(raw)
	switch {
	case f.guard && !f.center:
		return domain.Guard
	case f.forward:
		return domain.Forward
	case f.center:
		return domain.Center
	default:
		return domain.Guard
	}
}

// Abbreviation turns a provider label like "Forward-Center" into the short
// label shown next to a player's name.
func Abbreviation(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "SG"
	}
	switch {
	case strings.Contains(raw, "Guard"):
		return "SG"
	case strings.Contains(raw, "Forward") && strings.Contains(raw, "Center"):
		return "PF"
	case strings.Contains(raw, "Forward"):
		return "SF"
	case strings.Contains(raw, "Center"):
		return "C"
	}
	return raw
}
