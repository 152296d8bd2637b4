// Package input normalises raw form values before they reach the costing and ledger engines.
package input

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Lenient parses raw as a float and falls back to 0 for anything unparseable.
// Stock entry quantities go through this before reaching the ledger calculator.
func Lenient(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// LenientAny coerces a decoded JSON value (number, string or null) like Lenient.
func LenientAny(v any) float64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case string:
		return Lenient(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// ParseNonNegativeFloat parses a required number that may be zero, such as a price per kg.
func ParseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

// ParsePercent is ParseNonNegativeFloat capped at 100.
func ParsePercent(raw, field string) (float64, error) {
	value, err := ParseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

// ParseID parses a positive integer identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
