package mcpserver

import (
	"math"
	"strconv"
	"strings"
)

// RequireString returns args[name] if it is a string with non-blank content.
// The value is returned untrimmed.
func RequireString(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", Invalidf("%s must be a non-empty string", name)
	}
	return s, nil
}

// OptionalNumber returns args[name] as a float64, or fallback when it is
// absent or not numeric. Numeric strings are accepted.
func OptionalNumber(args map[string]any, name string, fallback float64) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

// IntInRange reads an optional integer argument and checks lo <= n <= hi.
func IntInRange(args map[string]any, name string, lo, hi, fallback int) (int, error) {
	if _, ok := args[name]; !ok {
		return fallback, nil
	}
	f := OptionalNumber(args, name, math.NaN())
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, Invalidf("%s must be an integer", name)
	}
	n := int(f)
	if n < lo || n > hi {
		return 0, Invalidf("%s must be between %d and %d", name, lo, hi)
	}
	return n, nil
}
