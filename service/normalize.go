package service

import (
	"strconv"
	"strings"
)

// NormalizeOrderID canonicalizes an order identifier cell. Spreadsheet
// engines coerce numeric-looking identifiers to floats, so a value like
// "20240901123.0" must collapse back to "20240901123" before it can be
// used as a join key. Idempotent: normalizing twice returns the same
// string.
func NormalizeOrderID(value string) string {
	return repairFloatArtifact(strings.TrimSpace(value))
}

// NormalizeOrderKey is the reconciliation variant: it strips all
// whitespace, not just the surrounding run, because Naver exports
// sometimes insert stray spaces inside numeric identifiers.
func NormalizeOrderKey(value string) string {
	return repairFloatArtifact(strings.Join(strings.Fields(value), ""))
}

// repairFloatArtifact turns "123.0" into "123" when the value is a
// numeric string with a float suffix. Identifiers can exceed float64
// precision, so the suffix is trimmed textually instead of going
// through a float round-trip.
func repairFloatArtifact(s string) string {
	digits := strings.TrimSuffix(s, ".0")
	if digits == s || digits == "" || !isAllDigits(digits) {
		return s
	}
	return digits
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseQuantity coerces a quantity cell to a non-negative integer.
// Missing or non-numeric values become 0, matching the marketplace
// export convention where blank means "no quantity recorded".
func ParseQuantity(value string) int {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	// Quantities also arrive as float artifacts ("3.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}
