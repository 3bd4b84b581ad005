package types

import (
	"strconv"
	"strings"
)

// ParseNumber extracts a numeric value from a cell. Extracted cells keep
// whatever formatting the source document used, so thousands separators,
// percent signs, and surrounding whitespace are stripped before parsing.
// Returns false if the cell holds no parseable number.
func ParseNumber(cell string) (float64, bool) {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return 0, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsNumeric reports whether a cell holds a parseable number.
func IsNumeric(cell string) bool {
	_, ok := ParseNumber(cell)
	return ok
}
