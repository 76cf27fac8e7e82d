package utils

import (
	"strconv"
	"strings"
)

// StringToFloat parses a decimal form field. Returns 0 on bad input,
// validation happens before this is called.
func StringToFloat(str string) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseFloatPtr parses an optional decimal form field. Empty or invalid
// input yields nil, which the submission model renders as "absent".
func ParseFloatPtr(str string) *float64 {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return nil
	}
	return &val
}

// SplitCSV turns a comma separated flag value into a trimmed slice.
// Empty input yields an empty (non-nil) slice.
func SplitCSV(str string) []string {
	out := []string{}
	for _, part := range strings.Split(str, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
