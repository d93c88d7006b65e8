// ABOUTME: Lenient number parsing for loosely typed upstream payloads
// ABOUTME: Accepts integers, floats and quoted numbers; anything else is reported as unparsable

package parse

import (
	"math"
	"strconv"
	"strings"
)

// Int parses s as an integer. Quoted values and floats are accepted; floats
// are truncated toward zero.
func Int(s string) (int, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// IntOrZero safely parses an integer from a string, returning 0 if parsing fails
func IntOrZero(s string) int {
	v, _ := Int(s)
	return v
}
