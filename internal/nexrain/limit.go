package nexrain

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Limits on the number of readings returned by the recent route.
const (
	DefaultLimit = 1000
	MinLimit     = 1
	MaxLimit     = 10000
)

// ParseLimit reads the limit query parameter. Absent or non-integer input
// yields DefaultLimit; any integer, however large, is clamped into
// [MinLimit, MaxLimit].
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// Atoi saturates to the nearest bound on overflow.
		return ClampLimit(n)
	}
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}

// ClampLimit silently pulls n into [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	return max(MinLimit, min(n, MaxLimit))
}
