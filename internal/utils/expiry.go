package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var expiryPattern = regexp.MustCompile(`^(\d+)([smhdSMHD])$`)

// ParseExpiry converts a token lifetime such as "30s", "5m", "12h" or "7d"
// into a duration. Any other unit, a missing number, zero, or a value that
// does not fit in a time.Duration is an error.
func ParseExpiry(s string) (time.Duration, error) {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid expiry %q: want <number><s|m|h|d>", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: must be positive", s)
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("invalid expiry %q: out of range", s)
	}
	return time.Duration(n) * unit, nil
}
