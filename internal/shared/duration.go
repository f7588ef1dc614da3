package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts a "M:SS" or "SS" time string into whole seconds.
//
// Any other shape (two or more colons, empty or non-numeric parts) returns an error wrapping [ErrMalformedDuration].
// Callers are expected to fall back to a duration of 0.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	switch len(parts) {
	case 1:
		seconds, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, s)
		}
		return seconds, nil
	case 2:
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q has non-numeric minutes", ErrMalformedDuration, s)
		}
		seconds, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q has non-numeric seconds", ErrMalformedDuration, s)
		}
		return minutes*60 + seconds, nil
	default:
		return 0, fmt.Errorf("%w: %q has %d colons", ErrMalformedDuration, s, len(parts)-1)
	}
}

// FormatDuration renders seconds as "M:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
