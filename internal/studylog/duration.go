package studylog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration accepts a bare number of minutes ("25") or a Go duration
// string ("1h30m", "90s").
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n < 0 {
			return 0, ErrInvalidDuration
		}
		return time.Duration(n) * time.Minute, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}
	if d < 0 {
		return 0, ErrInvalidDuration
	}
	return d, nil
}
