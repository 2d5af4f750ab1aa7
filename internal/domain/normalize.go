package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCount converts a display-formatted counter such as " 1,23,456 " into
// an integer. Surrounding whitespace is trimmed and every comma removed before
// parsing; what remains must be a plain base-10 digit string.
func ParseCount(raw string) (uint64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty value %q", ErrMalformedNumber, raw)
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, raw)
	}
	return v, nil
}
