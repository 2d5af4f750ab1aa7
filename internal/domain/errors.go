package domain

import "errors"

var (
	// ErrStructuralMismatch means a required region, list, or node was missing
	// or had the wrong arity. The upstream markup shape has changed.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrMalformedNumber means a located text node is not a non-negative integer.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrDuplicateRegionKey means two rows resolved to the same key.
	ErrDuplicateRegionKey = errors.New("duplicate region key")
)

// ErrorKind maps an extraction error to a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStructuralMismatch):
		return "structural_mismatch"
	case errors.Is(err, ErrMalformedNumber):
		return "malformed_number"
	case errors.Is(err, ErrDuplicateRegionKey):
		return "duplicate_region_key"
	default:
		return "other"
	}
}
