package dataset

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrNotFound    = errors.New("dataset not found")
	ErrMaskLength  = errors.New("filter mask length does not match dataset count")
	ErrNoLoader    = errors.New("dataset has no info loader")
	ErrInvalidInfo = errors.New("invalid dataset info")
)

// NotFoundError reports lookups that did not resolve.
// Identifiers holds every unresolved query element in query order.
type NotFoundError struct {
	Identifiers []string
}

func (e *NotFoundError) Error() string {
	return "dataset not found: " + strings.Join(e.Identifiers, ", ")
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
