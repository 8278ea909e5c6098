package asset

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("asset not found")

// NotFoundError reports a reference that no source could resolve.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("asset not found for %q", e.Ref)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
