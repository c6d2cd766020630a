package image

import (
	"errors"
	"fmt"
)

// Sentinel errors related to image reference handling.
var (
	ErrEmptyImageReference   = errors.New("image reference cannot be empty")
	ErrInvalidImageReference = errors.New("invalid image reference format")
)

// WrapInvalidImageReference annotates ErrInvalidImageReference with the offending input.
func WrapInvalidImageReference(raw string) error {
	return fmt.Errorf("%w: %q", ErrInvalidImageReference, raw)
}
