package manifest

import (
	"errors"
	"fmt"
)

// ErrDisallowedTag is returned when a document carries a tag outside the YAML core schema.
var ErrDisallowedTag = errors.New("disallowed YAML tag")

// DisallowedTagError records the offending tag and where it appeared.
type DisallowedTagError struct {
	Tag    string
	Line   int
	Column int
}

func (e *DisallowedTagError) Error() string {
	return fmt.Sprintf("%s %q at line %d, column %d", ErrDisallowedTag, e.Tag, e.Line, e.Column)
}

func (e *DisallowedTagError) Unwrap() error {
	return ErrDisallowedTag
}
