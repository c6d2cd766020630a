package resolver

import (
	"errors"
	"fmt"
)

// ErrScanTimeout is returned when the tag scan exceeds its budget.
var ErrScanTimeout = errors.New("digest resolution exceeded scan timeout")

// PrivateSourceAuthenticationFailure reports a non-default registry that
// rejected the supplied credentials, or required credentials none were given for.
type PrivateSourceAuthenticationFailure struct {
	Source string
	Err    error
}

func (e *PrivateSourceAuthenticationFailure) Error() string {
	return fmt.Sprintf("the following source could not be reached as it requires authentication "+
		"(and any provided details were invalid or lacked the required permissions): %s", e.Source)
}

func (e *PrivateSourceAuthenticationFailure) Unwrap() error {
	return e.Err
}

// WrapPrivateSourceAuthenticationFailure creates a new PrivateSourceAuthenticationFailure error.
func WrapPrivateSourceAuthenticationFailure(source string, err error) error {
	return &PrivateSourceAuthenticationFailure{Source: source, Err: err}
}
