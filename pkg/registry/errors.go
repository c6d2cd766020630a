package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying registry failures. Match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found in registry")
	ErrUnauthorized = errors.New("registry authentication failed")
	ErrInvalidHost  = errors.New("invalid registry host")
)

// ErrRequest records a failed registry round trip and its classification.
type ErrRequest struct {
	Host       string
	Repository string
	Op         string
	// Kind is ErrNotFound, ErrUnauthorized or nil for unclassified failures.
	Kind error
	Err  error
}

func (e *ErrRequest) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s %s/%s: %v: %v", e.Op, e.Host, e.Repository, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Host, e.Repository, e.Err)
}

func (e *ErrRequest) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the classification as well as the wrapped error.
func (e *ErrRequest) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// WrapRequest creates a new ErrRequest error.
func WrapRequest(op, host, repository string, kind, err error) error {
	return &ErrRequest{Op: op, Host: host, Repository: repository, Kind: kind, Err: err}
}

// ErrHost indicates a registry host that cannot be addressed.
type ErrHost struct {
	Host string
	Err  error
}

func (e *ErrHost) Error() string {
	return fmt.Sprintf("%v '%s': %v", ErrInvalidHost, e.Host, e.Err)
}

func (e *ErrHost) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidHost.
func (e *ErrHost) Is(target error) bool {
	return target == ErrInvalidHost
}

// WrapHost creates a new ErrHost error.
func WrapHost(host string, err error) error {
	return &ErrHost{Host: host, Err: err}
}
