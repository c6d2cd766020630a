package credentials

import (
	"fmt"
)

// ErrCredentialsExtension indicates the credentials file path has an invalid extension.
type ErrCredentialsExtension struct {
	Path string
}

func (e *ErrCredentialsExtension) Error() string {
	return fmt.Sprintf("credentials file path must end with .yaml or .yml: %s", e.Path)
}

// WrapCredentialsExtension creates a new ErrCredentialsExtension error.
func WrapCredentialsExtension(path string) error {
	return &ErrCredentialsExtension{Path: path}
}

// ErrCredentialsFileNotExist indicates the credentials file does not exist.
type ErrCredentialsFileNotExist struct {
	Path string
	Err  error
}

func (e *ErrCredentialsFileNotExist) Error() string {
	return fmt.Sprintf("credentials file does not exist: %s (%v)", e.Path, e.Err)
}

func (e *ErrCredentialsFileNotExist) Unwrap() error {
	return e.Err
}

// WrapCredentialsFileNotExist creates a new ErrCredentialsFileNotExist error.
func WrapCredentialsFileNotExist(path string, err error) error {
	return &ErrCredentialsFileNotExist{Path: path, Err: err}
}

// ErrCredentialsFileRead indicates an error occurred while reading the credentials file.
type ErrCredentialsFileRead struct {
	Path string
	Err  error
}

func (e *ErrCredentialsFileRead) Error() string {
	return fmt.Sprintf("failed to read credentials file '%s': %v", e.Path, e.Err)
}

func (e *ErrCredentialsFileRead) Unwrap() error {
	return e.Err
}

// WrapCredentialsFileRead creates a new ErrCredentialsFileRead error.
func WrapCredentialsFileRead(path string, err error) error {
	return &ErrCredentialsFileRead{Path: path, Err: err}
}

// ErrCredentialsFileParse indicates the credentials file content could not be parsed.
type ErrCredentialsFileParse struct {
	Path string
	Err  error
}

func (e *ErrCredentialsFileParse) Error() string {
	return fmt.Sprintf("failed to parse credentials file '%s': %v", e.Path, e.Err)
}

func (e *ErrCredentialsFileParse) Unwrap() error {
	return e.Err
}

// WrapCredentialsFileParse creates a new ErrCredentialsFileParse error.
func WrapCredentialsFileParse(path string, err error) error {
	return &ErrCredentialsFileParse{Path: path, Err: err}
}

// ErrInvalidCredential indicates an entry in the credentials file is incomplete.
type ErrInvalidCredential struct {
	Path   string
	Index  int
	Reason string
}

func (e *ErrInvalidCredential) Error() string {
	return fmt.Sprintf("invalid credential at index %d in '%s': %s", e.Index, e.Path, e.Reason)
}

// WrapInvalidCredential creates a new ErrInvalidCredential error.
func WrapInvalidCredential(path string, index int, reason string) error {
	return &ErrInvalidCredential{Path: path, Index: index, Reason: reason}
}
