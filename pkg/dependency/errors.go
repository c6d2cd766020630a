package dependency

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned when there are no files to parse.
var ErrFileNotFound = errors.New("no manifest files to parse")

// FileNotParseableError reports a file whose content could not be decoded.
type FileNotParseableError struct {
	Path string
	Err  error
}

func (e *FileNotParseableError) Error() string {
	return fmt.Sprintf("dependency file is not parseable: %s: %v", e.Path, e.Err)
}

func (e *FileNotParseableError) Unwrap() error {
	return e.Err
}

// WrapFileNotParseable creates a new FileNotParseableError error.
func WrapFileNotParseable(path string, err error) error {
	return &FileNotParseableError{Path: path, Err: err}
}
