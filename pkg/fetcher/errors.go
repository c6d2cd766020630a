package fetcher

import (
	stderrors "errors"
	"fmt"
)

// ErrFileNotFound is matched by FileNotFoundError.
var ErrFileNotFound = stderrors.New("dependency file not found")

// FileNotFoundError reports that no eligible manifest exists under Path.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrFileNotFound, e.Path)
}

// Is matches ErrFileNotFound.
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// FileNotParseableError reports a manifest that cannot be read as text.
type FileNotParseableError struct {
	Path string
}

func (e *FileNotParseableError) Error() string {
	return fmt.Sprintf("dependency file is not parseable: %s", e.Path)
}
