package updater

import (
	"errors"
)

// Sentinel errors returned by UpdatedFiles.
var (
	// ErrContentUnchanged means an edit was due but produced identical content.
	ErrContentUnchanged = errors.New("expected content to change")
	// ErrNoFilesChanged means no file needed an edit for the dependency.
	ErrNoFilesChanged = errors.New("no files changed")
)
