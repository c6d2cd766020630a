package fileutil

import (
	"github.com/spf13/afero"
)

// DefaultFS is the file system used by callers that are not handed one explicitly.
var DefaultFS afero.Fs = afero.NewOsFs()

// SetFS replaces DefaultFS and returns a function restoring the previous value.
func SetFS(fs afero.Fs) func() {
	old := DefaultFS
	DefaultFS = fs
	return func() {
		DefaultFS = old
	}
}

// OrDefault returns fs, or DefaultFS when fs is nil.
func OrDefault(fs afero.Fs) afero.Fs {
	if fs == nil {
		return DefaultFS
	}
	return fs
}
