// Package exitcodes provides centralized exit code definitions and error handling for kubedeps.
// Exit codes are organized in ranges to categorize different types of failures:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (e.g., missing flags, invalid config)
//	10-19: Manifest Processing Errors (e.g., unparseable files, no change produced)
//	20-29: Runtime Errors (e.g., I/O errors, registry failures)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitMissingRequiredFlag     = 1 // Required command flag not provided
	ExitInputConfigurationError = 2 // General configuration error
	ExitManifestNotFound        = 3 // No manifest files in the directory
	ExitCredentialsError        = 4 // Credentials file missing or invalid
	ExitDependencyNotFound      = 5 // Named dependency not present in the manifests

	// Manifest Processing Errors (10-19)
	ExitManifestParsingError = 10 // Manifest could not be decoded
	ExitImageProcessingError = 11 // Failed to process image references
	ExitNoFilesChanged       = 12 // Update touched no file
	ExitContentUnchanged     = 13 // Update was due but produced identical content
	ExitDowngradeRefused     = 14 // Target version is lower than the current one

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitIOError             = 21 // IO operation error
	ExitRegistryError       = 22 // Registry request failed
	ExitRegistryAuthError   = 23 // Registry rejected the credentials
	ExitTimeout             = 24 // Registry scan exceeded its budget

	// Internal Errors (30-39)
	ExitInternalError = 30 // Internal error in command execution
)

// ExitCodeError wraps an error with an exit code for consistent error handling.
// This type is used throughout the codebase to propagate both error details
// and the appropriate exit code up the call stack.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitMissingRequiredFlag:     "Required command flag not provided",
	ExitInputConfigurationError: "General configuration error",
	ExitManifestNotFound:        "No manifest files found",
	ExitCredentialsError:        "Credentials file missing or invalid",
	ExitDependencyNotFound:      "Dependency not found in manifests",
	ExitManifestParsingError:    "Failed to parse manifest",
	ExitImageProcessingError:    "Failed to process image references",
	ExitNoFilesChanged:          "No files changed",
	ExitContentUnchanged:        "Expected content to change",
	ExitDowngradeRefused:        "Refusing to downgrade",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
	ExitRegistryError:           "Registry request failed",
	ExitRegistryAuthError:       "Registry authentication failed",
	ExitTimeout:                 "Registry scan timed out",
	ExitInternalError:           "Internal error in command execution",
}
