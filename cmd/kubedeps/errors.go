package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/lucas-albers-lz4/kubedeps/pkg/credentials"
	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/registry"
	"github.com/lucas-albers-lz4/kubedeps/pkg/resolver"
	"github.com/lucas-albers-lz4/kubedeps/pkg/updater"
)

// exitCodeFor classifies an error returned by the library packages.
func exitCodeFor(err error) int {
	var (
		notParseable        *dependency.FileNotParseableError
		notEncoded          *fetcher.FileNotParseableError
		privateSource       *resolver.PrivateSourceAuthenticationFailure
		credentialsExt      *credentials.ErrCredentialsExtension
		credentialsNotExist *credentials.ErrCredentialsFileNotExist
		credentialsRead     *credentials.ErrCredentialsFileRead
		credentialsParse    *credentials.ErrCredentialsFileParse
		credentialsInvalid  *credentials.ErrInvalidCredential
		requestErr          *registry.ErrRequest
	)

	switch {
	case err == nil:
		return exitcodes.ExitSuccess
	case errors.Is(err, fetcher.ErrFileNotFound), errors.Is(err, dependency.ErrFileNotFound):
		return exitcodes.ExitManifestNotFound
	case errors.As(err, &notParseable), errors.As(err, &notEncoded):
		return exitcodes.ExitManifestParsingError
	case errors.As(err, &credentialsExt), errors.As(err, &credentialsNotExist), errors.As(err, &credentialsRead),
		errors.As(err, &credentialsParse), errors.As(err, &credentialsInvalid):
		return exitcodes.ExitCredentialsError
	case errors.As(err, &privateSource), errors.Is(err, registry.ErrUnauthorized):
		return exitcodes.ExitRegistryAuthError
	case errors.Is(err, resolver.ErrScanTimeout), errors.Is(err, context.DeadlineExceeded):
		return exitcodes.ExitTimeout
	case errors.As(err, &requestErr), errors.Is(err, registry.ErrInvalidHost), errors.Is(err, registry.ErrNotFound):
		return exitcodes.ExitRegistryError
	case errors.Is(err, updater.ErrNoFilesChanged):
		return exitcodes.ExitNoFilesChanged
	case errors.Is(err, updater.ErrContentUnchanged):
		return exitcodes.ExitContentUnchanged
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return exitcodes.ExitIOError
	default:
		return exitcodes.ExitGeneralRuntimeError
	}
}

// withExitCode wraps err in an ExitCodeError unless it already carries a code.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := exitcodes.IsExitCodeError(err); ok {
		return err
	}
	return &exitcodes.ExitCodeError{Code: exitCodeFor(err), Err: err}
}
