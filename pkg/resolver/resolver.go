// Package resolver recovers a human-readable tag for an image pinned only by digest.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
	"github.com/lucas-albers-lz4/kubedeps/pkg/registry"
)

// DefaultScanTimeout bounds one complete tag scan.
const DefaultScanTimeout = 5 * time.Minute

// Resolver maps a digest back to a tag of the same repository.
type Resolver struct {
	provider    registry.Provider
	scanTimeout time.Duration
}

// New returns a Resolver that obtains clients from provider.
// A non-positive scanTimeout means DefaultScanTimeout.
func New(provider registry.Provider, scanTimeout time.Duration) *Resolver {
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return &Resolver{provider: provider, scanTimeout: scanTimeout}
}

// ResolveTagForDigest lists the tags of registryHost/img and returns the first
// one, in listing order, whose manifest digest equals digest. Tags without a
// manifest are skipped. found is false when no tag matches.
//
// An authentication failure against the default registry is returned as is;
// against any other registry it becomes a *PrivateSourceAuthenticationFailure.
func (r *Resolver) ResolveTagForDigest(ctx context.Context, registryHost, img, digest string) (string, bool, error) {
	if digest == "" {
		return "", false, nil
	}

	repository := image.RepositoryPath(registryHost, img)
	client, err := r.provider.ClientFor(registryHost)
	if err != nil {
		return "", false, fmt.Errorf("failed to create registry client for %q: %w", registryHost, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.scanTimeout)
	defer cancel()

	tags, err := client.ListTags(ctx, repository)
	if err != nil {
		return "", false, r.wrap(ctx, registryHost, repository, err)
	}

	log.Debug("Scanning tags for digest", "registry", registryHost, "repository", repository, "tags", len(tags), "digest", digest)
	for _, tag := range tags {
		candidate, err := client.DigestFor(ctx, repository, tag)
		if errors.Is(err, registry.ErrNotFound) {
			log.Debug("Tag has no manifest, skipping", "repository", repository, "tag", tag)
			continue
		}
		if err != nil {
			return "", false, r.wrap(ctx, registryHost, repository, err)
		}
		if candidate == digest {
			log.Debug("Resolved digest to tag", "repository", repository, "tag", tag)
			return tag, true, nil
		}
	}

	log.Debug("No tag matches digest", "repository", repository, "digest", digest)
	return "", false, nil
}

func (r *Resolver) wrap(ctx context.Context, registryHost, repository string, err error) error {
	if errors.Is(err, registry.ErrUnauthorized) {
		if image.IsDefaultRegistry(registryHost) {
			return err
		}
		return WrapPrivateSourceAuthenticationFailure(registryHost, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s for %s: %w", ErrScanTimeout, r.scanTimeout, repository, err)
	}
	return fmt.Errorf("failed to resolve digest for %s: %w", repository, err)
}
