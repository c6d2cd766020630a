// Package registry talks to container registries over the OCI distribution
// API: it lists the tags of a repository and resolves a tag to its manifest digest.
package registry

import (
	"context"
)

// Client is the registry surface used for digest resolution.
type Client interface {
	// ListTags returns every tag of repository, following pagination.
	ListTags(ctx context.Context, repository string) ([]string, error)
	// DigestFor returns the manifest digest that tag currently points at.
	DigestFor(ctx context.Context, repository, tag string) (string, error)
}

// Provider hands out a Client for a registry host. The empty host means the default registry.
type Provider interface {
	ClientFor(registry string) (Client, error)
}
