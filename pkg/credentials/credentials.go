// Package credentials holds the registry credentials supplied by the caller
// and answers lookups by registry host.
package credentials

import (
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// TypeDockerRegistry is the only credential type used for registry access.
const TypeDockerRegistry = "docker_registry"

// Credential is one entry of the credentials store.
type Credential struct {
	Type string `json:"type"`
	// Host is the registry host, including a port when the registry uses one.
	Host string `json:"host"`
	// Registry is accepted as an alias for Host.
	Registry string `json:"registry,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// HostName returns Host, falling back to Registry.
func (c Credential) HostName() string {
	if c.Host != "" {
		return c.Host
	}
	return c.Registry
}

// HasAuth reports whether the credential carries a username or password.
func (c Credential) HasAuth() bool {
	return c.Username != "" || c.Password != ""
}

// File is the on-disk layout of a credentials file.
type File struct {
	Credentials []Credential `json:"credentials"`
}

// Finder looks up credentials by registry host.
type Finder struct {
	entries []Credential
}

// NewFinder returns a Finder over creds. Entries of other types are kept but never returned.
func NewFinder(creds []Credential) *Finder {
	return &Finder{entries: append([]Credential(nil), creds...)}
}

// ForRegistry returns the first docker_registry credential whose host equals
// host exactly. A nil Finder finds nothing.
func (f *Finder) ForRegistry(host string) (Credential, bool) {
	if f == nil || host == "" {
		return Credential{}, false
	}
	for _, c := range f.entries {
		if c.Type != TypeDockerRegistry {
			continue
		}
		if c.HostName() == host {
			log.Debug("Found credentials for registry", "host", host, "username", c.Username)
			return c, true
		}
	}
	log.Debug("No credentials for registry", "host", host)
	return Credential{}, false
}

// Len returns the number of stored entries.
func (f *Finder) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}
