package image

import "strings"

// Reference is the structural decomposition of an image reference string.
// An empty field means the part was absent from the source string.
type Reference struct {
	Registry  string // Registry host, optionally with port (e.g. registry-host.io:5000); empty for the implicit default
	Image     string // Repository path (e.g. nginx, my-repo/nginx)
	Tag       string // Tag (e.g. 1.14.2)
	Digest    string // Content digest, algorithm-prefixed (e.g. sha256:...)
	StageName string // Build-stage alias from a trailing "AS name"; parsed but never written back
}

// String rebuilds {registry/}{image}{:tag}{@digest}. The stage name is dropped.
func (r *Reference) String() string {
	return Compose(r.Registry, r.Image, r.Tag, r.Digest)
}

// HasVersion reports whether the reference pins a tag or a digest.
func (r *Reference) HasVersion() bool {
	return r.Tag != "" || r.Digest != ""
}

// Compose joins reference parts, emitting each separator only when its part is set.
// It is the single place where reference strings are assembled, so parsing and
// textual updates agree byte-for-byte.
func Compose(registry, name, tag, digest string) string {
	var b strings.Builder
	b.Grow(len(registry) + len(name) + len(tag) + len(digest) + 3)
	if registry != "" {
		b.WriteString(registry)
		b.WriteString(DefaultSeparator)
	}
	b.WriteString(name)
	if tag != "" {
		b.WriteString(TagSeparator)
		b.WriteString(tag)
	}
	if digest != "" {
		b.WriteString(DigestSeparator)
		b.WriteString(digest)
	}
	return b.String()
}
