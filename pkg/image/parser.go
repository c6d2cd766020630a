// Package image decomposes container image reference strings into
// registry, image path, tag, digest and build-stage name, and rebuilds them.
package image

import (
	"regexp"

	"github.com/distribution/reference"

	log "github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

const (
	// DefaultRegistry is the docker-facing host of the default registry. A reference that
	// spells it out is treated as if it had no registry at all.
	DefaultRegistry = "docker.io"
	// OfficialRepositoryName is the namespace the default registry uses for unqualified images.
	OfficialRepositoryName = "library"
	// DefaultSeparator separates registry and path segments.
	DefaultSeparator = "/"
	// TagSeparator separates the name and tag.
	TagSeparator = ":"
	// DigestSeparator separates the name (or tag) and digest.
	DigestSeparator = "@"
	// MaxTagLength is the maximum length of a tag.
	MaxTagLength = 128
)

// Grammar fragments, after github.com/distribution/reference/regexp.go.
// Unlike the distribution grammar the registry must contain a dot, so
// "my-repo/nginx" keeps "my-repo" as a namespace instead of reading it as a
// host. A single-label host such as "localhost/app" is therefore not
// recognised as a registry.
const (
	domainComponent = `(?:[[:alnum:]]|[[:alnum:]][[:alnum:]-]*[[:alnum:]])`
	domain          = `(?:` + domainComponent + `(?:\.` + domainComponent + `)+)`
	registryPattern = `(?P<registry>` + domain + `(?::\d+)?)`

	nameComponent = `(?:[a-z\d]+(?:(?:[._]|__|[-]*)[a-z\d]+)*)`
	imagePattern  = `(?P<image>` + nameComponent + `(?:/` + nameComponent + `)*)`

	digestPattern = `@(?P<digest>[^\s]+)`
	stagePattern  = `\s+AS\s+(?P<stage>[\w-]+)`
)

// tagPattern reuses the distribution tag grammar: [\w][\w.-]{0,127}.
var tagPattern = `:(?P<tag>` + reference.TagRegexp.String() + `)`

// referencePattern is anchored at the start only: trailing text after a valid prefix is ignored.
var referencePattern = regexp.MustCompile(
	`^(?:` + registryPattern + `/)?` + imagePattern +
		`(?:` + tagPattern + `)?(?:` + digestPattern + `)?(?:` + stagePattern + `)?`,
)

var (
	registryIndex = referencePattern.SubexpIndex("registry")
	imageIndex    = referencePattern.SubexpIndex("image")
	tagIndex      = referencePattern.SubexpIndex("tag")
	digestIndex   = referencePattern.SubexpIndex("digest")
	stageIndex    = referencePattern.SubexpIndex("stage")
)

// Parse decomposes raw into a Reference. It returns ok == false when raw does not
// start with a valid reference; such strings are meant to be skipped, not reported.
//
// The supported forms are:
//   - image                             (e.g. ubuntu)
//   - namespace/image:tag               (e.g. my-repo/nginx:1.14.2)
//   - registry[:port]/image[:tag][@digest]
//   - any of the above followed by " AS stage"
//
// A registry equal to DefaultRegistry is cleared.
func Parse(raw string) (*Reference, bool) {
	m := referencePattern.FindStringSubmatch(raw)
	if m == nil {
		log.Debug("String does not look like an image reference", "value", raw)
		return nil, false
	}

	ref := &Reference{
		Registry:  m[registryIndex],
		Image:     m[imageIndex],
		Tag:       m[tagIndex],
		Digest:    m[digestIndex],
		StageName: m[stageIndex],
	}
	if ref.Registry == DefaultRegistry {
		ref.Registry = ""
	}

	log.Debug("Parsed image reference",
		"value", raw, "registry", ref.Registry, "image", ref.Image, "tag", ref.Tag, "digest", ref.Digest)
	return ref, true
}

// ParseStrict is Parse for user input: the whole string must be a reference.
func ParseStrict(raw string) (*Reference, error) {
	if raw == "" {
		return nil, ErrEmptyImageReference
	}
	ref, ok := Parse(raw)
	if !ok {
		return nil, WrapInvalidImageReference(raw)
	}
	// Compare against the raw form: a trailing remainder means only a prefix matched.
	consumed := referencePattern.FindString(raw)
	if consumed != raw {
		return nil, WrapInvalidImageReference(raw)
	}
	return ref, nil
}
