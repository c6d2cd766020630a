package image

import (
	"strings"

	distref "github.com/distribution/reference"

	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// defaultRegistryAliases are the hosts that all address the default public registry.
var defaultRegistryAliases = map[string]struct{}{
	"":                        {},
	DefaultRegistry:           {},
	"index.docker.io":         {},
	"registry-1.docker.io":    {},
	"registry.hub.docker.com": {},
}

// IsDefaultRegistry reports whether registry addresses the default public registry.
// The empty string (no explicit registry) counts as default.
func IsDefaultRegistry(registry string) bool {
	_, ok := defaultRegistryAliases[strings.ToLower(strings.TrimSpace(registry))]
	return ok
}

// RepositoryPath returns the path a registry API expects for image. On the default
// registry an image without a namespace lives under "library/"; everywhere else the
// image path is used as-is.
func RepositoryPath(registry, image string) string {
	if !IsDefaultRegistry(registry) {
		return image
	}
	if strings.Contains(image, DefaultSeparator) {
		return image
	}

	named, err := distref.ParseNormalizedNamed(image)
	if err != nil {
		log.Debug("ParseNormalizedNamed failed, prefixing manually", "image", image, "error", err)
		return OfficialRepositoryName + DefaultSeparator + image
	}
	return distref.Path(named)
}
