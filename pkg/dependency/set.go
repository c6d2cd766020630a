package dependency

import (
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// BuildDependency returns a dependency with a single requirement for file.
func BuildDependency(file string, ref *image.Reference, version string) Dependency {
	return Dependency{
		Name:    ref.Image,
		Version: version,
		Requirements: []Requirement{{
			Groups: []string{},
			File:   file,
			Source: Source{Registry: ref.Registry, Tag: ref.Tag, Digest: ref.Digest},
		}},
		PackageManager: PackageManager,
	}
}

// Set groups dependencies by name, keeping first-seen order.
// It holds at most one requirement per (dependency, file).
type Set struct {
	order []string
	deps  map[string]*Dependency
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{deps: make(map[string]*Dependency)}
}

// Add merges dep into the set. The version of the first occurrence is kept;
// a requirement for a file that already has one is dropped with a warning.
func (s *Set) Add(dep Dependency) {
	existing, ok := s.deps[dep.Name]
	if !ok {
		d := dep
		d.Requirements = cloneRequirements(dep.Requirements)
		s.deps[dep.Name] = &d
		s.order = append(s.order, dep.Name)
		return
	}

	for _, req := range dep.Requirements {
		current := existing.RequirementsFor(req.File)
		if len(current) > 0 {
			if current[0].Source != req.Source {
				log.Warn("Ignoring second reference to image in the same file",
					"image", dep.Name, "file", req.File,
					"kept", current[0].Source.ImageString(dep.Name), "ignored", req.Source.ImageString(dep.Name))
			}
			continue
		}
		existing.Requirements = append(existing.Requirements, req)
	}
	if existing.Version != dep.Version {
		log.Debug("Keeping first seen version", "image", dep.Name, "kept", existing.Version, "ignored", dep.Version)
	}
}

// Len returns the number of dependencies.
func (s *Set) Len() int {
	return len(s.order)
}

// Dependencies returns the dependencies in first-seen order.
func (s *Set) Dependencies() []Dependency {
	out := make([]Dependency, 0, len(s.order))
	for _, name := range s.order {
		d := *s.deps[name]
		d.Requirements = cloneRequirements(d.Requirements)
		out = append(out, d)
	}
	return out
}
