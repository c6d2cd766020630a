// Package dependency turns the image references found in manifest files into
// dependencies with per-file requirements.
package dependency

import (
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
)

// PackageManager identifies dependencies produced by this package.
const PackageManager = "kubernetes"

// Source holds the parts of a reference that were present in the manifest.
// A field is empty when the reference did not spell it out.
type Source struct {
	Registry string `json:"registry,omitempty" yaml:"registry,omitempty"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Digest   string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// ImageString rebuilds {registry/}name{:tag}{@digest}.
func (s Source) ImageString(name string) string {
	return image.Compose(s.Registry, name, s.Tag, s.Digest)
}

// Requirement records how a dependency is referenced in one file.
type Requirement struct {
	// Requirement and Groups are always empty for this package manager.
	Requirement *string  `json:"requirement" yaml:"requirement"`
	Groups      []string `json:"groups" yaml:"groups"`
	File        string   `json:"file" yaml:"file"`
	Source      Source   `json:"source" yaml:"source"`
}

// Dependency is one image path and every file requirement referring to it.
// Values are never mutated; an update is a new value carrying both requirement sets.
type Dependency struct {
	Name                 string        `json:"name" yaml:"name"`
	Version              string        `json:"version" yaml:"version"`
	PreviousVersion      string        `json:"previous_version,omitempty" yaml:"previous_version,omitempty"`
	Requirements         []Requirement `json:"requirements" yaml:"requirements"`
	PreviousRequirements []Requirement `json:"previous_requirements,omitempty" yaml:"previous_requirements,omitempty"`
	PackageManager       string        `json:"package_manager" yaml:"package_manager"`
}

// Production reports whether the dependency is a production dependency. Images always are.
func (d Dependency) Production() bool {
	return true
}

// SourceURL returns the source repository URL. Images carry none.
func (d Dependency) SourceURL() string {
	return ""
}

// RequirementsFor returns the current requirements of file.
func (d Dependency) RequirementsFor(file string) []Requirement {
	return filterByFile(d.Requirements, file)
}

// PreviousRequirementsFor returns the previous requirements of file.
func (d Dependency) PreviousRequirementsFor(file string) []Requirement {
	return filterByFile(d.PreviousRequirements, file)
}

// RequirementChanged reports whether file has a current requirement that is
// not among the previous requirements.
func (d Dependency) RequirementChanged(file string) bool {
	for _, req := range d.RequirementsFor(file) {
		if !containsRequirement(d.PreviousRequirements, req) {
			return true
		}
	}
	return false
}

// Files returns the files the dependency is required in, in requirement order.
func (d Dependency) Files() []string {
	seen := make(map[string]struct{}, len(d.Requirements))
	var files []string
	for _, req := range d.Requirements {
		if _, ok := seen[req.File]; ok {
			continue
		}
		seen[req.File] = struct{}{}
		files = append(files, req.File)
	}
	return files
}

// WithUpdate returns a copy of d moved to version with requirements reqs.
// The current version and requirements become the previous ones.
func (d Dependency) WithUpdate(version string, reqs []Requirement) Dependency {
	return Dependency{
		Name:                 d.Name,
		Version:              version,
		PreviousVersion:      d.Version,
		Requirements:         cloneRequirements(reqs),
		PreviousRequirements: cloneRequirements(d.Requirements),
		PackageManager:       d.PackageManager,
	}
}

func filterByFile(reqs []Requirement, file string) []Requirement {
	var out []Requirement
	for _, req := range reqs {
		if req.File == file {
			out = append(out, req)
		}
	}
	return out
}

func containsRequirement(reqs []Requirement, want Requirement) bool {
	for _, req := range reqs {
		if req.File == want.File && req.Source == want.Source {
			return true
		}
	}
	return false
}

func cloneRequirements(reqs []Requirement) []Requirement {
	if reqs == nil {
		return nil
	}
	out := make([]Requirement, len(reqs))
	for i, req := range reqs {
		out[i] = req
		out[i].Groups = append([]string{}, req.Groups...)
	}
	return out
}
