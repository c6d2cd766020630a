// Package updater rewrites image references in manifest text in place,
// leaving every other byte of the file untouched.
package updater

import (
	"fmt"

	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// UpdatedFilesRegex matches the names of files this package may rewrite.
var UpdatedFilesRegex = fetcher.ManifestFileRegex

// Updater applies one updated dependency to a set of files.
type Updater struct {
	files []fetcher.File
	dep   dependency.Dependency
}

// New returns an Updater moving files from dep's previous requirements to its current ones.
func New(files []fetcher.File, dep dependency.Dependency) *Updater {
	return &Updater{files: files, dep: dep}
}

// UpdatedFiles returns the files whose content changed, with the new content.
// A file whose requirement changed but whose text did not is an error, as is
// an update that touches no file at all.
func (u *Updater) UpdatedFiles() ([]fetcher.File, error) {
	var updated []fetcher.File
	for _, file := range u.files {
		if !UpdatedFilesRegex.MatchString(file.Name) {
			continue
		}
		if !u.dep.RequirementChanged(file.Name) {
			log.Debug("Requirement unchanged, skipping file", "file", file.Name, "image", u.dep.Name)
			continue
		}

		content, err := u.updatedContent(file)
		if err != nil {
			return nil, err
		}
		file.Content = content
		updated = append(updated, file)
		log.Info("Updated image reference", "file", file.Name, "image", u.dep.Name,
			"from", u.dep.PreviousVersion, "to", u.dep.Version)
	}

	if len(updated) == 0 {
		return nil, ErrNoFilesChanged
	}
	return updated, nil
}

func (u *Updater) updatedContent(file fetcher.File) (string, error) {
	current := u.dep.RequirementsFor(file.Name)
	newSource := current[0].Source

	content := file.Content
	for _, prev := range u.dep.PreviousRequirementsFor(file.Name) {
		log.Debug("Replacing image reference", "file", file.Name,
			"old", prev.Source.ImageString(u.dep.Name), "new", newSource.ImageString(u.dep.Name))
		content = replaceImage(content, u.dep.Name, prev.Source, newSource)
	}

	if content == file.Content {
		return "", fmt.Errorf("%w: %s", ErrContentUnchanged, file.Name)
	}
	return content, nil
}
