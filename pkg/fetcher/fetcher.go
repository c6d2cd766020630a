// Package fetcher collects the manifest files of a directory.
package fetcher

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/lucas-albers-lz4/kubedeps/pkg/fileutil"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// ManifestFileRegex selects manifest files by name: a case-insensitive ".yaml" suffix.
var ManifestFileRegex = regexp.MustCompile(`(?i)\.yaml$`)

// File is a manifest as read from the source directory.
type File struct {
	// Name is the path relative to the fetch directory.
	Name string `json:"name"`
	// Directory is the fetch directory.
	Directory string `json:"directory"`
	Content   string `json:"-"`
}

// Path joins Directory and Name.
func (f File) Path() string {
	return filepath.Join(f.Directory, f.Name)
}

// RequiredFilesIn reports whether names contain at least one manifest file.
func RequiredFilesIn(names []string) bool {
	for _, name := range names {
		if ManifestFileRegex.MatchString(name) {
			return true
		}
	}
	return false
}

// RequiredFilesMessage explains what RequiredFilesIn looks for.
func RequiredFilesMessage() string {
	return "Repo must contain a Kubernetes YAML."
}

// Fetcher reads manifests from a directory on an afero file system.
type Fetcher struct {
	fsys afero.Fs
	dir  string
}

// New returns a Fetcher for dir. A nil fsys means fileutil.DefaultFS.
func New(fsys afero.Fs, dir string) *Fetcher {
	return &Fetcher{fsys: fileutil.OrDefault(fsys), dir: dir}
}

// Files returns the correctly encoded manifest files directly inside the
// directory, sorted by name. If there are none it fails with a
// *FileNotParseableError for the first badly encoded file, or with a
// *FileNotFoundError when there was nothing to read at all.
func (f *Fetcher) Files() ([]File, error) {
	entries, err := afero.ReadDir(f.fsys, f.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &FileNotFoundError{Path: filepath.Join(f.dir, "*.yaml")}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list directory %s", f.dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []File
	var badlyEncoded []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !ManifestFileRegex.MatchString(entry.Name()) {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		data, err := afero.ReadFile(f.fsys, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		if !utf8.Valid(data) {
			log.Warn("Skipping file with invalid encoding", "path", path)
			badlyEncoded = append(badlyEncoded, path)
			continue
		}

		files = append(files, File{Name: entry.Name(), Directory: f.dir, Content: string(data)})
	}

	if len(files) > 0 {
		log.Debug("Fetched manifest files", "dir", f.dir, "count", len(files))
		return files, nil
	}
	if len(badlyEncoded) > 0 {
		return nil, &FileNotParseableError{Path: badlyEncoded[0]}
	}
	return nil, &FileNotFoundError{Path: filepath.Join(f.dir, "*.yaml")}
}
