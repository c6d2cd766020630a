package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fileutil"
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
	log "github.com/lucas-albers-lz4/kubedeps/pkg/log"
	"github.com/lucas-albers-lz4/kubedeps/pkg/updater"
	"github.com/lucas-albers-lz4/kubedeps/pkg/version"
)

// UpdateFlags holds the flags of the update command.
type UpdateFlags struct {
	Dir            string
	DependencyFile string
	Name           string
	Tag            string
	Digest         string
	Registry       string
	DryRun         bool
	AllowDowngrade bool
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	flags := &UpdateFlags{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Move one image dependency to a new tag or digest",
		Long: `Rewrites the image references of one dependency in the manifests of --dir.

The updated dependency is either read from --dependency-file (YAML or JSON,
carrying both requirements and previous_requirements) or built by parsing
--dir and moving the dependency named by --name to --tag and/or --digest.
Only the matched references change; every other byte of the files is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, opts, flags)
		},
	}
	cmd.Flags().StringVar(&flags.Dir, "dir", "", "directory containing the manifests (required)")
	cmd.Flags().StringVar(&flags.DependencyFile, "dependency-file", "", "file describing the updated dependency")
	cmd.Flags().StringVar(&flags.Name, "name", "", "image path of the dependency to update")
	cmd.Flags().StringVar(&flags.Tag, "tag", "", "new tag")
	cmd.Flags().StringVar(&flags.Digest, "digest", "", "new digest")
	cmd.Flags().StringVar(&flags.Registry, "registry", "", "new registry host (default: keep the current one)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "print the updated files instead of writing them")
	cmd.Flags().BoolVar(&flags.AllowDowngrade, "allow-downgrade", false, "allow moving to a lower version")
	return cmd
}

func runUpdate(cmd *cobra.Command, opts *globalOptions, flags *UpdateFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}

	var (
		dep   dependency.Dependency
		files []fetcher.File
		err   error
	)
	if flags.DependencyFile != "" {
		if dep, err = loadDependencyFile(flags.DependencyFile); err != nil {
			return err
		}
		if err = checkManifestDir(flags.Dir); err != nil {
			return err
		}
		if files, err = fetcher.New(AppFs, flags.Dir).Files(); err != nil {
			return withExitCode(err)
		}
	} else {
		var deps []dependency.Dependency
		if deps, files, err = parseDir(cmd, opts, flags.Dir); err != nil {
			return err
		}
		if dep, err = updatedDependency(deps, flags); err != nil {
			return err
		}
	}

	if err := checkDowngrade(dep, flags.AllowDowngrade); err != nil {
		return err
	}

	updated, err := updater.New(files, dep).UpdatedFiles()
	if err != nil {
		return withExitCode(err)
	}
	return writeUpdatedFiles(cmd, updated, flags.DryRun)
}

func (f *UpdateFlags) validate() error {
	missing := func(msg string) error {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitMissingRequiredFlag, Err: errors.New(msg)}
	}
	switch {
	case f.Dir == "":
		return missing(`required flag "dir" not set`)
	case f.DependencyFile == "" && f.Name == "":
		return missing("either --dependency-file or --name must be provided")
	case f.DependencyFile != "" && f.Name != "":
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  errors.New("--dependency-file and --name are mutually exclusive"),
		}
	case f.Name != "" && f.Tag == "" && f.Digest == "":
		return missing("--name requires --tag and/or --digest")
	}

	if f.Name != "" {
		target := image.Compose(f.Registry, f.Name, f.Tag, f.Digest)
		if _, err := image.ParseStrict(target); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitImageProcessingError, Err: err}
		}
	}
	return nil
}

// loadDependencyFile reads an updated dependency from YAML or JSON.
func loadDependencyFile(path string) (dependency.Dependency, error) {
	var dep dependency.Dependency
	exists, err := fileutil.FileExists(AppFs, path)
	if err == nil && !exists {
		err = fmt.Errorf("file does not exist")
	}
	if err != nil {
		return dep, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("dependency file %s: %w", path, err),
		}
	}

	content, err := fileutil.ReadFileString(AppFs, path)
	if err != nil {
		return dep, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("dependency file %s: %w", path, err),
		}
	}
	if err := yaml.UnmarshalStrict([]byte(content), &dep); err != nil {
		return dep, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to parse dependency file %s: %w", path, err),
		}
	}
	if dep.Name == "" || len(dep.Requirements) == 0 {
		return dep, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("dependency file %s: name and requirements are required", path),
		}
	}
	if dep.PackageManager == "" {
		dep.PackageManager = dependency.PackageManager
	}
	return dep, nil
}

// updatedDependency finds flags.Name among deps and moves every one of its
// requirements to the new tag and digest. The registry is kept unless
// --registry is set. The new version is the tag, or the digest without one.
func updatedDependency(deps []dependency.Dependency, flags *UpdateFlags) (dependency.Dependency, error) {
	for _, dep := range deps {
		if dep.Name != flags.Name {
			continue
		}

		reqs := make([]dependency.Requirement, len(dep.Requirements))
		for i, req := range dep.Requirements {
			reqs[i] = req
			reqs[i].Source = dependency.Source{
				Registry: req.Source.Registry,
				Tag:      flags.Tag,
				Digest:   flags.Digest,
			}
			if flags.Registry != "" {
				reqs[i].Source.Registry = flags.Registry
			}
		}

		newVersion := flags.Tag
		if newVersion == "" {
			newVersion = flags.Digest
		}
		return dep.WithUpdate(newVersion, reqs), nil
	}

	return dependency.Dependency{}, &exitcodes.ExitCodeError{
		Code: exitcodes.ExitDependencyNotFound,
		Err:  fmt.Errorf("dependency %q not found in %s", flags.Name, flags.Dir),
	}
}

// checkDowngrade refuses to move to a lower semantic version. Versions that
// are not semantic versions are never compared.
func checkDowngrade(dep dependency.Dependency, allow bool) error {
	if allow || dep.PreviousVersion == "" {
		return nil
	}
	if !version.IsValid(dep.PreviousVersion) || !version.IsValid(dep.Version) {
		log.Debug("Skipping downgrade check for non-semantic versions",
			"image", dep.Name, "from", dep.PreviousVersion, "to", dep.Version)
		return nil
	}
	lower, err := version.IsGreater(dep.PreviousVersion, dep.Version)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
	}
	if lower {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitDowngradeRefused,
			Err: fmt.Errorf("refusing to downgrade %s from %s to %s (use --allow-downgrade)",
				dep.Name, dep.PreviousVersion, dep.Version),
		}
	}
	return nil
}

func writeUpdatedFiles(cmd *cobra.Command, files []fetcher.File, dryRun bool) error {
	out := cmd.OutOrStdout()
	for _, file := range files {
		if dryRun {
			if _, err := fmt.Fprintf(out, "--- %s\n%s", file.Name, file.Content); err != nil {
				return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
			}
			continue
		}
		if err := fileutil.WriteFileString(AppFs, file.Path(), file.Content); err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("failed to write %s: %w", file.Path(), err),
			}
		}
		fmt.Fprintf(out, "Updated %s\n", file.Path())
	}
	return nil
}
