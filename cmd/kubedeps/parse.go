package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fileutil"
	log "github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// Output formats of the parse command.
const (
	outputFormatYAML = "yaml"
	outputFormatJSON = "json"
)

// ParseFlags holds the flags of the parse command.
type ParseFlags struct {
	Dir          string
	OutputFormat string
	OutputFile   string
}

func newParseCmd(opts *globalOptions) *cobra.Command {
	flags := &ParseFlags{}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "List the image dependencies of a manifest directory",
		Long: `Reads every YAML file directly inside --dir, collects the values of all
"image" keys and prints one dependency per image path. References pinned only
by digest are resolved to the tag they were published under.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParse(cmd, opts, flags)
		},
	}
	cmd.Flags().StringVar(&flags.Dir, "dir", "", "directory containing the manifests (required)")
	cmd.Flags().StringVar(&flags.OutputFormat, "output-format", outputFormatYAML, "output format (yaml or json)")
	cmd.Flags().StringVar(&flags.OutputFile, "output-file", "", "write output to file instead of stdout")
	return cmd
}

func runParse(cmd *cobra.Command, opts *globalOptions, flags *ParseFlags) error {
	if flags.Dir == "" {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitMissingRequiredFlag,
			Err:  fmt.Errorf("required flag \"dir\" not set"),
		}
	}
	format := strings.ToLower(flags.OutputFormat)
	if format != outputFormatYAML && format != outputFormatJSON {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("unsupported output format %q (use yaml or json)", flags.OutputFormat),
		}
	}

	deps, _, err := parseDir(cmd, opts, flags.Dir)
	if err != nil {
		return err
	}

	output, err := marshalDependencies(deps, format)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitInternalError, Err: err}
	}

	if flags.OutputFile != "" {
		outPath, err := fileutil.GetAbsPath(flags.OutputFile)
		if err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitInputConfigurationError, Err: err}
		}
		if err := afero.WriteFile(AppFs, outPath, output, fileutil.ReadWriteUserPermission); err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("failed to write output file %s: %w", outPath, err),
			}
		}
		log.Info("Dependencies written", "path", outPath, "count", len(deps))
		return nil
	}

	if _, err := cmd.OutOrStdout().Write(output); err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
	}
	return nil
}

// parseDir fetches the manifests of dir and parses them. It returns the
// fetched files too so callers can update them.
func parseDir(cmd *cobra.Command, opts *globalOptions, dir string) ([]dependency.Dependency, []fetcher.File, error) {
	if err := checkManifestDir(dir); err != nil {
		return nil, nil, err
	}

	files, err := fetcher.New(AppFs, dir).Files()
	if err != nil {
		return nil, nil, withExitCode(err)
	}

	parser, err := opts.newParser()
	if err != nil {
		return nil, nil, err
	}

	deps, err := parser.Parse(cmd.Context(), files)
	if err != nil {
		return nil, nil, withExitCode(err)
	}
	log.Debug("Parsed manifest directory", "dir", dir, "files", len(files), "dependencies", len(deps))
	return deps, files, nil
}

// checkManifestDir fails early when dir is missing or holds no manifest file names.
func checkManifestDir(dir string) error {
	exists, err := fileutil.DirExists(AppFs, dir)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
	}
	if !exists {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitManifestNotFound,
			Err:  fmt.Errorf("directory %s does not exist", dir),
		}
	}

	entries, err := afero.ReadDir(AppFs, dir)
	if err != nil {
		return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: fmt.Errorf("failed to list %s: %w", dir, err)}
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if !fetcher.RequiredFilesIn(names) {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitManifestNotFound,
			Err:  fmt.Errorf("%s: %s", dir, fetcher.RequiredFilesMessage()),
		}
	}
	return nil
}

func marshalDependencies(deps []dependency.Dependency, format string) ([]byte, error) {
	if deps == nil {
		deps = []dependency.Dependency{}
	}
	if format == outputFormatJSON {
		out, err := json.MarshalIndent(deps, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal dependencies to JSON: %w", err)
		}
		return append(out, '\n'), nil
	}
	out, err := yaml.Marshal(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dependencies to YAML: %w", err)
	}
	return out, nil
}
