// Package main implements the kubedeps command-line interface.
//
// kubedeps finds the container images referenced by the Kubernetes manifests
// of a directory and moves them to new tags or digests in place.
//
// The commands are:
//   - parse: list the image dependencies of a directory
//   - update: rewrite the references of one dependency
//   - version: print the binary version
//
// Global settings come from flags, KUBEDEPS_* environment variables or
// $HOME/.kubedeps.yaml, in that order of precedence.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/kubedeps/pkg/credentials"
	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
	log "github.com/lucas-albers-lz4/kubedeps/pkg/log"
	"github.com/lucas-albers-lz4/kubedeps/pkg/registry"
	"github.com/lucas-albers-lz4/kubedeps/pkg/resolver"
)

// Keys shared by persistent flags, environment variables and the config file.
const (
	keyDebug              = "debug"
	keyLogLevel           = "log-level"
	keyCredentialsFile    = "credentials-file"
	keyRequestTimeout     = "request-timeout"
	keyScanTimeout        = "scan-timeout"
	keyConcurrency        = "concurrency"
	keyInsecureRegistries = "insecure-registries"

	envPrefix      = "KUBEDEPS"
	configBaseName = ".kubedeps"
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a function to restore it.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// globalOptions holds what every subcommand reads from the root command.
type globalOptions struct {
	cfgFile string
	v       *viper.Viper
}

// settings are the resolved global options of one run.
type settings struct {
	CredentialsFile    string
	RequestTimeout     time.Duration
	ScanTimeout        time.Duration
	Concurrency        int
	InsecureRegistries []string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "kubedeps",
		Short: "Find and update container image references in Kubernetes manifests",
		Long: `kubedeps reads the Kubernetes YAML manifests of a directory, reports every
container image they reference as a dependency, and rewrites those references
to new tags or digests without touching the rest of the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := opts.readConfig(); err != nil {
				return err
			}
			opts.setupLogging()
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("a subcommand is required")
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.kubedeps.yaml)")
	flags.Bool(keyDebug, false, "enable debug logging")
	flags.String(keyLogLevel, "info", "set log level (debug, info, warn, error)")
	flags.String(keyCredentialsFile, "", "YAML file with registry credentials")
	flags.Duration(keyRequestTimeout, registry.DefaultRequestTimeout, "timeout for a single registry request")
	flags.Duration(keyScanTimeout, resolver.DefaultScanTimeout, "time budget for resolving one digest to a tag")
	flags.Int(keyConcurrency, dependency.DefaultConcurrency, "number of files resolved in parallel")
	flags.StringSlice(keyInsecureRegistries, nil, "registry hosts reached over plain HTTP")
	cobra.CheckErr(opts.v.BindPFlags(flags))

	cmd.AddCommand(newParseCmd(opts))
	cmd.AddCommand(newUpdateCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

// readConfig wires environment variables and the optional config file into viper.
// A config file named with --config must exist; the default one may not.
func (o *globalOptions) readConfig() error {
	o.v.SetFs(AppFs)
	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Debug("No home directory, skipping default config file", "error", err)
			return nil
		}
		o.v.SetConfigName(configBaseName)
		o.v.SetConfigType("yaml")
		o.v.AddConfigPath(home)
	}

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to read config file: %w", err),
		}
	}
	log.Debug("Using config file", "path", o.v.ConfigFileUsed())
	return nil
}

func (o *globalOptions) setupLogging() {
	level := log.LevelInfo
	if o.v.GetBool(keyDebug) {
		level = log.LevelDebug
	} else if levelStr := o.v.GetString(keyLogLevel); levelStr != "" {
		parsed, err := log.ParseLevel(levelStr)
		if err != nil {
			log.Warn("Invalid log level specified, using default", "value", levelStr, "default", level.String())
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
}

func (o *globalOptions) settings() settings {
	var insecure []string
	for _, host := range o.v.GetStringSlice(keyInsecureRegistries) {
		for _, h := range strings.Split(host, ",") {
			if h = strings.TrimSpace(h); h != "" {
				insecure = append(insecure, h)
			}
		}
	}
	return settings{
		CredentialsFile:    o.v.GetString(keyCredentialsFile),
		RequestTimeout:     o.v.GetDuration(keyRequestTimeout),
		ScanTimeout:        o.v.GetDuration(keyScanTimeout),
		Concurrency:        o.v.GetInt(keyConcurrency),
		InsecureRegistries: insecure,
	}
}

// newParser builds the registry stack for one run: credentials, a client
// factory, the digest resolver and the dependency parser on top of it.
func (o *globalOptions) newParser() (*dependency.Parser, error) {
	s := o.settings()

	finder := credentials.NewFinder(nil)
	if s.CredentialsFile != "" {
		creds, err := credentials.LoadFile(AppFs, s.CredentialsFile)
		if err != nil {
			return nil, &exitcodes.ExitCodeError{Code: exitcodes.ExitCredentialsError, Err: err}
		}
		finder = credentials.NewFinder(creds)
		log.Debug("Loaded registry credentials", "path", s.CredentialsFile, "count", finder.Len())
	}

	factory := registry.NewFactory(registry.FactoryConfig{
		Credentials:        finder,
		InsecureRegistries: s.InsecureRegistries,
		RequestTimeout:     s.RequestTimeout,
	})
	return dependency.NewParser(resolver.New(factory, s.ScanTimeout), s.Concurrency), nil
}

// executeCommand is a helper for testing Cobra commands
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}
