// Package cmd provides the CLI commands for build-push-humanitec.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/usecases"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// HumanitecClient fetches registry credentials from and registers builds with Humanitec.
type HumanitecClient interface {
	domain.CredentialProvider
	domain.BuildNotifier
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func() Logger

	// EnvFileLoader loads local environment overrides before anything else runs. Optional.
	EnvFileLoader func() error

	// ConfigLoader loads the action inputs from the parsed flags and the environment.
	ConfigLoader func(ctx context.Context, flags *pflag.FlagSet) (*AppConfig, error)

	// ResolverFactory creates the CI context resolver.
	ResolverFactory func(log Logger) domain.ContextResolver

	// ValidatorFactory creates the input validator.
	ValidatorFactory func() domain.InputValidator

	// HumanitecFactory creates the Humanitec API client.
	HumanitecFactory func(cfg *AppConfig, log Logger) (HumanitecClient, error)

	// BuilderFactory creates the image builder.
	BuilderFactory func(log Logger) domain.ImageBuilder

	// RegistryFactory creates the registry publisher.
	RegistryFactory func(log Logger) (domain.RegistryPublisher, error)

	// ReporterFactory creates the failure reporter.
	ReporterFactory func() domain.FailureReporter

	// Stderr is the writer for warnings that cannot go through the logger.
	Stderr io.Writer
}

// AppConfig holds the action inputs loaded by ConfigLoader.
type AppConfig struct {
	Token          string
	Organization   string
	ImageName      string
	ContextPath    string
	File           string
	RegistryHost   string
	APIHost        string
	Tag            string
	AutoTag        bool
	AdditionalArgs string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for build-push-humanitec.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "build-push-humanitec",
		Short: "Build a container image, push it to Humanitec and register the build",
		Long: `build-push-humanitec builds a Docker image from the checked-out repository,
pushes it to the Humanitec registry of your organization and notifies
Humanitec about the new build.

The CI context (commit, ref, repository, workspace) is read from the
GITHUB_* environment. Every flag can also be set through the matching
INPUT_<NAME> environment variable, as GitHub Actions does for action inputs.

Image tags default to the commit SHA. --tag overrides it, and with
--auto-tag=true a run for a git tag uses the tag name instead.

Examples:
  # Build and publish from a GitHub Actions step
  build-push-humanitec --organization my-org --humanitec-token "$TOKEN"

  # Use a Dockerfile outside the build context
  build-push-humanitec --organization my-org --file build/Dockerfile --context src

  # Enable verbose logging
  build-push-humanitec -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, deps, verbose)
		},
	}

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runPublish executes one publish run with injected dependencies.
// Every failure is reported through the FailureReporter and returned as a
// *usecases.Failure, including panics raised while wiring the run.
func runPublish(cmd *cobra.Command, deps *Dependencies, verbose bool) (err error) {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	reporter := deps.ReporterFactory()

	defer func() {
		if rec := recover(); rec != nil {
			err = report(reporter, stderr, usecases.NewFailure(usecases.StateStart, domain.KindUnexpected,
				"Action failed", errors.Newf("panic: %v", rec)))
		}
	}()

	// Loaded first so that LOG_LEVEL from the file reaches the logger.
	if deps.EnvFileLoader != nil {
		if err := deps.EnvFileLoader(); err != nil {
			return report(reporter, stderr,
				usecases.NewFailure(usecases.StateStart, domain.KindValidation, "Unable to load env file", err))
		}
	}

	// Set log level based on verbose flag (best-effort)
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	log := deps.LoggerFactory()

	cfg, err := deps.ConfigLoader(ctx, cmd.Flags())
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return report(reporter, stderr,
			usecases.NewFailure(usecases.StateStart, domain.KindValidation, "Invalid action inputs", err))
	}

	log.Info(ctx, "starting build-push-humanitec", map[string]interface{}{
		"organization": cfg.Organization,
		"registry":     cfg.RegistryHost,
		"api":          cfg.APIHost,
		"auto_tag":     cfg.AutoTag,
		"verbose":      verbose,
	})

	humanitec, err := deps.HumanitecFactory(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to create Humanitec client", err, nil)
		return report(reporter, stderr,
			usecases.NewFailure(usecases.StateStart, domain.KindValidation, "Invalid action inputs", err))
	}

	registry, err := deps.RegistryFactory(log)
	if err != nil {
		log.Error(ctx, "failed to create registry client", err, nil)
		return report(reporter, stderr,
			usecases.NewFailure(usecases.StateStart, domain.KindUnexpected, "Unable to connect to the Docker daemon", err))
	}

	publisher := usecases.NewPublisher(
		deps.ResolverFactory(log),
		deps.ValidatorFactory(),
		humanitec,
		deps.BuilderFactory(log),
		registry,
		humanitec,
		log,
	)

	result, err := publisher.Run(ctx, usecases.Request{
		OrgID:        cfg.Organization,
		ImageName:    cfg.ImageName,
		ExplicitTag:  cfg.Tag,
		AutoTag:      cfg.AutoTag,
		File:         cfg.File,
		ContextPath:  cfg.ContextPath,
		ExtraArgs:    cfg.AdditionalArgs,
		RegistryHost: cfg.RegistryHost,
	})
	if err != nil {
		return report(reporter, stderr, usecases.AsFailure(err))
	}

	log.Info(ctx, "build published", map[string]interface{}{
		"image":    result.ImageName,
		"image_id": result.ImageID,
		"remote":   result.Tags.RemoteTag,
		"commit":   result.Payload.Commit,
	})

	return nil
}

// report emits the hints of f followed by its failure marker and returns f.
func report(reporter domain.FailureReporter, stderr io.Writer, f *usecases.Failure) error {
	for _, hint := range f.Hints {
		if err := reporter.ReportError(hint); err != nil {
			writeWarningf(stderr, "warning: could not report error: %v\n", err)
		}
	}
	if err := reporter.ReportFailed(f.Error()); err != nil {
		writeWarningf(stderr, "warning: could not report failure: %v\n", err)
	}
	return f
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var f *usecases.Failure
	if errors.As(err, &f) {
		return f.ExitCode()
	}
	return domain.KindUnexpected.ExitCode()
}

// Run executes the root command with args and returns the process exit code.
// Errors that never reached runPublish, such as usage errors, are reported
// here so that every failed run emits a failure marker.
func Run(deps *Dependencies, args []string) int {
	rootCmd := NewRootCmdWithDeps(deps)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var f *usecases.Failure
	if !errors.As(err, &f) {
		reportUsageError(deps, err)
	}
	return ExitCode(err)
}

// reportUsageError reports err as a failure marker, falling back to stderr
// when no reporter is configured.
func reportUsageError(deps *Dependencies, err error) {
	var stderr io.Writer = os.Stderr
	if deps != nil && deps.Stderr != nil {
		stderr = deps.Stderr
	}
	if deps == nil || deps.ReporterFactory == nil {
		writeWarningf(stderr, "Error: %v\n", err)
		return
	}
	if rerr := deps.ReporterFactory().ReportFailed(err.Error()); rerr != nil {
		writeWarningf(stderr, "Error: %v\n", err)
	}
}

// Execute runs the root command and exits with its exit code.
func Execute() {
	os.Exit(Run(defaultDeps, os.Args[1:]))
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		// Intentionally ignored: no recovery action for failed stderr writes
		return
	}
}
