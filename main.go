// Package main is the entry point for the build-push-humanitec CLI application.
// build-push-humanitec builds a container image in CI, pushes it to the
// Humanitec registry and registers the build with the Humanitec platform.
package main

import (
	"context"
	"os"
	"sync"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"
	"github.com/spf13/pflag"

	"github.com/MyCarrier-DevOps/build-push-humanitec/cmd"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/docker"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/env"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/git"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/humanitec"
	logadapter "github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/output"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/infrastructure/executil"
)

func main() {
	// The logger is created on first use so that --verbose and the env file
	// can set LOG_LEVEL before zap reads it.
	rootLogger := sync.OnceValue(func() *logadapter.ZapAdapter {
		return logadapter.NewZapAdapter(logger.NewZapLoggerFromConfig())
	})

	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func() cmd.Logger {
			return rootLogger().ForComponent("publisher")
		},

		EnvFileLoader: config.LoadEnvFile,

		ConfigLoader: func(ctx context.Context, flags *pflag.FlagSet) (*cmd.AppConfig, error) {
			v, err := config.NewViper(flags)
			if err != nil {
				return nil, err
			}
			cfg, err := config.Load(ctx, v, nil)
			if err != nil {
				return nil, err
			}
			return toAppConfig(cfg), nil
		},

		ResolverFactory: func(_ cmd.Logger) domain.ContextResolver {
			log := rootLogger().ForComponent("context")
			return env.NewResolver(git.NewWorkspaceVerifier(log), log)
		},

		ValidatorFactory: func() domain.InputValidator {
			return config.NewValidator()
		},

		HumanitecFactory: func(cfg *cmd.AppConfig, _ cmd.Logger) (cmd.HumanitecClient, error) {
			return humanitec.NewClient(cfg.Token, cfg.Organization, cfg.APIHost)
		},

		BuilderFactory: func(_ cmd.Logger) domain.ImageBuilder {
			return docker.NewBuilder(executil.NewRunner(), rootLogger().ForComponent("docker"))
		},

		RegistryFactory: func(_ cmd.Logger) (domain.RegistryPublisher, error) {
			return docker.NewRegistry(rootLogger().ForComponent("docker"))
		},

		ReporterFactory: func() domain.FailureReporter {
			return output.NewWriter()
		},

		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

// toAppConfig maps the loaded inputs onto the command's configuration.
func toAppConfig(cfg *config.Config) *cmd.AppConfig {
	return &cmd.AppConfig{
		Token:          cfg.HumanitecToken,
		Organization:   cfg.Organization,
		ImageName:      cfg.ImageName,
		ContextPath:    cfg.BuildContext(),
		File:           cfg.File,
		RegistryHost:   cfg.RegistryHost,
		APIHost:        cfg.APIHost,
		Tag:            cfg.Tag,
		AutoTag:        cfg.AutoTagEnabled(),
		AdditionalArgs: cfg.AdditionalDockerArguments,
		LogLevel:       cfg.LogLevel,
		LogAppName:     cfg.LogAppName,
	}
}
