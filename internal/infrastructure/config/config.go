// Package config provides configuration loading for build-push-humanitec.
// Action inputs come from command-line flags or from the INPUT_* environment
// variables set by the GitHub Actions runner. The Humanitec token may
// alternatively be read from HashiCorp Vault.
package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Input keys. Each is both a flag name and, upper-cased with the INPUT_
// prefix, an environment variable name.
const (
	KeyHumanitecToken    = "humanitec-token"
	KeyOrganization      = "organization"
	KeyImageName         = "image-name"
	KeyContext           = "context"
	KeyDockerfile        = "dockerfile"
	KeyFile              = "file"
	KeyHumanitecRegistry = "humanitec-registry"
	KeyHumanitecAPI      = "humanitec-api"
	KeyTag               = "tag"
	KeyAutoTag           = "auto-tag"
	KeyAdditionalArgs    = "additional-docker-arguments"
)

// Environment variable names.
const (
	// EnvInputPrefix is the prefix of action input variables.
	EnvInputPrefix = "INPUT"

	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvEnvFile is an optional dotenv file loaded before inputs are read.
	EnvEnvFile = "PUBLISH_ENV_FILE"

	// EnvVaultTokenPath is the path in Vault KV where the Humanitec token is stored.
	EnvVaultTokenPath = "VAULT_HUMANITEC_TOKEN_PATH"

	// EnvVaultTokenMount is the Vault KV mount point (defaults to "secret").
	EnvVaultTokenMount = "VAULT_HUMANITEC_TOKEN_MOUNT"
)

// Default values.
const (
	DefaultLogLevel        = "info"
	DefaultLogAppName      = "build-push-humanitec"
	DefaultVaultTokenMount = "secret"

	// vaultTokenKey is the key of the token inside the Vault secret.
	vaultTokenKey = "token"
)

const tokenHint = "Did you add the token to your Github Secrets? " +
	"See https://docs.humanitec.com/connecting-your-ci#github-actions"

// Configuration errors.
var (
	// ErrTokenRequired indicates no Humanitec token was provided.
	ErrTokenRequired = errors.New("humanitec-token is required")

	// ErrOrganizationRequired indicates no organization was provided.
	ErrOrganizationRequired = errors.New("organization is required")

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = errors.New("failed to create Vault client")

	// ErrVaultSecretNotFound indicates the token was not found in Vault.
	ErrVaultSecretNotFound = errors.New("humanitec token not found in Vault")

	// ErrEnvFile indicates the dotenv file could not be loaded.
	ErrEnvFile = errors.New("failed to load env file")
)

var autoTagPattern = regexp.MustCompile(`(?i)^\s*(true|1)\s*$`)

// VaultClient defines the interface for Vault operations.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds the action inputs and logging settings of a run.
type Config struct {
	HumanitecToken            string `mapstructure:"humanitec-token"`
	Organization              string `mapstructure:"organization"`
	ImageName                 string `mapstructure:"image-name"`
	Context                   string `mapstructure:"context"`
	Dockerfile                string `mapstructure:"dockerfile"`
	File                      string `mapstructure:"file"`
	RegistryHost              string `mapstructure:"humanitec-registry"`
	APIHost                   string `mapstructure:"humanitec-api"`
	Tag                       string `mapstructure:"tag"`
	AutoTag                   string `mapstructure:"auto-tag"`
	AdditionalDockerArguments string `mapstructure:"additional-docker-arguments"`

	// LogLevel is the logging level (debug, info, error).
	LogLevel string `mapstructure:"-"`

	// LogAppName is the application name for log context.
	LogAppName string `mapstructure:"-"`
}

// AutoTagEnabled reports whether the auto-tag input is switched on.
func (c *Config) AutoTagEnabled() bool {
	return ParseAutoTag(c.AutoTag)
}

// BuildContext returns the build context input, falling back to the
// deprecated dockerfile input and then to the workspace root.
func (c *Config) BuildContext() string {
	if c.Context != "" {
		return c.Context
	}
	if c.Dockerfile != "" {
		return c.Dockerfile
	}
	return domain.DefaultContextPath
}

// ParseAutoTag interprets an auto-tag input value. Only "true" and "1"
// (case-insensitive, surrounding whitespace ignored) enable it.
func ParseAutoTag(value string) bool {
	return autoTagPattern.MatchString(value)
}

// RegisterFlags defines one flag per action input on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyHumanitecToken, "", "Humanitec API token")
	flags.String(KeyOrganization, "", "Humanitec organization ID")
	flags.String(KeyImageName, "", "Image name (defaults to the repository name)")
	flags.String(KeyContext, "", "Build context path (defaults to the workspace root)")
	flags.String(KeyDockerfile, "", "Deprecated alias of --context")
	flags.String(KeyFile, "", "Path to the Dockerfile")
	flags.String(KeyHumanitecRegistry, domain.DefaultRegistryHost, "Humanitec registry host")
	flags.String(KeyHumanitecAPI, domain.DefaultAPIHost, "Humanitec API host")
	flags.String(KeyTag, "", "Explicit image tag (defaults to the commit SHA)")
	flags.String(KeyAutoTag, "", "Use the git tag name as image tag on tag pushes (true or 1)")
	flags.String(KeyAdditionalArgs, "", "Additional arguments passed to docker build")
}

// NewViper returns a viper instance bound to flags and to the INPUT_*
// environment. An explicitly set flag takes precedence over the environment.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvInputPrefix)

	v.SetDefault(KeyHumanitecRegistry, domain.DefaultRegistryHost)
	v.SetDefault(KeyHumanitecAPI, domain.DefaultAPIHost)

	for _, key := range inputKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "failed to bind environment for %s", key)
		}
		if flag := flags.Lookup(key); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "failed to bind flag %s", key)
			}
		}
	}
	return v, nil
}

func inputKeys() []string {
	return []string{
		KeyHumanitecToken,
		KeyOrganization,
		KeyImageName,
		KeyContext,
		KeyDockerfile,
		KeyFile,
		KeyHumanitecRegistry,
		KeyHumanitecAPI,
		KeyTag,
		KeyAutoTag,
		KeyAdditionalArgs,
	}
}

// Load decodes the inputs from v and checks the required ones.
// If humanitec-token is empty and VAULT_HUMANITEC_TOKEN_PATH is set, the token
// is read from Vault using vaultClientFactory (DefaultVaultClientFactory if nil).
func Load(ctx context.Context, v *viper.Viper, vaultClientFactory VaultClientFactory) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode inputs")
	}

	cfg.HumanitecToken = strings.TrimSpace(cfg.HumanitecToken)
	cfg.Organization = strings.TrimSpace(cfg.Organization)
	if cfg.RegistryHost == "" {
		cfg.RegistryHost = domain.DefaultRegistryHost
	}
	if cfg.APIHost == "" {
		cfg.APIHost = domain.DefaultAPIHost
	}

	if cfg.HumanitecToken == "" {
		if path := os.Getenv(EnvVaultTokenPath); path != "" {
			token, err := loadTokenFromVault(ctx, vaultClientFactory, path)
			if err != nil {
				return nil, err
			}
			cfg.HumanitecToken = token
		}
	}
	if cfg.HumanitecToken == "" {
		return nil, errors.WithHint(ErrTokenRequired, tokenHint)
	}
	if cfg.Organization == "" {
		return nil, errors.WithHint(ErrOrganizationRequired,
			"Set the organization input to your Humanitec organization ID.")
	}

	cfg.LogLevel = os.Getenv(EnvLogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogAppName = os.Getenv(EnvLogAppName)
	if cfg.LogAppName == "" {
		cfg.LogAppName = DefaultLogAppName
	}

	return &cfg, nil
}

// loadTokenFromVault reads the Humanitec token from Vault KV v2.
func loadTokenFromVault(ctx context.Context, vaultClientFactory VaultClientFactory, path string) (string, error) {
	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}

	client, err := vaultClientFactory(ctx)
	if err != nil {
		return "", err
	}

	mount := os.Getenv(EnvVaultTokenMount)
	if mount == "" {
		mount = DefaultVaultTokenMount
	}

	secretData, err := client.GetKVSecret(ctx, path, mount)
	if err != nil {
		return "", fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, path, err)
	}

	token, ok := secretData[vaultTokenKey].(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", errors.Wrapf(ErrVaultSecretNotFound, "key %q missing at path %s", vaultTokenKey, path)
	}
	return strings.TrimSpace(token), nil
}

// LoadEnvFile loads the dotenv file named by PUBLISH_ENV_FILE, if set.
// Variables already present in the environment are not overridden.
func LoadEnvFile() error {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
	}
	return nil
}
