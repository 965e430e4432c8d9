package config

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// imageNamePattern matches lowercase kebab-case slugs of at least two characters.
var imageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// Validator implements domain.InputValidator against a filesystem.
type Validator struct {
	fs afero.Fs
}

// NewValidator creates a Validator that checks paths on the OS filesystem.
func NewValidator() *Validator {
	return NewValidatorWithFs(afero.NewOsFs())
}

// NewValidatorWithFs creates a Validator backed by fs.
// This is useful for testing with afero.NewMemMapFs.
func NewValidatorWithFs(fs afero.Fs) *Validator {
	return &Validator{fs: fs}
}

// Validate checks the image name, then the build file (if set), then the
// build context. The first failing check is returned.
func (v *Validator) Validate(_ context.Context, imageName, file, contextPath string) error {
	if !ValidImageName(imageName) {
		return errors.WithHint(
			errors.Wrapf(domain.ErrInvalidImageName, "%q", imageName),
			`image-name must be all lowercase letters, numbers and the "-" symbol. It cannot start or end with "-".`,
		)
	}

	if file != "" {
		exists, err := afero.Exists(v.fs, file)
		if err != nil {
			return errors.Wrapf(err, "failed to check build file %s", file)
		}
		if !exists {
			return errors.WithHint(
				errors.Wrapf(domain.ErrBuildFileNotFound, "%s", file),
				"Check the file input. Relative paths are resolved against the repository root.",
			)
		}
	}

	exists, err := afero.Exists(v.fs, contextPath)
	if err != nil {
		return errors.Wrapf(err, "failed to check build context %s", contextPath)
	}
	if !exists {
		return errors.WithHint(
			errors.Wrapf(domain.ErrContextNotFound, "%s", contextPath),
			"Check the context input. Relative paths are resolved against the repository root.",
		)
	}
	return nil
}

// ValidImageName reports whether name is a valid image name slug.
func ValidImageName(name string) bool {
	return imageNamePattern.MatchString(name)
}
