// Package docker provides adapters for building images with the docker CLI
// and publishing them through the Docker Engine API.
package docker

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/shell"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Logger defines the logging interface for the docker adapters.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// CommandRunner runs an external command in a directory.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// Builder implements domain.ImageBuilder by invoking `docker build`.
type Builder struct {
	runner CommandRunner
	binary string
	logger Logger
}

// NewBuilder creates a Builder that runs the docker binary found in PATH.
func NewBuilder(runner CommandRunner, log Logger) *Builder {
	return &Builder{runner: runner, binary: "docker", logger: log}
}

// Build runs docker build for req and returns the built image ID.
// req.ExtraArgs is split with shell quoting rules and inserted before the
// build context. An empty ID is returned if the build wrote no image ID.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest) (string, error) {
	extra, err := shell.Fields(req.ExtraArgs, nil)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrap(err, "failed to parse additional docker arguments"),
			"Check the quoting of additional-docker-arguments.",
		)
	}

	iidFile, err := os.CreateTemp("", "build-push-humanitec-iid-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create image id file")
	}
	iidPath := iidFile.Name()
	_ = iidFile.Close()
	defer os.Remove(iidPath)

	contextPath := req.ContextPath
	if contextPath == "" {
		contextPath = domain.DefaultContextPath
	}

	args := []string{"build", "--iidfile", iidPath, "-t", req.LocalTag}
	if req.File != "" {
		args = append(args, "-f", req.File)
	}
	args = append(args, extra...)
	args = append(args, contextPath)

	b.logger.Info(ctx, "building image", map[string]interface{}{
		"tag":     req.LocalTag,
		"file":    req.File,
		"context": contextPath,
	})

	if err := b.runner.Run(ctx, req.WorkDir, b.binary, args...); err != nil {
		return "", err
	}

	data, err := os.ReadFile(iidPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read image id file")
	}
	imageID := strings.TrimSpace(string(data))

	b.logger.Debug(ctx, "read built image id", map[string]interface{}{
		"image_id": imageID,
	})
	return imageID, nil
}
