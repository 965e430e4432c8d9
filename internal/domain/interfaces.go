// Package domain defines the core business entities and interfaces for build-push-humanitec.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
)

// ContextResolver derives the immutable RunContext from the CI environment.
type ContextResolver interface {
	// Resolve reads the environment once and returns a fully populated RunContext.
	// Returns ErrMissingContext, ErrWorkspaceNotCheckedOut or ErrUnrecognizedRef.
	Resolve(ctx context.Context) (*RunContext, error)
}

// WorkspaceVerifier confirms that a path holds a checked-out repository.
type WorkspaceVerifier interface {
	// Verify returns ErrWorkspaceNotCheckedOut if path is not a git working tree.
	Verify(ctx context.Context, path string) error
}

// InputValidator checks user inputs that depend on the resolved context.
type InputValidator interface {
	// Validate checks the image name slug and the build file and context paths.
	Validate(ctx context.Context, imageName, file, contextPath string) error
}

// CredentialProvider fetches registry credentials from the platform.
type CredentialProvider interface {
	// GetRegistryCredentials returns credentials for the platform registry.
	GetRegistryCredentials(ctx context.Context) (*RegistryCredentials, error)
}

// ImageBuilder builds container images.
type ImageBuilder interface {
	// Build builds an image and returns its identifier.
	// An empty identifier means the build produced no image.
	Build(ctx context.Context, req BuildRequest) (string, error)
}

// RegistryPublisher authenticates against a registry and pushes images to it.
type RegistryPublisher interface {
	// Login authenticates against host.
	Login(ctx context.Context, creds RegistryCredentials, host string) error

	// Push publishes imageID under remoteTag.
	Push(ctx context.Context, imageID, remoteTag string) error
}

// BuildNotifier registers a published build with the platform.
type BuildNotifier interface {
	// AddNewBuild registers payload as a new build of imageName.
	AddNewBuild(ctx context.Context, imageName string, payload BuildNotificationPayload) error
}

// FailureReporter emits the user-facing failure output of a run.
type FailureReporter interface {
	// ReportError emits a descriptive error line.
	ReportError(msg string) error

	// ReportFailed emits the single failure marker of the run.
	ReportFailed(msg string) error
}
