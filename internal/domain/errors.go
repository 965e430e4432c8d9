package domain

import "errors"

// Context resolution errors.
var (
	// ErrMissingContext indicates required CI environment values are absent.
	ErrMissingContext = errors.New("required CI context is missing")

	// ErrWorkspaceNotCheckedOut indicates the workspace is not a git working tree.
	ErrWorkspaceNotCheckedOut = errors.New("no checked-out repository found in workspace")

	// ErrUnrecognizedRef indicates the ref is neither a branch ref nor a tag ref.
	ErrUnrecognizedRef = errors.New("ref is neither a branch nor a tag ref")
)

// Input validation errors.
var (
	// ErrInvalidImageName indicates the image name is not a lowercase kebab-case slug.
	ErrInvalidImageName = errors.New("image name is not valid")

	// ErrBuildFileNotFound indicates the build definition file does not exist.
	ErrBuildFileNotFound = errors.New("build file not found")

	// ErrContextNotFound indicates the build context path does not exist.
	ErrContextNotFound = errors.New("build context path does not exist")
)

// Failure kinds. Every terminal failure of a run matches exactly one of these
// with errors.Is.
var (
	ErrEnvironment = errors.New("environment error")
	ErrValidation  = errors.New("validation error")
	ErrCredentials = errors.New("credential error")
	ErrAuth        = errors.New("registry authentication error")
	ErrBuild       = errors.New("image build error")
	ErrPush        = errors.New("image push error")
	ErrNotify      = errors.New("build notification error")
	ErrUnexpected  = errors.New("unexpected error")
)

// Kind names a class of terminal failure.
type Kind string

// Failure kinds.
const (
	KindEnvironment Kind = "EnvironmentError"
	KindValidation  Kind = "ValidationError"
	KindCredentials Kind = "CredentialError"
	KindAuth        Kind = "AuthError"
	KindBuild       Kind = "BuildError"
	KindPush        Kind = "PushError"
	KindNotify      Kind = "NotifyError"
	KindUnexpected  Kind = "UnexpectedError"
)

// Sentinel returns the sentinel error for the kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindEnvironment:
		return ErrEnvironment
	case KindValidation:
		return ErrValidation
	case KindCredentials:
		return ErrCredentials
	case KindAuth:
		return ErrAuth
	case KindBuild:
		return ErrBuild
	case KindPush:
		return ErrPush
	case KindNotify:
		return ErrNotify
	default:
		return ErrUnexpected
	}
}

// ExitCode returns the distinct process exit code of the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindEnvironment:
		return 2
	case KindValidation:
		return 3
	case KindCredentials:
		return 4
	case KindAuth:
		return 5
	case KindBuild:
		return 6
	case KindPush:
		return 7
	case KindNotify:
		return 8
	default:
		return 1
	}
}
