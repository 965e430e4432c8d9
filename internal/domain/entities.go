// Package domain defines the core business entities and interfaces for build-push-humanitec.
package domain

// RefKind classifies the git ref a run was triggered for.
type RefKind int

const (
	// RefUnrecognized is any ref that is neither a branch ref nor a tag ref.
	RefUnrecognized RefKind = iota

	// RefBranch is a ref of the form refs/heads/<name>.
	RefBranch

	// RefTag is a ref of the form refs/tags/<name>.
	RefTag
)

// String returns a human-readable name for the ref kind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	default:
		return "unrecognized"
	}
}

// Ref is a classified git ref. Name holds the branch or tag name with the
// ref prefix stripped, or the raw ref when Kind is RefUnrecognized.
type Ref struct {
	Kind RefKind
	Name string
}

// IsBranch reports whether the ref is a branch ref.
func (r Ref) IsBranch() bool { return r.Kind == RefBranch }

// IsTag reports whether the ref is a tag ref.
func (r Ref) IsTag() bool { return r.Kind == RefTag }

// RunContext is the immutable CI context of a single run.
// It is resolved once from the environment and passed explicitly to every step.
type RunContext struct {
	// CommitSHA is the exact commit being built.
	CommitSHA string

	// RawRef is the full ref string as provided by CI (e.g. refs/heads/main).
	RawRef string

	// Ref is RawRef classified as branch, tag or unrecognized.
	Ref Ref

	// RepositoryName is the repository part of owner/repo, used as the default image name.
	RepositoryName string

	// WorkspacePath is the root of the checked-out source tree.
	WorkspacePath string
}

// TagInputs holds the user options that influence image tagging.
type TagInputs struct {
	// ExplicitTag overrides the commit SHA as tag suffix when non-empty.
	ExplicitTag string

	// AutoTag derives the tag from the ref name when the run is for a tag ref.
	AutoTag bool

	// OrgID is the Humanitec organization, first segment of the image namespace.
	OrgID string

	// ImageName is the image slug, already validated as lowercase kebab case.
	ImageName string
}

// ResolvedTags are the image references computed by the tag policy.
type ResolvedTags struct {
	// Suffix is the tag part after the colon.
	Suffix string

	// LocalTag is {org}/{image}:{suffix}.
	LocalTag string

	// RemoteTag is {registry}/{org}/{image}:{suffix}.
	RemoteTag string
}

// BuildNotificationPayload is the body sent to the platform for a new build.
// Exactly one of Branch and Tags is populated.
type BuildNotificationPayload struct {
	Commit string   `json:"commit"`
	Image  string   `json:"image"`
	Branch string   `json:"branch"`
	Tags   []string `json:"tags"`
}

// RegistryCredentials authenticate against the image registry.
type RegistryCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BuildRequest describes a single image build.
type BuildRequest struct {
	// LocalTag is applied to the image at build time.
	LocalTag string

	// File is the build definition file; empty means the builder default.
	File string

	// ExtraArgs is passed verbatim to the builder.
	ExtraArgs string

	// ContextPath is the build context directory.
	ContextPath string

	// WorkDir is the directory the builder runs in.
	WorkDir string
}

// Default values for configuration inputs.
const (
	DefaultRegistryHost = "registry.humanitec.io"
	DefaultAPIHost      = "api.humanitec.io"
	DefaultContextPath  = "."
)
