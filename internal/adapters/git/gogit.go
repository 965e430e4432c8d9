// Package git provides adapters for interacting with local Git repositories.
// This package implements domain.WorkspaceVerifier using go-git/v5 and
// classifies CI refs using go-git's reference naming rules.
package git

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Ref prefixes used by CI to name branches and tags.
const (
	branchRefPrefix = "refs/heads/"
	tagRefPrefix    = "refs/tags/"
)

// WorkspaceVerifier implements domain.WorkspaceVerifier using go-git/v5.
type WorkspaceVerifier struct {
	logger Logger
}

// NewWorkspaceVerifier creates a new WorkspaceVerifier.
func NewWorkspaceVerifier(log Logger) *WorkspaceVerifier {
	return &WorkspaceVerifier{logger: log}
}

// Verify confirms that path is the root of a checked-out repository.
// The .git directory must live directly in path; parent directories are not searched.
// Returns domain.ErrWorkspaceNotCheckedOut otherwise.
func (v *WorkspaceVerifier) Verify(ctx context.Context, path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		v.logger.Warn(ctx, "workspace is not a git repository", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return errors.WithHint(
			errors.Wrapf(domain.ErrWorkspaceNotCheckedOut, "%s", path),
			"It does not look like anything was checked out. Did you run a checkout step before this step?",
		)
	}

	fields := map[string]interface{}{"path": path}
	if head, headErr := repo.Head(); headErr == nil {
		fields["head_sha"] = head.Hash().String()
		fields["head_ref"] = head.Name().String()
	}
	v.logger.Debug(ctx, "verified workspace checkout", fields)

	return nil
}

// ClassifyRef classifies a full ref as a branch ref, a tag ref or neither.
// The returned name is the part after refs/heads/ or refs/tags/; a ref with
// an empty name is unrecognized.
func ClassifyRef(ref string) domain.Ref {
	name := plumbing.ReferenceName(strings.TrimSpace(ref))

	switch {
	case name.IsBranch():
		if short := strings.TrimPrefix(name.String(), branchRefPrefix); short != "" {
			return domain.Ref{Kind: domain.RefBranch, Name: short}
		}
	case name.IsTag():
		if short := strings.TrimPrefix(name.String(), tagRefPrefix); short != "" {
			return domain.Ref{Kind: domain.RefTag, Name: short}
		}
	}

	return domain.Ref{Kind: domain.RefUnrecognized, Name: ref}
}
