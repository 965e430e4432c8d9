// Package env provides the context resolver that reads the CI environment.
package env

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/adapters/git"
	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Environment variable names provided by GitHub Actions.
const (
	EnvWorkspace  = "GITHUB_WORKSPACE"
	EnvSHA        = "GITHUB_SHA"
	EnvRef        = "GITHUB_REF"
	EnvRepository = "GITHUB_REPOSITORY"
)

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Logger defines the logging interface for the resolver.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// Resolver implements domain.ContextResolver from environment variables.
type Resolver struct {
	lookup   LookupFunc
	verifier domain.WorkspaceVerifier
	logger   Logger
}

// NewResolver creates a Resolver reading the process environment.
func NewResolver(verifier domain.WorkspaceVerifier, log Logger) *Resolver {
	return NewResolverWithLookup(os.LookupEnv, verifier, log)
}

// NewResolverWithLookup creates a Resolver with a custom lookup function.
// This is useful for testing.
func NewResolverWithLookup(lookup LookupFunc, verifier domain.WorkspaceVerifier, log Logger) *Resolver {
	return &Resolver{
		lookup:   lookup,
		verifier: verifier,
		logger:   log,
	}
}

// Resolve reads every required variable once and returns the RunContext.
//
// Returns domain.ErrMissingContext naming every absent variable,
// domain.ErrWorkspaceNotCheckedOut if the workspace holds no repository, and
// domain.ErrUnrecognizedRef if the ref is neither a branch nor a tag ref.
func (r *Resolver) Resolve(ctx context.Context) (*domain.RunContext, error) {
	values := make(map[string]string, 4)
	var missing []string
	for _, key := range []string{EnvWorkspace, EnvSHA, EnvRef, EnvRepository} {
		v, ok := r.lookup(key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return nil, errors.WithHint(
			errors.Wrapf(domain.ErrMissingContext, "unset: %s", strings.Join(missing, ", ")),
			"This action must run inside a GitHub Actions job.",
		)
	}

	repoName := repositoryName(values[EnvRepository])
	if repoName == "" {
		return nil, errors.Wrapf(domain.ErrMissingContext, "%s=%q has no repository name",
			EnvRepository, values[EnvRepository])
	}

	ref := git.ClassifyRef(values[EnvRef])
	if ref.Kind == domain.RefUnrecognized {
		return nil, errors.WithHint(
			errors.Wrapf(domain.ErrUnrecognizedRef, "%s=%q", EnvRef, values[EnvRef]),
			"Run this action on push events for branches (refs/heads/*) or tags (refs/tags/*).",
		)
	}

	if err := r.verifier.Verify(ctx, values[EnvWorkspace]); err != nil {
		return nil, err
	}

	rc := &domain.RunContext{
		CommitSHA:      values[EnvSHA],
		RawRef:         values[EnvRef],
		Ref:            ref,
		RepositoryName: repoName,
		WorkspacePath:  values[EnvWorkspace],
	}

	r.logger.Debug(ctx, "resolved run context from environment", map[string]interface{}{
		"commit":     rc.CommitSHA,
		"ref":        rc.RawRef,
		"repository": rc.RepositoryName,
	})

	return rc, nil
}

// repositoryName returns the part of owner/repo after the last slash.
func repositoryName(slug string) string {
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		return slug[i+1:]
	}
	return slug
}
