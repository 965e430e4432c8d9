package usecases

import (
	"github.com/cockroachdb/errors"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Failure is the terminal Failed state of a publish run.
// It matches its kind's sentinel (e.g. domain.ErrBuild) and its cause with errors.Is.
type Failure struct {
	// State is the last state the run reached before failing.
	State State

	// Kind classifies the failure and selects the exit code.
	Kind domain.Kind

	// Message is the user-facing summary of the failure.
	Message string

	// Hints are remediation hints, shown before the failure marker.
	Hints []string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the message followed by the cause.
func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Message
	}
	return f.Message + ": " + f.Cause.Error()
}

// Unwrap exposes both the kind sentinel and the cause.
func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Kind.Sentinel()}
	}
	return []error{f.Kind.Sentinel(), f.Cause}
}

// ExitCode returns the process exit code for the failure.
func (f *Failure) ExitCode() int {
	return f.Kind.ExitCode()
}

// NewFailure builds a Failure, merging hints attached to cause with the given ones.
func NewFailure(state State, kind domain.Kind, msg string, cause error, hints ...string) *Failure {
	var all []string
	seen := map[string]struct{}{}
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		all = append(all, h)
	}
	if cause != nil {
		for _, h := range errors.GetAllHints(cause) {
			add(h)
		}
	}
	for _, h := range hints {
		add(h)
	}

	return &Failure{
		State:   state,
		Kind:    kind,
		Message: msg,
		Hints:   all,
		Cause:   cause,
	}
}

// AsFailure converts any error into a Failure. Errors that are not already a
// Failure become UnexpectedError.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(StateFailed, domain.KindUnexpected, "Action failed", err)
}
