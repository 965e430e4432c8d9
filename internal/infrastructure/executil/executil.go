// Package executil runs external commands with inherited output streams.
package executil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/cockroachdb/errors"
)

// Runner executes commands, streaming their output.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a Runner writing to the process stdout and stderr.
func NewRunner() *Runner {
	return &Runner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes name with args in dir. An empty dir runs in the current directory.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	fullCmd := FormatCommand(name, args...)
	prefix := ""
	if dir != "" {
		prefix = " in " + dir
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = os.Environ()

	_, _ = fmt.Fprintf(r.Stdout, "Running%s: %s\n", prefix, fullCmd)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errors.Wrapf(err, "command failed (exit=%d): %s", exitErr.ExitCode(), fullCmd)
		}
		if errors.Is(err, context.Canceled) {
			return errors.Newf("command canceled: %s", fullCmd)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.Newf("command timed out: %s", fullCmd)
		}
		return errors.Wrapf(err, "failed to run command: %s", fullCmd)
	}
	return nil
}

// FormatCommand returns a printable, shell-quoted command line with secret
// build arguments redacted.
func FormatCommand(name string, args ...string) string {
	return shellescape.QuoteCommand(append([]string{name}, RedactBuildArgs(args)...))
}

// RedactBuildArgs masks the values of --build-arg KEY=VALUE pairs whose key
// looks like a secret.
func RedactBuildArgs(args []string) []string {
	sus := func(k string) bool {
		k = strings.ToUpper(k)
		return strings.Contains(k, "PASSWORD") ||
			strings.Contains(k, "TOKEN") ||
			strings.Contains(k, "SECRET") ||
			k == "DOCKER_AUTH_CONFIG" ||
			k == "AWS_SECRET_ACCESS_KEY" ||
			k == "GOOGLE_APPLICATION_CREDENTIALS" ||
			k == "KUBECONFIG"
	}
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] != "--build-arg" {
			continue
		}
		kv := out[i+1]
		if eq := strings.IndexByte(kv, '='); eq > 0 {
			key, val := kv[:eq], kv[eq+1:]
			if sus(key) && val != "" {
				out[i+1] = key + "=REDACTED"
			}
		}
	}
	return out
}
