package executil

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "secret build arg is redacted",
			args: []string{"build", "--build-arg", "NPM_TOKEN=abc", "."},
			want: []string{"build", "--build-arg", "NPM_TOKEN=REDACTED", "."},
		},
		{
			name: "plain build arg is kept",
			args: []string{"--build-arg", "VERSION=1.2.3"},
			want: []string{"--build-arg", "VERSION=1.2.3"},
		},
		{
			name: "empty secret value is kept",
			args: []string{"--build-arg", "DB_PASSWORD="},
			want: []string{"--build-arg", "DB_PASSWORD="},
		},
		{
			name: "trailing flag without value",
			args: []string{"build", "--build-arg"},
			want: []string{"build", "--build-arg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := append([]string(nil), tt.args...)
			got := RedactBuildArgs(tt.args)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, orig, tt.args, "input must not be modified")
		})
	}
}

func TestFormatCommand(t *testing.T) {
	got := FormatCommand("docker", "build", "-t", "org/app:v1", "--label", "a b", ".")
	assert.Equal(t, "docker build -t org/app:v1 --label 'a b' .", got)
}

func TestRunner_Run_Success(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), t.TempDir(), "true")

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Running in ")
}

func TestRunner_Run_Failure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), "", "false")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit=1")
}

func TestRunner_Run_MissingBinary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), "", "definitely-not-a-real-binary-xyz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run command")
}
