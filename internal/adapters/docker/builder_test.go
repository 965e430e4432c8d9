package docker

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// mockLogger implements Logger for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})  {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}

// mockRunner records the command and writes imageID into the --iidfile path.
type mockRunner struct {
	imageID string
	err     error

	dir  string
	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, dir, name string, args ...string) error {
	m.dir, m.name, m.args = dir, name, args
	if m.err != nil {
		return m.err
	}
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--iidfile" && m.imageID != "" {
			if err := os.WriteFile(args[i+1], []byte(m.imageID+"\n"), 0o600); err != nil {
				return err
			}
		}
	}
	return nil
}

// argsWithoutIIDFile drops the temporary --iidfile value so args can be compared.
func argsWithoutIIDFile(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--iidfile" {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		req      domain.BuildRequest
		wantArgs []string
	}{
		{
			name: "minimal build",
			req: domain.BuildRequest{
				LocalTag:    "org/app:abc123",
				ContextPath: "/ws",
				WorkDir:     "/ws",
			},
			wantArgs: []string{"build", "-t", "org/app:abc123", "/ws"},
		},
		{
			name: "with file and extra args",
			req: domain.BuildRequest{
				LocalTag:    "org/app:v1",
				File:        "/ws/build/Dockerfile",
				ExtraArgs:   `--build-arg VERSION=1 --label "team=platform ops"`,
				ContextPath: "/ws/src",
				WorkDir:     "/ws",
			},
			wantArgs: []string{
				"build", "-t", "org/app:v1", "-f", "/ws/build/Dockerfile",
				"--build-arg", "VERSION=1", "--label", "team=platform ops", "/ws/src",
			},
		},
		{
			name: "empty context defaults to current directory",
			req: domain.BuildRequest{
				LocalTag: "org/app:v1",
				WorkDir:  "/ws",
			},
			wantArgs: []string{"build", "-t", "org/app:v1", "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{imageID: "sha256:deadbeef"}
			b := NewBuilder(runner, &mockLogger{})

			id, err := b.Build(context.Background(), tt.req)

			require.NoError(t, err)
			assert.Equal(t, "sha256:deadbeef", id)
			assert.Equal(t, "docker", runner.name)
			assert.Equal(t, tt.req.WorkDir, runner.dir)
			assert.Equal(t, tt.wantArgs, argsWithoutIIDFile(runner.args))
		})
	}
}

func TestBuilder_Build_NoImageID(t *testing.T) {
	runner := &mockRunner{}
	b := NewBuilder(runner, &mockLogger{})

	id, err := b.Build(context.Background(), domain.BuildRequest{LocalTag: "org/app:v1"})

	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestBuilder_Build_CommandFails(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1")}
	b := NewBuilder(runner, &mockLogger{})

	id, err := b.Build(context.Background(), domain.BuildRequest{LocalTag: "org/app:v1"})

	require.Error(t, err)
	assert.Empty(t, id)
}

func TestBuilder_Build_InvalidExtraArgs(t *testing.T) {
	runner := &mockRunner{imageID: "sha256:deadbeef"}
	b := NewBuilder(runner, &mockLogger{})

	_, err := b.Build(context.Background(), domain.BuildRequest{
		LocalTag:  "org/app:v1",
		ExtraArgs: `--label "unterminated`,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "additional docker arguments")
	assert.Empty(t, runner.name, "docker must not run with unparsable arguments")
}

func TestBuilder_Build_RemovesIIDFile(t *testing.T) {
	runner := &mockRunner{imageID: "sha256:deadbeef"}
	b := NewBuilder(runner, &mockLogger{})

	_, err := b.Build(context.Background(), domain.BuildRequest{LocalTag: "org/app:v1"})
	require.NoError(t, err)

	var iidPath string
	for i := 0; i < len(runner.args)-1; i++ {
		if runner.args[i] == "--iidfile" {
			iidPath = runner.args[i+1]
		}
	}
	require.NotEmpty(t, iidPath)
	_, statErr := os.Stat(iidPath)
	assert.True(t, os.IsNotExist(statErr))
}
