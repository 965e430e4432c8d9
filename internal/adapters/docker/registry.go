package docker

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// EngineAPI is the subset of the Docker Engine client used for publishing.
// *client.Client satisfies it.
type EngineAPI interface {
	RegistryLogin(ctx context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, image string, options types.ImagePushOptions) (io.ReadCloser, error)
}

// Registry implements domain.RegistryPublisher using the Docker Engine API.
type Registry struct {
	api    EngineAPI
	out    io.Writer
	logger Logger

	// auth is the encoded auth header of the last successful login.
	auth string
}

// NewRegistry creates a Registry connected to the Docker daemon configured
// in the environment (DOCKER_HOST etc.).
func NewRegistry(log Logger) (*Registry, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return NewRegistryWithAPI(cli, os.Stdout, log), nil
}

// NewRegistryWithAPI creates a Registry with an explicit engine client and
// progress output. This is useful for testing.
func NewRegistryWithAPI(api EngineAPI, out io.Writer, log Logger) *Registry {
	return &Registry{api: api, out: out, logger: log}
}

// Login authenticates against host and keeps the credentials for Push.
func (r *Registry) Login(ctx context.Context, creds domain.RegistryCredentials, host string) error {
	auth := registry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: host,
	}

	resp, err := r.api.RegistryLogin(ctx, auth)
	if err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "login to %s failed", host),
			"Check that the Humanitec registry is reachable from the runner.",
		)
	}

	encoded, err := registry.EncodeAuthConfig(auth)
	if err != nil {
		return errors.Wrap(err, "failed to encode registry auth")
	}
	r.auth = encoded

	r.logger.Debug(ctx, "registry login response", map[string]interface{}{
		"registry": host,
		"status":   resp.Status,
	})
	return nil
}

// Push tags imageID as remoteTag and pushes it with the login credentials.
// Errors reported inside the push progress stream fail the push.
func (r *Registry) Push(ctx context.Context, imageID, remoteTag string) error {
	if r.auth == "" {
		return errors.New("push attempted before registry login")
	}

	if err := r.api.ImageTag(ctx, imageID, remoteTag); err != nil {
		return errors.Wrapf(err, "failed to tag %s as %s", imageID, remoteTag)
	}

	r.logger.Info(ctx, "pushing image", map[string]interface{}{
		"remote_tag": remoteTag,
	})

	stream, err := r.api.ImagePush(ctx, remoteTag, types.ImagePushOptions{RegistryAuth: r.auth})
	if err != nil {
		return errors.Wrapf(err, "failed to push %s", remoteTag)
	}
	defer stream.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(stream, r.out, 0, false, nil); err != nil {
		return errors.Wrapf(err, "failed to push %s", remoteTag)
	}
	return nil
}
