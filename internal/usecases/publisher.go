// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// Logger defines the logging interface required by the publisher.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// State is a state of the publish state machine.
type State string

// Publish states, in the order a successful run visits them.
const (
	StateStart                    State = "Start"
	StateContextReady             State = "ContextReady"
	StateInputsValidated          State = "InputsValidated"
	StateCredentialsReady         State = "CredentialsReady"
	StateAuthenticated            State = "Authenticated"
	StateTagsComputed             State = "TagsComputed"
	StateBuilt                    State = "Built"
	StatePushed                   State = "Pushed"
	StateNotificationPayloadBuilt State = "NotificationPayloadBuilt"
	StateSucceeded                State = "Succeeded"
	StateFailed                   State = "Failed"
)

const docsHint = "See https://docs.humanitec.com/connecting-your-ci#github-actions"

// Request holds the user inputs of a publish run.
type Request struct {
	// OrgID is the organization the image is published under.
	OrgID string

	// ImageName may be empty, in which case the repository name is used.
	ImageName string

	// ExplicitTag overrides the commit SHA as tag suffix when non-empty.
	ExplicitTag string

	// AutoTag uses the git tag name as suffix when the run was triggered by a tag.
	AutoTag bool

	// File is the build definition file; empty means the builder default.
	File string

	// ContextPath is the build context; relative paths resolve against the workspace.
	ContextPath string

	// ExtraArgs is passed verbatim to the builder.
	ExtraArgs string

	// RegistryHost is the registry the image is pushed to.
	RegistryHost string
}

// Result is the outcome of a successful publish run.
type Result struct {
	Context   domain.RunContext
	ImageName string
	Tags      domain.ResolvedTags
	ImageID   string
	Payload   domain.BuildNotificationPayload
}

// run carries the data passed forward between steps.
type run struct {
	req     Request
	rc      *domain.RunContext
	image   string
	file    string
	context string
	creds   *domain.RegistryCredentials
	tags    domain.ResolvedTags
	imageID string
	payload domain.BuildNotificationPayload
}

// transition moves the state machine to a new state when its step succeeds.
// Steps without a kind cannot fail.
type transition struct {
	to    State
	kind  domain.Kind
	msg   string
	hints []string
	step  func(ctx context.Context, r *run) error
}

// Publisher runs one build-tag-push-notify cycle with fail-fast semantics.
type Publisher struct {
	resolver  domain.ContextResolver
	validator domain.InputValidator
	creds     domain.CredentialProvider
	builder   domain.ImageBuilder
	registry  domain.RegistryPublisher
	notifier  domain.BuildNotifier
	logger    Logger

	state State
}

// NewPublisher creates a new Publisher with the given collaborators.
func NewPublisher(
	resolver domain.ContextResolver,
	validator domain.InputValidator,
	creds domain.CredentialProvider,
	builder domain.ImageBuilder,
	registry domain.RegistryPublisher,
	notifier domain.BuildNotifier,
	log Logger,
) *Publisher {
	return &Publisher{
		resolver:  resolver,
		validator: validator,
		creds:     creds,
		builder:   builder,
		registry:  registry,
		notifier:  notifier,
		logger:    log,
		state:     StateStart,
	}
}

// State returns the current state of the publisher.
func (p *Publisher) State() State {
	return p.state
}

// Run executes the publish cycle. Every step runs only if the previous one
// succeeded. On failure the returned error is a *Failure; no other error type
// escapes, including panics raised by collaborators.
func (p *Publisher) Run(ctx context.Context, req Request) (result *Result, err error) {
	p.state = StateStart
	r := &run{req: req}

	defer func() {
		if rec := recover(); rec != nil {
			failure := NewFailure(p.state, domain.KindUnexpected, "Action failed",
				errors.Newf("panic: %v", rec))
			p.logger.Error(ctx, "publish run panicked", failure.Cause, map[string]interface{}{
				"state": string(p.state),
			})
			p.state = StateFailed
			result, err = nil, failure
		}
	}()

	for _, t := range p.transitions() {
		if stepErr := t.step(ctx, r); stepErr != nil {
			failure := NewFailure(p.state, t.kind, t.msg, stepErr, t.hints...)
			p.logger.Error(ctx, "publish step failed", stepErr, map[string]interface{}{
				"state": string(p.state),
				"next":  string(t.to),
				"kind":  string(t.kind),
			})
			p.state = StateFailed
			return nil, failure
		}
		p.advance(ctx, t.to)
	}

	return &Result{
		Context:   *r.rc,
		ImageName: r.image,
		Tags:      r.tags,
		ImageID:   r.imageID,
		Payload:   r.payload,
	}, nil
}

func (p *Publisher) advance(ctx context.Context, to State) {
	p.logger.Debug(ctx, "publish state transition", map[string]interface{}{
		"from": string(p.state),
		"to":   string(to),
	})
	p.state = to
}

func (p *Publisher) transitions() []transition {
	return []transition{
		{
			to:   StateContextReady,
			kind: domain.KindEnvironment,
			msg:  "Unable to resolve CI context",
			step: p.resolveContext,
		},
		{
			to:   StateInputsValidated,
			kind: domain.KindValidation,
			msg:  "Invalid action inputs",
			step: p.validateInputs,
		},
		{
			to:    StateCredentialsReady,
			kind:  domain.KindCredentials,
			msg:   "Unable to access Humanitec",
			hints: []string{"Unable to fetch repository credentials. Did you add the token to your Github Secrets?", docsHint},
			step:  p.fetchCredentials,
		},
		{
			to:   StateAuthenticated,
			kind: domain.KindAuth,
			msg:  "Unable to connect to the humanitec registry",
			step: p.login,
		},
		{
			to:   StateTagsComputed,
			step: p.computeTags,
		},
		{
			to:   StateBuilt,
			kind: domain.KindBuild,
			msg:  "Unable to build image from Dockerfile",
			step: p.build,
		},
		{
			to:   StatePushed,
			kind: domain.KindPush,
			msg:  "Unable to push image to registry",
			step: p.push,
		},
		{
			to:   StateNotificationPayloadBuilt,
			step: p.buildPayload,
		},
		{
			to:    StateSucceeded,
			kind:  domain.KindNotify,
			msg:   "Unable to notify Humanitec about build",
			hints: []string{"Did you add the token to your Github Secrets?", docsHint},
			step:  p.notify,
		},
	}
}

func (p *Publisher) resolveContext(ctx context.Context, r *run) error {
	rc, err := p.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	r.rc = rc

	p.logger.Info(ctx, "resolved CI context", map[string]interface{}{
		"commit":     rc.CommitSHA,
		"ref":        rc.RawRef,
		"ref_kind":   rc.Ref.Kind.String(),
		"repository": rc.RepositoryName,
		"workspace":  rc.WorkspacePath,
	})
	return nil
}

func (p *Publisher) validateInputs(ctx context.Context, r *run) error {
	r.image = r.req.ImageName
	if r.image == "" {
		r.image = r.rc.RepositoryName
	}
	if r.req.File != "" {
		r.file = inWorkspace(r.rc.WorkspacePath, r.req.File)
	}
	contextPath := r.req.ContextPath
	if contextPath == "" {
		contextPath = domain.DefaultContextPath
	}
	r.context = inWorkspace(r.rc.WorkspacePath, contextPath)

	return p.validator.Validate(ctx, r.image, r.file, r.context)
}

func (p *Publisher) fetchCredentials(ctx context.Context, r *run) error {
	creds, err := p.creds.GetRegistryCredentials(ctx)
	if err != nil {
		return err
	}
	if creds == nil {
		return errors.New("no registry credentials returned")
	}
	r.creds = creds
	return nil
}

func (p *Publisher) login(ctx context.Context, r *run) error {
	if err := p.registry.Login(ctx, *r.creds, r.req.RegistryHost); err != nil {
		return err
	}
	p.logger.Info(ctx, "logged in to registry", map[string]interface{}{
		"registry": r.req.RegistryHost,
	})
	return nil
}

func (p *Publisher) computeTags(ctx context.Context, r *run) error {
	r.tags = ComputeTags(*r.rc, domain.TagInputs{
		ExplicitTag: r.req.ExplicitTag,
		AutoTag:     r.req.AutoTag,
		OrgID:       r.req.OrgID,
		ImageName:   r.image,
	}, r.req.RegistryHost)

	p.logger.Info(ctx, "computed image tags", map[string]interface{}{
		"local_tag":  r.tags.LocalTag,
		"remote_tag": r.tags.RemoteTag,
	})
	return nil
}

func (p *Publisher) build(ctx context.Context, r *run) error {
	imageID, err := p.builder.Build(ctx, domain.BuildRequest{
		LocalTag:    r.tags.LocalTag,
		File:        r.file,
		ExtraArgs:   r.req.ExtraArgs,
		ContextPath: r.context,
		WorkDir:     r.rc.WorkspacePath,
	})
	if err != nil {
		return err
	}
	if imageID == "" {
		return errors.New("builder returned no image identifier")
	}
	r.imageID = imageID

	p.logger.Info(ctx, "built image", map[string]interface{}{
		"image_id":  imageID,
		"local_tag": r.tags.LocalTag,
	})
	return nil
}

func (p *Publisher) push(ctx context.Context, r *run) error {
	if err := p.registry.Push(ctx, r.imageID, r.tags.RemoteTag); err != nil {
		return err
	}
	p.logger.Info(ctx, "pushed image", map[string]interface{}{
		"remote_tag": r.tags.RemoteTag,
	})
	return nil
}

func (p *Publisher) buildPayload(_ context.Context, r *run) error {
	r.payload = BuildPayload(*r.rc, r.tags)
	return nil
}

func (p *Publisher) notify(ctx context.Context, r *run) error {
	if err := p.notifier.AddNewBuild(ctx, r.image, r.payload); err != nil {
		return errors.Wrapf(err, "image %s", r.image)
	}
	p.logger.Info(ctx, "registered build", map[string]interface{}{
		"image":  r.payload.Image,
		"branch": r.payload.Branch,
		"tags":   r.payload.Tags,
	})
	return nil
}

// inWorkspace resolves a relative path against the workspace root.
func inWorkspace(workspace, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}
