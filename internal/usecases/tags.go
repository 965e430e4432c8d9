package usecases

import (
	"fmt"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

// ComputeTags derives the local and remote image tags for a run.
//
// The tag suffix is chosen by precedence:
//  1. the tag name, if the run is for a tag ref and auto-tag is enabled
//  2. the explicit tag, if set
//  3. the commit SHA
//
// Branch refs and unrecognized refs never contribute to the suffix.
func ComputeTags(rc domain.RunContext, in domain.TagInputs, registryHost string) domain.ResolvedTags {
	suffix := rc.CommitSHA
	switch {
	case rc.Ref.IsTag() && in.AutoTag:
		suffix = rc.Ref.Name
	case in.ExplicitTag != "":
		suffix = in.ExplicitTag
	}

	localTag := fmt.Sprintf("%s/%s:%s", in.OrgID, in.ImageName, suffix)
	return domain.ResolvedTags{
		Suffix:    suffix,
		LocalTag:  localTag,
		RemoteTag: registryHost + "/" + localTag,
	}
}

// BuildPayload builds the notification body for a pushed image.
// Branch refs populate Branch and leave Tags empty; tag refs populate Tags
// with the single tag name and leave Branch empty.
func BuildPayload(rc domain.RunContext, tags domain.ResolvedTags) domain.BuildNotificationPayload {
	payload := domain.BuildNotificationPayload{
		Commit: rc.CommitSHA,
		Image:  tags.RemoteTag,
		Tags:   []string{},
	}

	switch rc.Ref.Kind {
	case domain.RefBranch:
		payload.Branch = rc.Ref.Name
	case domain.RefTag:
		payload.Tags = []string{rc.Ref.Name}
	case domain.RefUnrecognized:
		// Rejected by the context resolver; nothing to populate.
	}

	return payload
}
