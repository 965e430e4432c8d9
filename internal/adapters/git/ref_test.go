package git

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MyCarrier-DevOps/build-push-humanitec/internal/domain"
)

func TestClassifyRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want domain.Ref
	}{
		{
			name: "main branch",
			ref:  "refs/heads/main",
			want: domain.Ref{Kind: domain.RefBranch, Name: "main"},
		},
		{
			name: "branch with slash",
			ref:  "refs/heads/feature/login",
			want: domain.Ref{Kind: domain.RefBranch, Name: "feature/login"},
		},
		{
			name: "semver tag",
			ref:  "refs/tags/v2.0.0",
			want: domain.Ref{Kind: domain.RefTag, Name: "v2.0.0"},
		},
		{
			name: "tag with slash keeps everything after prefix",
			ref:  "refs/tags/release/1.0",
			want: domain.Ref{Kind: domain.RefTag, Name: "release/1.0"},
		},
		{
			name: "pull request ref",
			ref:  "refs/pull/42/merge",
			want: domain.Ref{Kind: domain.RefUnrecognized, Name: "refs/pull/42/merge"},
		},
		{
			name: "short branch name",
			ref:  "main",
			want: domain.Ref{Kind: domain.RefUnrecognized, Name: "main"},
		},
		{
			name: "branch prefix without name",
			ref:  "refs/heads/",
			want: domain.Ref{Kind: domain.RefUnrecognized, Name: "refs/heads/"},
		},
		{
			name: "tag prefix without name",
			ref:  "refs/tags/",
			want: domain.Ref{Kind: domain.RefUnrecognized, Name: "refs/tags/"},
		},
		{
			name: "empty ref",
			ref:  "",
			want: domain.Ref{Kind: domain.RefUnrecognized, Name: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRef(tt.ref)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRef_KindHelpers(t *testing.T) {
	branch := ClassifyRef("refs/heads/main")
	assert.True(t, branch.IsBranch())
	assert.False(t, branch.IsTag())

	tag := ClassifyRef("refs/tags/v1")
	assert.True(t, tag.IsTag())
	assert.False(t, tag.IsBranch())

	assert.Equal(t, "branch", domain.RefBranch.String())
	assert.Equal(t, "tag", domain.RefTag.String())
	assert.Equal(t, "unrecognized", domain.RefUnrecognized.String())
}
