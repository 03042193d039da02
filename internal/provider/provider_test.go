package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommitURL(t *testing.T) {
	tests := []struct {
		url       string
		projectID string
		sha       string
	}{
		{
			url:       "https://github.com/golang/go/commit/2f4dc",
			projectID: "golang/go",
			sha:       "2f4dc",
		},
		{
			url:       "https://gitlab.com/gitlab-org/gitlab/-/commit/deadbeef",
			projectID: "gitlab-org/gitlab",
			sha:       "deadbeef",
		},
		{
			url:       "https://gitlab.example.com/group/subgroup/project/-/commit/aa11bb22",
			projectID: "group/subgroup/project",
			sha:       "aa11bb22",
		},
	}
	for _, tt := range tests {
		projectID, sha, err := ParseCommitURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.projectID, projectID, tt.url)
		assert.Equal(t, tt.sha, sha, tt.url)
	}
}

func TestParseCommitURLInvalid(t *testing.T) {
	invalid := []string{
		"",
		"https://github.com/golang/go",
		"https://github.com/golang/go/pull/123",
		"https://example.com/commit/abc",
	}
	for _, url := range invalid {
		_, _, err := ParseCommitURL(url)
		assert.Error(t, err, url)
	}
}

func TestNewDefaultsToGitHub(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewGitLab(t *testing.T) {
	p, err := New(Config{Type: "gitlab", Token: "glpat-test"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "svn"})
	require.Error(t, err)
}
