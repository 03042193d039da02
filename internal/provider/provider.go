package provider

import (
	"net/url"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"

	"github.com/doublelei/DiffScope/internal/model"
	"github.com/doublelei/DiffScope/internal/provider/github"
	"github.com/doublelei/DiffScope/internal/provider/gitlab"
)

// Type identifies a commit hosting service.
type Type string

const (
	TypeGitHub Type = "github"
	TypeGitLab Type = "gitlab"
)

// Config describes the connection to a commit hosting service.
type Config struct {
	Type    string `yaml:"type" env:"PROVIDER_TYPE"`
	Token   string `yaml:"token" env:"PROVIDER_TOKEN"`
	BaseURL string `yaml:"base_url" env:"PROVIDER_BASE_URL"`
}

// New creates a content provider for the configured service type.
// GitHub is the default.
func New(cfg Config) (model.ContentProvider, error) {
	switch Type(lang.Check(cfg.Type, string(TypeGitHub))) {
	case TypeGitHub:
		return github.NewProvider(github.Config{
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
		})
	case TypeGitLab:
		return gitlab.NewProvider(gitlab.Config{
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, errm.New("unknown provider type: %s", cfg.Type)
	}
}

// ParseCommitURL extracts the project ID and commit SHA from a commit web
// URL. Supported shapes:
//
//	https://github.com/owner/repo/commit/<sha>
//	https://gitlab.com/group/subgroup/project/-/commit/<sha>
func ParseCommitURL(rawURL string) (projectID, sha string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errm.Wrap(err, "failed to parse commit URL")
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment != "commit" || i < 2 || i+1 >= len(segments) {
			continue
		}
		project := segments[:i]
		// GitLab separates the project path from the resource path with "-".
		if project[len(project)-1] == "-" {
			project = project[:len(project)-1]
		}
		if len(project) < 2 {
			break
		}
		return strings.Join(project, "/"), segments[i+1], nil
	}

	return "", "", errm.New("unsupported commit URL format: %s", rawURL)
}
