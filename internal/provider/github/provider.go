package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"

	"github.com/doublelei/DiffScope/internal/model"
)

var _ model.ContentProvider = (*Provider)(nil)

const defaultBaseURL = "https://github.com"

// Config holds GitHub connection settings. The token is optional: public
// repositories work unauthenticated, at a much lower rate limit.
type Config struct {
	Token   string
	BaseURL string
}

// Provider implements the ContentProvider interface for GitHub.
type Provider struct {
	client *github.Client
	config Config
	logger logze.Logger

	// parents caches commit SHA -> first parent SHA to avoid refetching the
	// commit for every analyzed file.
	parents *abstract.SafeMap[string, string]
}

// NewProvider creates a new GitHub provider.
func NewProvider(config Config) (*Provider, error) {
	var httpClient *http.Client
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = client.WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client:  client,
		config:  config,
		logger:  logze.With("provider", "github"),
		parents: abstract.NewSafeMap[string, string](),
	}, nil
}

// GetCommit retrieves commit metadata.
func (p *Provider) GetCommit(ctx context.Context, projectID, sha string) (*model.Commit, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	commit, _, err := p.client.Repositories.GetCommit(ctx, owner, repo, sha, &github.ListOptions{PerPage: 1})
	if err != nil {
		return nil, errm.Wrap(err, "failed to get commit from GitHub")
	}

	result := &model.Commit{
		SHA:     commit.GetSHA(),
		Message: commit.GetCommit().GetMessage(),
		URL:     commit.GetHTMLURL(),
		Author: model.User{
			Username: commit.GetAuthor().GetLogin(),
			Name:     commit.GetCommit().GetAuthor().GetName(),
			Email:    commit.GetCommit().GetAuthor().GetEmail(),
		},
		Committer: model.User{
			Username: commit.GetCommitter().GetLogin(),
			Name:     commit.GetCommit().GetCommitter().GetName(),
			Email:    commit.GetCommit().GetCommitter().GetEmail(),
		},
		Timestamp: commit.GetCommit().GetAuthor().GetDate().Time,
		Stats: model.CommitStats{
			TotalFiles: commit.GetStats().GetTotal(),
			Additions:  commit.GetStats().GetAdditions(),
			Deletions:  commit.GetStats().GetDeletions(),
		},
	}
	for _, parent := range commit.Parents {
		result.Parents = append(result.Parents, parent.GetSHA())
	}
	if len(result.Parents) > 0 {
		p.parents.Set(result.SHA, result.Parents[0])
	}

	return result, nil
}

// GetCommitDiffs returns one FileDiff per file touched by the commit,
// following pagination.
func (p *Provider) GetCommitDiffs(ctx context.Context, projectID, sha string) ([]*model.FileDiff, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}
	var allFiles []*github.CommitFile

	for {
		commit, resp, err := p.client.Repositories.GetCommit(ctx, owner, repo, sha, opts)
		if err != nil {
			return nil, errm.Wrap(err, "failed to get commit files from GitHub")
		}

		allFiles = append(allFiles, commit.Files...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	fileDiffs := make([]*model.FileDiff, 0, len(allFiles))
	for _, file := range allFiles {
		fileDiff := &model.FileDiff{
			OldPath:   file.GetPreviousFilename(),
			NewPath:   file.GetFilename(),
			Diff:      file.GetPatch(),
			Status:    file.GetStatus(),
			Additions: file.GetAdditions(),
			Deletions: file.GetDeletions(),
			IsNew:     file.GetStatus() == "added",
			IsDeleted: file.GetStatus() == "removed",
			IsRenamed: file.GetStatus() == "renamed",
			IsBinary:  file.GetPatch() == "" && file.GetChanges() == 0,
		}
		if fileDiff.OldPath == "" {
			fileDiff.OldPath = fileDiff.NewPath
		}
		fileDiffs = append(fileDiffs, fileDiff)
	}

	return fileDiffs, nil
}

// GetFileContentBeforeAfter fetches the file content on both sides of the
// commit: the old path at the first parent SHA and the new path at the commit
// itself. A missing side comes back as nil, never as an empty string.
func (p *Provider) GetFileContentBeforeAfter(ctx context.Context, projectID, sha, oldPath, newPath string) (before, after *string, err error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, nil, err
	}

	parentSHA, ok := p.parents.Lookup(sha)
	if !ok {
		commit, err := p.GetCommit(ctx, projectID, sha)
		if err != nil {
			return nil, nil, err
		}
		if len(commit.Parents) > 0 {
			parentSHA = commit.Parents[0]
		}
	}

	if parentSHA != "" && oldPath != "" {
		before, err = p.getFileContent(ctx, owner, repo, oldPath, parentSHA)
		if err != nil {
			return nil, nil, errm.Wrap(err, "failed to get old file content")
		}
	}
	if newPath != "" {
		after, err = p.getFileContent(ctx, owner, repo, newPath, sha)
		if err != nil {
			return nil, nil, errm.Wrap(err, "failed to get new file content")
		}
	}

	return before, after, nil
}

// getFileContent returns nil without error when the file does not exist at
// the given ref.
func (p *Provider) getFileContent(ctx context.Context, owner, repo, path, ref string) (*string, error) {
	fc, _, resp, err := p.client.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, errm.Wrap(err, "failed to get file content from GitHub")
	}
	if fc == nil {
		// Path resolves to a directory
		return nil, nil
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, errm.Wrap(err, "failed to decode file content")
	}
	return &content, nil
}

func splitProjectID(projectID string) (owner, repo string, err error) {
	parts := strings.Split(projectID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errm.New("invalid GitHub project ID format, expected 'owner/repo'")
	}
	return parts[0], parts[1], nil
}
