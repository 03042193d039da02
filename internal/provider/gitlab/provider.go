package gitlab

import (
	"context"
	"net/http"
	"strings"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/doublelei/DiffScope/internal/model"
)

var _ model.ContentProvider = (*Provider)(nil)

// Config holds GitLab connection settings.
type Config struct {
	Token   string
	BaseURL string
}

// Provider implements the ContentProvider interface for GitLab.
type Provider struct {
	client *gitlab.Client
	config Config
	logger logze.Logger

	parents *abstract.SafeMap[string, string]
}

// NewProvider creates a new GitLab provider.
func NewProvider(config Config) (*Provider, error) {
	var opts []gitlab.ClientOptionFunc
	if config.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(config.BaseURL))
	}

	client, err := gitlab.NewClient(config.Token, opts...)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client:  client,
		config:  config,
		logger:  logze.With("provider", "gitlab"),
		parents: abstract.NewSafeMap[string, string](),
	}, nil
}

// GetCommit retrieves commit metadata. The project ID may be numeric or a
// full "group/project" path.
func (p *Provider) GetCommit(ctx context.Context, projectID, sha string) (*model.Commit, error) {
	commit, _, err := p.client.Commits.GetCommit(projectID, sha, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get commit from GitLab")
	}

	result := &model.Commit{
		SHA:     commit.ID,
		Message: commit.Message,
		URL:     commit.WebURL,
		Author: model.User{
			Name:  commit.AuthorName,
			Email: commit.AuthorEmail,
		},
		Committer: model.User{
			Name:  commit.CommitterName,
			Email: commit.CommitterEmail,
		},
		Timestamp: lang.Deref(commit.AuthoredDate),
		Parents:   commit.ParentIDs,
	}
	if commit.Stats != nil {
		result.Stats = model.CommitStats{
			Additions: commit.Stats.Additions,
			Deletions: commit.Stats.Deletions,
		}
	}
	if len(result.Parents) > 0 {
		p.parents.Set(result.SHA, result.Parents[0])
	}

	return result, nil
}

// GetCommitDiffs returns one FileDiff per file touched by the commit,
// following pagination. GitLab does not report per-file line counts, so they
// are derived from the patch text.
func (p *Provider) GetCommitDiffs(ctx context.Context, projectID, sha string) ([]*model.FileDiff, error) {
	opts := &gitlab.GetCommitDiffOptions{ListOptions: gitlab.ListOptions{PerPage: 100}}
	var allDiffs []*gitlab.Diff

	for {
		diffs, resp, err := p.client.Commits.GetCommitDiff(projectID, sha, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, errm.Wrap(err, "failed to get commit diff from GitLab")
		}

		allDiffs = append(allDiffs, diffs...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	fileDiffs := make([]*model.FileDiff, 0, len(allDiffs))
	for _, d := range allDiffs {
		additions, deletions := countPatchLines(d.Diff)
		fileDiff := &model.FileDiff{
			OldPath:   d.OldPath,
			NewPath:   d.NewPath,
			Diff:      d.Diff,
			Additions: additions,
			Deletions: deletions,
			IsNew:     d.NewFile,
			IsDeleted: d.DeletedFile,
			IsRenamed: d.RenamedFile,
			IsBinary:  d.Diff == "" || strings.HasPrefix(d.Diff, "Binary files"),
		}
		switch {
		case fileDiff.IsNew:
			fileDiff.Status = "added"
		case fileDiff.IsDeleted:
			fileDiff.Status = "removed"
		case fileDiff.IsRenamed:
			fileDiff.Status = "renamed"
		default:
			fileDiff.Status = "modified"
		}
		fileDiffs = append(fileDiffs, fileDiff)
	}

	return fileDiffs, nil
}

// GetFileContentBeforeAfter fetches the raw file content on both sides of
// the commit. A missing side comes back as nil, never as an empty string.
func (p *Provider) GetFileContentBeforeAfter(ctx context.Context, projectID, sha, oldPath, newPath string) (before, after *string, err error) {
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
		before, err = p.getFileContent(ctx, projectID, oldPath, parentSHA)
		if err != nil {
			return nil, nil, errm.Wrap(err, "failed to get old file content")
		}
	}
	if newPath != "" {
		after, err = p.getFileContent(ctx, projectID, newPath, sha)
		if err != nil {
			return nil, nil, errm.Wrap(err, "failed to get new file content")
		}
	}

	return before, after, nil
}

// getFileContent returns nil without error when the file does not exist at
// the given ref.
func (p *Provider) getFileContent(ctx context.Context, projectID, filePath, ref string) (*string, error) {
	raw, resp, err := p.client.RepositoryFiles.GetRawFile(projectID, filePath,
		&gitlab.GetRawFileOptions{Ref: gitlab.Ptr(ref)}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, errm.Wrap(err, "failed to get file content from GitLab")
	}

	content := string(raw)
	return &content, nil
}

func countPatchLines(patch string) (additions, deletions int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
