package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doublelei/DiffScope/internal/model"
)

type fakeProvider struct {
	commit *model.Commit
	diffs  []*model.FileDiff

	before map[string]string
	after  map[string]string
	errOn  map[string]error
}

func (f *fakeProvider) GetCommit(ctx context.Context, projectID, sha string) (*model.Commit, error) {
	if f.commit == nil {
		return nil, errm.New("commit not found")
	}
	return f.commit, nil
}

func (f *fakeProvider) GetCommitDiffs(ctx context.Context, projectID, sha string) ([]*model.FileDiff, error) {
	return f.diffs, nil
}

func (f *fakeProvider) GetFileContentBeforeAfter(ctx context.Context, projectID, sha, oldPath, newPath string) (*string, *string, error) {
	if err, ok := f.errOn[newPath]; ok {
		return nil, nil, err
	}
	var before, after *string
	if content, ok := f.before[oldPath]; ok {
		before = &content
	}
	if content, ok := f.after[newPath]; ok {
		after = &content
	}
	return before, after, nil
}

const (
	oldCalc = "def add_numbers(a, b):\n    total = a + b\n    return total\n"
	newCalc = "def compute_sum(a, b):\n    total = a + b\n    return total\n"
)

func newTestProvider() *fakeProvider {
	return &fakeProvider{
		commit: &model.Commit{
			SHA:       "abc123",
			Message:   "rename add_numbers to compute_sum",
			Author:    model.User{Name: "Dev Eloper"},
			URL:       "https://github.com/owner/repo/commit/abc123",
			Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Parents:   []string{"parent0"},
		},
		diffs: []*model.FileDiff{
			{
				OldPath:   "calc.py",
				NewPath:   "calc.py",
				Status:    "modified",
				Additions: 1,
				Deletions: 1,
				Diff:      "@@ -1,1 +1,1 @@\n-def add_numbers(a, b):\n+def compute_sum(a, b):",
			},
			{
				OldPath:   "README.md",
				NewPath:   "README.md",
				Status:    "modified",
				Additions: 1,
				Diff:      "@@ -1,0 +2,1 @@\n+New paragraph.",
			},
			{
				OldPath: "bad.py",
				NewPath: "bad.py",
				Status:  "modified",
				Diff:    "@@ -1,1 +1,1 @@\n-x = 1\n+x = 2",
			},
		},
		before: map[string]string{
			"calc.py": oldCalc,
			"bad.py":  "x = 1\n",
		},
		after: map[string]string{
			"calc.py": newCalc,
			"bad.py":  "x = 2\n",
		},
		errOn: map[string]error{
			"bad.py": errm.New("content service unavailable"),
		},
	}
}

func TestAnalyzeCommit(t *testing.T) {
	a, err := New(newTestProvider(), Config{})
	require.NoError(t, err)
	defer a.Close()

	result, err := a.AnalyzeCommit(context.Background(), "owner/repo", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", result.CommitSHA)
	assert.Equal(t, "Dev Eloper", result.CommitAuthor)
	assert.Equal(t, "rename add_numbers to compute_sum", result.CommitMessage)
	assert.Equal(t, "2024-05-01T12:00:00Z", result.CommitDate)

	// The commit's own web URL wins over the bare project path.
	assert.Equal(t, "https://github.com/owner/repo/commit/abc123", result.RepositoryURL)

	// File order follows the provider's order regardless of worker timing.
	require.Len(t, result.ModifiedFiles, 3)
	assert.Equal(t, "calc.py", result.ModifiedFiles[0].Filename)
	assert.Equal(t, "README.md", result.ModifiedFiles[1].Filename)
	assert.Equal(t, "bad.py", result.ModifiedFiles[2].Filename)

	// Markdown carries no function analysis and no error.
	assert.Empty(t, result.ModifiedFiles[1].Language)
	assert.Empty(t, result.ModifiedFiles[1].Error)

	// The failing file degrades to an annotated record.
	assert.Contains(t, result.ModifiedFiles[2].Error, "content service unavailable")

	// The in-file rename is matched after the per-file passes.
	require.Len(t, result.ModifiedFunctions, 1)
	fc := result.ModifiedFunctions[0]
	assert.Equal(t, model.FunctionRenamed, fc.ChangeType)
	assert.Equal(t, "compute_sum", fc.Name)
	assert.Equal(t, "add_numbers", fc.OriginalName)
	assert.Equal(t, "calc.py", fc.File)
}

func TestAnalyzeCommitFatalOnMissingCommit(t *testing.T) {
	a, err := New(&fakeProvider{}, Config{})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.AnalyzeCommit(context.Background(), "owner/repo", "deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit not found")
}

func TestAnalyzeCommitResultIsJSONSerializable(t *testing.T) {
	a, err := New(newTestProvider(), Config{Workers: 2})
	require.NoError(t, err)
	defer a.Close()

	result, err := a.AnalyzeCommit(context.Background(), "owner/repo", "abc123")
	require.NoError(t, err)

	data, err := result.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"change_type": "renamed"`)
	assert.Contains(t, string(data), `"commit_sha": "abc123"`)
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)
}
