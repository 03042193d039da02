package model

import "context"

// ContentProvider is the content collaborator: it retrieves commit metadata,
// per-file diffs and before/after file contents from a commit-hosting service.
type ContentProvider interface {
	// GetCommit resolves commit metadata. Failure to resolve the commit
	// reference is fatal for the whole analysis.
	GetCommit(ctx context.Context, projectID, sha string) (*Commit, error)

	// GetCommitDiffs returns one FileDiff per file touched by the commit.
	GetCommitDiffs(ctx context.Context, projectID, sha string) ([]*FileDiff, error)

	// GetFileContentBeforeAfter returns the file content before and after the
	// commit. A side that does not exist (new or deleted file) is nil; that is
	// distinct from an empty file, which is a non-nil pointer to "".
	// Retrieval failures are returned as errors, never coerced to empty content.
	GetFileContentBeforeAfter(ctx context.Context, projectID, sha, oldPath, newPath string) (before, after *string, err error)
}
