package model

import "time"

// User represents a commit author or committer.
type User struct {
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Commit represents a git commit as returned by a content provider.
type Commit struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    User      `json:"author"`
	Committer User      `json:"committer"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Parents   []string  `json:"parents"`

	Stats CommitStats `json:"stats"`
}

// CommitStats represents commit-wide statistics.
type CommitStats struct {
	TotalFiles int `json:"total_files"`
	Additions  int `json:"additions"`
	Deletions  int `json:"deletions"`
}
