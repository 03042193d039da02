package model

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommitAnalysisResult aggregates file-level and function-level changes for
// one commit. It is populated incrementally by the analyzer and must be
// treated as immutable once returned.
type CommitAnalysisResult struct {
	CommitSHA         string            `json:"commit_sha"`
	RepositoryURL     string            `json:"repository_url"`
	CommitAuthor      string            `json:"commit_author,omitempty"`
	CommitDate        string            `json:"commit_date,omitempty"`
	CommitMessage     string            `json:"commit_message,omitempty"`
	ModifiedFiles     []*ModifiedFile   `json:"modified_files"`
	ModifiedFunctions []*FunctionChange `json:"modified_functions"`
}

// JSON serializes the result with stable key names.
func (r *CommitAnalysisResult) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
