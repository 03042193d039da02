package model

// FileDiff represents changes in a single file as reported by a provider.
type FileDiff struct {
	OldPath   string
	NewPath   string
	Diff      string
	Status    string
	Additions int
	Deletions int
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool
}

// FileChangeType is the kind of change applied to a whole file.
type FileChangeType string

const (
	FileAdded    FileChangeType = "added"
	FileModified FileChangeType = "modified"
	FileRemoved  FileChangeType = "removed"
	FileRenamed  FileChangeType = "renamed"
)

// ModifiedFile is the file-level record of a commit analysis.
type ModifiedFile struct {
	Filename         string `json:"filename"`
	Status           string `json:"status"`
	Additions        int    `json:"additions"`
	Deletions        int    `json:"deletions"`
	Changes          int    `json:"changes"`
	Language         string `json:"language,omitempty"`
	Patch            string `json:"patch,omitempty"`
	PreviousFilename string `json:"previous_filename,omitempty"`

	// Error annotates files where function-level analysis degraded
	// (missing content, unparsable diff). The file itself stays in the result.
	Error string `json:"error,omitempty"`
}

// FunctionChangeType is the kind of change applied to a single function.
type FunctionChangeType string

const (
	FunctionAdded            FunctionChangeType = "added"
	FunctionDeleted          FunctionChangeType = "deleted"
	FunctionRenamed          FunctionChangeType = "renamed"
	FunctionSignatureChanged FunctionChangeType = "signature_changed"
	FunctionBodyChanged      FunctionChangeType = "body_changed"
	FunctionDocstringChanged FunctionChangeType = "docstring_changed"
)

// FunctionChange is the unit of output: one function/method that was touched
// by a commit, with its spans in both file versions where they exist.
//
// ADDED records have no original span, DELETED records have no new span.
// RENAMED records are produced by the rename matcher, which consumes one
// provisional ADDED and one provisional DELETED record.
type FunctionChange struct {
	Name         string             `json:"name"`
	File         string             `json:"file"`
	Type         string             `json:"type"`
	ChangeType   FunctionChangeType `json:"change_type"`
	OriginalName string             `json:"original_name,omitempty"`

	OriginalStart *int `json:"original_start,omitempty"`
	OriginalEnd   *int `json:"original_end,omitempty"`
	NewStart      *int `json:"new_start,omitempty"`
	NewEnd        *int `json:"new_end,omitempty"`

	// Changes counts added plus removed lines attributable to this function.
	Changes int `json:"changes"`

	// Diff is the function-scoped slice of the file diff, when available.
	Diff string `json:"diff,omitempty"`

	// Source carries the function's full text for similarity matching of
	// provisional records. Never serialized.
	Source string `json:"-"`
}

// IsProvisional reports whether the record may still be consumed by the
// rename matcher.
func (fc *FunctionChange) IsProvisional() bool {
	return fc.ChangeType == FunctionAdded || fc.ChangeType == FunctionDeleted
}
