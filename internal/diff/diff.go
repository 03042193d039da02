package diff

// HunkHeader holds the 1-indexed start line and line count of one contiguous
// diff hunk on each side. OldCount == 0 marks a pure insertion after OldStart,
// NewCount == 0 marks a pure deletion.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// Hunk is one parsed hunk: its header and the raw diff lines in document
// order, each keeping its leading marker character.
type Hunk struct {
	Header HunkHeader
	Lines  []string
}

// FileDiff is the parsed diff of one file path pair.
//
// OriginalChanges maps old-file line numbers to the content of lines that
// were deleted or replaced; NewChanges is the symmetric map for added lines.
// Every line number absent from these maps was left unchanged and maps 1:1
// between versions modulo the per-hunk offsets.
type FileDiff struct {
	OldPath string
	NewPath string

	Hunks []Hunk

	OriginalChanges map[int]string
	NewChanges      map[int]string

	IsNew     bool
	IsDeleted bool
	IsRename  bool
	IsBinary  bool
}

func newFileDiff(oldPath, newPath string) *FileDiff {
	return &FileDiff{
		OldPath:         oldPath,
		NewPath:         newPath,
		OriginalChanges: make(map[int]string),
		NewChanges:      make(map[int]string),
	}
}
