package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parser parses unified diff text into FileDiff structures.
type Parser struct {
	log logze.Logger
}

// NewParser creates a new unified diff parser.
func NewParser() *Parser {
	return &Parser{
		log: logze.With("component", "diff_parser"),
	}
}

// Parse parses a multi-file unified diff (the conventional
// diff --git / --- / +++ / @@ format). Files with malformed or truncated
// hunks are skipped and logged, never aborting the whole batch.
func (p *Parser) Parse(text string) []*FileDiff {
	var result []*FileDiff
	var cur *fileState

	flush := func() {
		if cur == nil {
			return
		}
		fd, err := cur.finish()
		if err != nil {
			p.log.Warn("skipping unparsable file diff", "file", cur.fd.NewPath, "error", err)
		} else {
			result = mergeRenameEntries(result, fd)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			oldPath, newPath := parseGitHeaderPaths(line)
			cur = &fileState{fd: newFileDiff(oldPath, newPath)}
			continue
		}
		if cur == nil || cur.broken {
			continue
		}
		if err := cur.feed(line); err != nil {
			p.log.Warn("skipping file with malformed diff", "file", cur.fd.NewPath, "error", err)
			cur.broken = true
		}
	}
	flush()

	return result
}

// ParseFile parses the patch of a single file, as returned per file by
// commit-hosting APIs (hunks only, conventionally starting with @@).
func (p *Parser) ParseFile(oldPath, newPath, patch string) (*FileDiff, error) {
	if strings.Contains(patch, "diff --git ") {
		files := p.Parse(patch)
		if len(files) == 0 {
			return nil, errm.New("no parsable file diff in patch")
		}
		return files[0], nil
	}

	cur := &fileState{fd: newFileDiff(oldPath, newPath)}
	for _, line := range strings.Split(patch, "\n") {
		if err := cur.feed(line); err != nil {
			return nil, err
		}
	}
	return cur.finish()
}

// fileState tracks parsing progress of one file section.
type fileState struct {
	fd     *FileDiff
	hunk   *Hunk
	broken bool

	oldLine, newLine int
	oldSeen, newSeen int
}

func (s *fileState) inHunk() bool {
	return s.hunk != nil &&
		(s.oldSeen < s.hunk.Header.OldCount || s.newSeen < s.hunk.Header.NewCount)
}

// feed consumes one diff line, either as hunk content or as a file-level
// marker. Returns an error on malformed input, which poisons the whole file.
func (s *fileState) feed(line string) error {
	if s.inHunk() {
		return s.consume(line)
	}

	switch {
	case strings.HasPrefix(line, "@@"):
		header, err := parseHunkHeader(line)
		if err != nil {
			return err
		}
		s.hunk = &Hunk{Header: header}
		s.oldLine, s.newLine = header.OldStart, header.NewStart
		s.oldSeen, s.newSeen = 0, 0
		if !s.inHunk() {
			// Degenerate empty hunk, keep it for completeness.
			s.finishHunk()
		}

	case strings.HasPrefix(line, "--- "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "--- "))
		if path == "/dev/null" {
			s.fd.IsNew = true
		} else {
			s.fd.OldPath = stripPathPrefix(path)
		}

	case strings.HasPrefix(line, "+++ "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "+++ "))
		if path == "/dev/null" {
			s.fd.IsDeleted = true
		} else {
			s.fd.NewPath = stripPathPrefix(path)
		}

	case strings.HasPrefix(line, "new file"):
		s.fd.IsNew = true

	case strings.HasPrefix(line, "deleted file"):
		s.fd.IsDeleted = true

	case strings.HasPrefix(line, "rename from "):
		s.fd.IsRename = true
		s.fd.OldPath = strings.TrimPrefix(line, "rename from ")

	case strings.HasPrefix(line, "rename to "):
		s.fd.IsRename = true
		s.fd.NewPath = strings.TrimPrefix(line, "rename to ")

	case strings.HasPrefix(line, "Binary files ") || strings.HasPrefix(line, "GIT binary patch"):
		s.fd.IsBinary = true

	default:
		// index lines, mode lines, similarity markers, trailing junk.
	}
	return nil
}

// consume accounts one content line inside the current hunk.
func (s *fileState) consume(line string) error {
	if line == "" {
		// Some generators emit bare empty lines for empty context.
		line = " "
	}
	switch line[0] {
	case '-':
		s.fd.OriginalChanges[s.oldLine] = line[1:]
		s.oldLine++
		s.oldSeen++
	case '+':
		s.fd.NewChanges[s.newLine] = line[1:]
		s.newLine++
		s.newSeen++
	case ' ':
		s.oldLine++
		s.newLine++
		s.oldSeen++
		s.newSeen++
	case '\\':
		// "\ No newline at end of file" consumes no line counters.
		s.hunk.Lines = append(s.hunk.Lines, line)
		return nil
	default:
		return errm.Errorf("unexpected line in hunk: %q", line)
	}

	s.hunk.Lines = append(s.hunk.Lines, line)
	if s.oldSeen > s.hunk.Header.OldCount || s.newSeen > s.hunk.Header.NewCount {
		return errm.Errorf("hunk overflows its advertised counts: %+v", s.hunk.Header)
	}
	if !s.inHunk() {
		s.finishHunk()
	}
	return nil
}

func (s *fileState) finishHunk() {
	s.fd.Hunks = append(s.fd.Hunks, *s.hunk)
	s.hunk = nil
}

func (s *fileState) finish() (*FileDiff, error) {
	if s.broken {
		return nil, errm.New("file diff is malformed")
	}
	if s.inHunk() {
		return nil, errm.Errorf("truncated hunk: got %d/%d old and %d/%d new lines",
			s.oldSeen, s.hunk.Header.OldCount, s.newSeen, s.hunk.Header.NewCount)
	}
	if s.fd.OldPath != s.fd.NewPath && !s.fd.IsNew && !s.fd.IsDeleted {
		s.fd.IsRename = true
	}
	return s.fd, nil
}

func parseHunkHeader(line string) (HunkHeader, error) {
	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return HunkHeader{}, errm.Errorf("malformed hunk header: %q", line)
	}
	return HunkHeader{
		OldStart: atoiDefault(m[1], 0),
		OldCount: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewCount: atoiDefault(m[4], 1),
	}, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseGitHeaderPaths(line string) (string, string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	if i := strings.Index(rest, " b/"); i >= 0 {
		return strings.TrimPrefix(rest[:i], "a/"), rest[i+3:]
	}
	return "", ""
}

func stripPathPrefix(path string) string {
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

// mergeRenameEntries folds a freshly parsed entry into the result list.
// A rename with content changes arrives as two diff --git sections for the
// same path pair; they must surface as a single FileDiff.
func mergeRenameEntries(result []*FileDiff, fd *FileDiff) []*FileDiff {
	for _, existing := range result {
		if existing.OldPath != fd.OldPath || existing.NewPath != fd.NewPath {
			continue
		}
		existing.Hunks = append(existing.Hunks, fd.Hunks...)
		for n, content := range fd.OriginalChanges {
			existing.OriginalChanges[n] = content
		}
		for n, content := range fd.NewChanges {
			existing.NewChanges[n] = content
		}
		existing.IsNew = existing.IsNew || fd.IsNew
		existing.IsDeleted = existing.IsDeleted || fd.IsDeleted
		existing.IsRename = existing.IsRename || fd.IsRename
		existing.IsBinary = existing.IsBinary || fd.IsBinary
		return result
	}
	return append(result, fd)
}
