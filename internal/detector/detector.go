package detector

import (
	"strings"

	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/doublelei/DiffScope/internal/diff"
	"github.com/doublelei/DiffScope/internal/funcparser"
	"github.com/doublelei/DiffScope/internal/model"
)

// FileInput bundles everything the detector needs for one file pass.
type FileInput struct {
	Path string
	Diff *diff.FileDiff

	OldContent string
	NewContent string

	OldFunctions []funcparser.Function
	NewFunctions []funcparser.Function
}

// AreaChange reports changed lines that intersect no function span at all
// (module-level statements, blank regions). Informational only.
type AreaChange struct {
	File     string `json:"file"`
	OldLines []int  `json:"old_lines,omitempty"`
	NewLines []int  `json:"new_lines,omitempty"`
}

// FileResult is the outcome of one detector pass over a single file.
type FileResult struct {
	Functions       []*model.FunctionChange
	NonFunctionArea *AreaChange
}

// Detector decides which functions a file diff touched and why, by
// intersecting changed-line sets with function spans. One of three mutually
// exclusive states applies per file: new, deleted or modified.
type Detector struct {
	log logze.Logger
}

// New creates a function change detector.
func New() *Detector {
	return &Detector{
		log: logze.With("component", "detector"),
	}
}

// DetectFileChanges runs the per-file state machine. The result is fully
// deterministic: identical inputs produce identical output, in document
// order of the new version followed by unmatched old-version functions.
func (d *Detector) DetectFileChanges(in FileInput) *FileResult {
	if in.Diff == nil || in.Diff.IsBinary {
		return &FileResult{}
	}

	switch {
	case in.Diff.IsNew:
		return d.detectNewFile(in)
	case in.Diff.IsDeleted:
		return d.detectDeletedFile(in)
	default:
		return d.detectModifiedFile(in)
	}
}

func (d *Detector) detectNewFile(in FileInput) *FileResult {
	newLines := splitLines(in.NewContent)

	result := &FileResult{}
	for _, fn := range in.NewFunctions {
		result.Functions = append(result.Functions, &model.FunctionChange{
			Name:       fn.Name,
			File:       in.Path,
			Type:       string(fn.Kind),
			ChangeType: model.FunctionAdded,
			NewStart:   lang.Ptr(fn.StartLine),
			NewEnd:     lang.Ptr(fn.EndLine),
			Changes:    fn.Span(),
			Source:     functionText(newLines, fn),
		})
	}
	return result
}

func (d *Detector) detectDeletedFile(in FileInput) *FileResult {
	oldLines := splitLines(in.OldContent)

	result := &FileResult{}
	for _, fn := range in.OldFunctions {
		result.Functions = append(result.Functions, &model.FunctionChange{
			Name:          fn.Name,
			File:          in.Path,
			Type:          string(fn.Kind),
			ChangeType:    model.FunctionDeleted,
			OriginalStart: lang.Ptr(fn.StartLine),
			OriginalEnd:   lang.Ptr(fn.EndLine),
			Changes:       fn.Span(),
			Source:        functionText(oldLines, fn),
		})
	}
	return result
}

func (d *Detector) detectModifiedFile(in FileInput) *FileResult {
	origChanged, newChanged := diff.ChangedLineNumbers(in.Diff)
	oldLines := splitLines(in.OldContent)
	newLines := splitLines(in.NewContent)

	oldByKey := make(map[string]funcparser.Function, len(in.OldFunctions))
	for _, fn := range in.OldFunctions {
		if _, exists := oldByKey[fn.Key()]; !exists {
			oldByKey[fn.Key()] = fn
		}
	}
	newKeys := make(map[string]bool, len(in.NewFunctions))
	for _, fn := range in.NewFunctions {
		newKeys[fn.Key()] = true
	}

	result := &FileResult{}
	matchedOldSpans := make(map[[2]int]bool)

	// First pass: new-version functions whose span intersects the added or
	// replaced lines.
	for _, fn := range in.NewFunctions {
		if !anyLineInSpan(newChanged, fn) {
			continue
		}

		oldFn, found := oldByKey[fn.Key()]
		if !found {
			// Provisional: the rename matcher may pair it with a deletion.
			result.Functions = append(result.Functions, &model.FunctionChange{
				Name:       fn.Name,
				File:       in.Path,
				Type:       string(fn.Kind),
				ChangeType: model.FunctionAdded,
				NewStart:   lang.Ptr(fn.StartLine),
				NewEnd:     lang.Ptr(fn.EndLine),
				Changes:    fn.Span(),
				Diff:       diff.ExtractFunctionDiff(in.Diff, fn.StartLine, fn.EndLine),
				Source:     functionText(newLines, fn),
			})
			continue
		}

		matchedOldSpans[[2]int{oldFn.StartLine, oldFn.EndLine}] = true
		if fc := d.buildModification(in, oldFn, fn, oldLines, newLines); fc != nil {
			result.Functions = append(result.Functions, fc)
		}
	}

	// Second pass: old-version functions with deleted lines that the first
	// pass did not account for. A function whose key survives in the new
	// version is a pure-deletion modification, not a removal.
	for _, fn := range in.OldFunctions {
		if matchedOldSpans[[2]int{fn.StartLine, fn.EndLine}] {
			continue
		}
		if !anyLineInSpan(origChanged, fn) {
			continue
		}

		if newKeys[fn.Key()] {
			newFn, ok := findByKey(in.NewFunctions, fn.Key())
			if !ok {
				continue
			}
			matchedOldSpans[[2]int{fn.StartLine, fn.EndLine}] = true
			if fc := d.buildModification(in, fn, newFn, oldLines, newLines); fc != nil {
				result.Functions = append(result.Functions, fc)
			}
			continue
		}

		result.Functions = append(result.Functions, &model.FunctionChange{
			Name:          fn.Name,
			File:          in.Path,
			Type:          string(fn.Kind),
			ChangeType:    model.FunctionDeleted,
			OriginalStart: lang.Ptr(fn.StartLine),
			OriginalEnd:   lang.Ptr(fn.EndLine),
			Changes:       fn.Span(),
			Source:        functionText(oldLines, fn),
		})
	}

	result.NonFunctionArea = collectNonFunctionArea(in, origChanged, newChanged)
	return result
}

// buildModification classifies a matched (old, new) pair and counts its
// changed lines. A function whose boundary merely shifted, with no changed
// line attributable to it, is not reported.
func (d *Detector) buildModification(in FileInput, oldFn, newFn funcparser.Function, oldLines, newLines []string) *model.FunctionChange {
	fnDiff := diff.ExtractFunctionDiff(in.Diff, newFn.StartLine, newFn.EndLine)
	changes := diff.CountChanges(fnDiff)
	if changes == 0 {
		fnDiff = diff.ExtractFunctionDiff(in.Diff, oldFn.StartLine, oldFn.EndLine)
		changes = diff.CountChanges(fnDiff)
	}
	if changes == 0 {
		return nil
	}

	return &model.FunctionChange{
		Name:          newFn.Name,
		File:          in.Path,
		Type:          string(newFn.Kind),
		ChangeType:    classifyModification(oldFn, newFn, oldLines, newLines),
		OriginalStart: lang.Ptr(oldFn.StartLine),
		OriginalEnd:   lang.Ptr(oldFn.EndLine),
		NewStart:      lang.Ptr(newFn.StartLine),
		NewEnd:        lang.Ptr(newFn.EndLine),
		Changes:       changes,
		Diff:          fnDiff,
	}
}

func collectNonFunctionArea(in FileInput, origChanged, newChanged []int) *AreaChange {
	area := &AreaChange{File: in.Path}

	for _, line := range origChanged {
		if !anyFunctionContains(in.OldFunctions, line) {
			area.OldLines = append(area.OldLines, line)
		}
	}
	for _, line := range newChanged {
		if !anyFunctionContains(in.NewFunctions, line) {
			area.NewLines = append(area.NewLines, line)
		}
	}

	if len(area.OldLines) == 0 && len(area.NewLines) == 0 {
		return nil
	}
	return area
}

func anyLineInSpan(lines []int, fn funcparser.Function) bool {
	for _, line := range lines {
		if fn.ContainsLine(line) {
			return true
		}
	}
	return false
}

func anyFunctionContains(functions []funcparser.Function, line int) bool {
	for _, fn := range functions {
		if fn.ContainsLine(line) {
			return true
		}
	}
	return false
}

func findByKey(functions []funcparser.Function, key string) (funcparser.Function, bool) {
	for _, fn := range functions {
		if fn.Key() == key {
			return fn, true
		}
	}
	return funcparser.Function{}, false
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// functionText slices the function's full source text out of the file.
func functionText(lines []string, fn funcparser.Function) string {
	if fn.StartLine < 1 || fn.EndLine > len(lines) || fn.StartLine > fn.EndLine {
		return ""
	}
	return strings.Join(lines[fn.StartLine-1:fn.EndLine], "\n")
}
