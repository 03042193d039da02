package detector

import (
	"strings"

	"github.com/doublelei/DiffScope/internal/funcparser"
	"github.com/doublelei/DiffScope/internal/model"
)

// classifyModification picks the change type for a matched function pair.
// Precedence: a differing first line is a signature change; otherwise a
// docstring-only difference wins; everything else is a body change.
func classifyModification(oldFn, newFn funcparser.Function, oldLines, newLines []string) model.FunctionChangeType {
	oldText := functionText(oldLines, oldFn)
	newText := functionText(newLines, newFn)

	oldFirst, oldRest := splitFirstLine(oldText)
	newFirst, newRest := splitFirstLine(newText)

	// The first line is compared byte-for-byte: an indentation change of a
	// signature (a re-nested method) still counts as a signature change.
	if oldFirst != newFirst {
		return model.FunctionSignatureChanged
	}
	if onlyDocstringChanged(oldRest, newRest) {
		return model.FunctionDocstringChanged
	}
	return model.FunctionBodyChanged
}

func splitFirstLine(text string) (first, rest string) {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx], text[idx+1:]
	}
	return text, ""
}

// onlyDocstringChanged reports whether the two bodies differ exclusively in
// their leading documentation block: the docstrings differ and the remaining
// code is byte-identical after trimming.
func onlyDocstringChanged(oldBody, newBody string) bool {
	oldDoc := extractDocstring(oldBody)
	newDoc := extractDocstring(newBody)
	if oldDoc == newDoc {
		return false
	}
	return stripDocstring(oldBody, oldDoc) == stripDocstring(newBody, newDoc)
}

func stripDocstring(body, doc string) string {
	if doc != "" {
		body = strings.Replace(body, doc, "", 1)
	}
	return strings.TrimSpace(body)
}

// extractDocstring returns the leading documentation block of a function
// body: a triple-quoted Python string, a /* */ block, or an unbroken run of
// line comments. Empty string when the body starts with code.
func extractDocstring(body string) string {
	code := strings.TrimSpace(body)

	for _, quote := range []string{`"""`, "'''"} {
		if strings.HasPrefix(code, quote) {
			if end := strings.Index(code[len(quote):], quote); end >= 0 {
				return code[:end+2*len(quote)]
			}
			return "" // unterminated
		}
	}

	if strings.HasPrefix(code, "/*") {
		if end := strings.Index(code, "*/"); end >= 0 {
			return code[:end+2]
		}
		return ""
	}

	if strings.HasPrefix(code, "//") || strings.HasPrefix(code, "#") {
		var doc []string
		for _, line := range strings.Split(code, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
				doc = append(doc, line)
				continue
			}
			break
		}
		return strings.Join(doc, "\n")
	}

	return ""
}
