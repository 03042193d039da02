package funcparser

import (
	"regexp"
	"strings"
)

// OpaqueUnitName is the synthetic name of the whole-file unit emitted when no
// function boundary could be recovered at all.
const OpaqueUnitName = "entire_file"

// fallbackPatterns regex-match language-specific function-introducer
// keywords for the heuristic scanner. Languages without an introducer
// keyword (C family) are not scannable and degrade to the opaque unit.
var fallbackPatterns = map[Language]*regexp.Regexp{
	LanguageGo:         regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
	LanguagePython:     regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`),
	LanguageJavaScript: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
	LanguageTypeScript: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
	LanguageTSX:        regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
	LanguagePHP:        regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract)\s+)*function\s+(\w+)`),
	LanguageRuby:       regexp.MustCompile(`^\s*def\s+(?:self\.)?(\w+[?!]?)`),
	LanguageRust:       regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)`),
	LanguageKotlin:     regexp.MustCompile(`^\s*(?:(?:public|private|protected|internal|open|override|suspend|inline)\s+)*fun\s+(?:<[^>]*>\s+)?(\w+)`),
	LanguageScala:      regexp.MustCompile(`^\s*(?:(?:private|protected|override|final|implicit)\s+)*def\s+(\w+)`),
}

// scanFunctions is the last-resort boundary finder: each run of lines
// between two introducer matches becomes one function. If nothing matches,
// the whole file is one opaque unit.
func (p *Parser) scanFunctions(content string, language Language) []Function {
	lines := strings.Split(content, "\n")

	pattern, ok := fallbackPatterns[language]
	if !ok {
		return []Function{opaqueUnit(lines)}
	}

	var functions []Function
	for i, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if n := len(functions); n > 0 {
			functions[n-1].EndLine = lastNonEmptyLine(lines, functions[n-1].StartLine, i-1)
		}
		functions = append(functions, Function{
			Name:      m[1],
			Kind:      KindFunction,
			StartLine: i + 1,
			EndLine:   len(lines),
		})
	}

	if len(functions) == 0 {
		return []Function{opaqueUnit(lines)}
	}
	functions[len(functions)-1].EndLine = lastNonEmptyLine(lines, functions[len(functions)-1].StartLine, len(lines)-1)

	return functions
}

func opaqueUnit(lines []string) Function {
	return Function{
		Name:      OpaqueUnitName,
		Kind:      KindUnit,
		StartLine: 1,
		EndLine:   len(lines),
	}
}

// lastNonEmptyLine returns the 1-indexed number of the last non-blank line
// in lines[start-1..end], never before the function's own start.
func lastNonEmptyLine(lines []string, startLine, end int) int {
	for i := end; i >= startLine-1; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i + 1
		}
	}
	return startLine
}
