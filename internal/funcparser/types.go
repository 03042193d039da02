package funcparser

// Kind is the canonical tagged kind of a function-like definition, populated
// once by the adapter so downstream code never inspects raw tree-sitter node
// type strings.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindClosure     Kind = "closure"

	// KindUnit marks the whole-file opaque unit emitted when no real
	// function boundary could be recovered.
	KindUnit Kind = "unit"
)

// Function is the canonical, language-agnostic record of one function or
// method boundary: 1-indexed lines, inclusive end.
type Function struct {
	Name      string
	Container string
	Kind      Kind
	StartLine int
	EndLine   int
}

// Span returns the number of lines the function occupies.
func (f Function) Span() int {
	return f.EndLine - f.StartLine + 1
}

// ContainsLine reports whether the 1-indexed line falls inside the function.
func (f Function) ContainsLine(line int) bool {
	return f.StartLine <= line && line <= f.EndLine
}

// Key identifies a function within one file version for old/new matching.
// Functions keep the same key across a commit unless renamed or moved between
// containers.
func (f Function) Key() string {
	if f.Container == "" {
		return f.Name
	}
	return f.Container + "." + f.Name
}
