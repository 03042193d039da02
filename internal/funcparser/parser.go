package funcparser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maxbolgarin/logze/v2"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnsupportedLanguage is returned for files whose language has no
// function-boundary support. Such files are skipped entirely, without
// attempting the heuristic fallback.
var ErrUnsupportedLanguage = errors.New("unsupported language for function parsing")

var promiseChainMethods = map[string]bool{
	"then":    true,
	"catch":   true,
	"finally": true,
}

// Parser is the function boundary adapter: it turns source text into
// canonical Function records using tree-sitter, with a heuristic line
// scanner as fallback for unparsable content.
type Parser struct {
	languages map[Language]*sitter.Language
	log       logze.Logger
}

// NewParser creates a new function boundary parser.
func NewParser() *Parser {
	return &Parser{
		languages: treeSitterLanguages,
		log:       logze.With("component", "funcparser"),
	}
}

// ExtractFunctions returns the canonical function records of one file
// version. The result is ordered by document position and deduplicated by
// span; nested functions keep their own records.
//
// When tree-sitter cannot parse the content, the heuristic scanner takes
// over; when even that finds nothing, the whole file becomes a single opaque
// unit, so the detector always has at least one span to intersect against.
func (p *Parser) ExtractFunctions(ctx context.Context, content string, language Language) ([]Function, error) {
	tsLang, ok := p.languages[language]
	if !ok {
		return nil, ErrUnsupportedLanguage
	}
	if content == "" {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)

	src := []byte(content)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		p.log.Warn("tree-sitter parse failed, using heuristic scanner", "language", language, "error", err)
		return p.scanFunctions(content, language), nil
	}

	root := tree.RootNode()
	functions := p.collectFunctions(root, src, language)
	if len(functions) == 0 && root.HasError() {
		p.log.Debug("no functions in partially parsed tree, using heuristic scanner", "language", language)
		return p.scanFunctions(content, language), nil
	}
	return functions, nil
}

// collectFunctions walks the tree once, carrying the ancestor chain of each
// node as an explicit slice instead of back-pointers.
func (p *Parser) collectFunctions(root *sitter.Node, src []byte, language Language) []Function {
	funcTypes := functionNodeTypes[language]
	containerTypes := containerNodeTypes[language]

	var functions []Function
	seen := make(map[[2]int]bool)

	var walk func(node *sitter.Node, ancestors []*sitter.Node)
	walk = func(node *sitter.Node, ancestors []*sitter.Node) {
		if funcTypes[node.Type()] {
			fn := p.buildFunction(node, ancestors, src, language, containerTypes)
			span := [2]int{fn.StartLine, fn.EndLine}
			if !seen[span] {
				seen[span] = true
				functions = append(functions, fn)
			}
		}

		chain := append(ancestors, node)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child != nil {
				walk(child, chain)
			}
		}
	}
	walk(root, nil)

	return functions
}

func (p *Parser) buildFunction(node *sitter.Node, ancestors []*sitter.Node, src []byte, language Language, containerTypes map[string]bool) Function {
	fn := Function{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}

	fn.Container = p.containerName(node, ancestors, src, language, containerTypes)
	fn.Name = p.functionName(node, ancestors, src)
	fn.Kind = classifyKind(node.Type(), fn.Name, fn.Container)

	return fn
}

// functionName recovers the function's identifier, or synthesizes a unique
// name for anonymous functions so they stay addressable in output.
func (p *Parser) functionName(node *sitter.Node, ancestors []*sitter.Node, src []byte) string {
	if name := namedChildText(node, "name", src); name != "" {
		return name
	}

	// C/C++ keep the identifier inside a declarator chain.
	if declarator := node.ChildByFieldName("declarator"); declarator != nil {
		if name := firstIdentifier(declarator, src); name != "" {
			return name
		}
	}

	// An anonymous function assigned to a variable inherits its name.
	if len(ancestors) > 0 {
		parent := ancestors[len(ancestors)-1]
		switch parent.Type() {
		case "variable_declarator", "assignment", "assignment_expression":
			if name := namedChildText(parent, "name", src); name != "" {
				return name
			}
			if left := parent.ChildByFieldName("left"); left != nil {
				if name := firstIdentifier(left, src); name != "" {
					return name
				}
			}
		case "pair", "public_field_definition", "field_definition":
			if key := namedChildText(parent, "key", src); key != "" {
				return key
			}
			if name := namedChildText(parent, "name", src); name != "" {
				return name
			}
		}
	}

	// A callback passed to a promise-like chain gets a descriptive name from
	// the call site. Best-effort annotation to keep such functions matchable.
	if method, ok := promiseChainMethod(ancestors, src); ok {
		return fmt.Sprintf("%s_handler_%d", method, int(node.StartPoint().Row)+1)
	}

	return fmt.Sprintf("anonymous_func_%d_%d", int(node.StartPoint().Row)+1, int(node.StartPoint().Column))
}

// containerName finds the nearest enclosing class-like ancestor. Go methods
// use the receiver type instead, as Go has no enclosing class node.
func (p *Parser) containerName(node *sitter.Node, ancestors []*sitter.Node, src []byte, language Language, containerTypes map[string]bool) string {
	if language == LanguageGo && node.Type() == "method_declaration" {
		if receiver := node.ChildByFieldName("receiver"); receiver != nil {
			return firstOfType(receiver, "type_identifier", src)
		}
		return ""
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		if containerTypes[ancestors[i].Type()] {
			if name := namedChildText(ancestors[i], "name", src); name != "" {
				return name
			}
			// Rust impl blocks carry the type under "type" instead of "name".
			if name := namedChildText(ancestors[i], "type", src); name != "" {
				return name
			}
			return ""
		}
	}
	return ""
}

// promiseChainMethod checks whether the function is the argument of a
// .then/.catch/.finally style chaining call.
func promiseChainMethod(ancestors []*sitter.Node, src []byte) (string, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Type() != "call_expression" {
			continue
		}
		callee := ancestors[i].ChildByFieldName("function")
		if callee == nil || callee.Type() != "member_expression" {
			return "", false
		}
		property := namedChildText(callee, "property", src)
		if promiseChainMethods[property] {
			return property, true
		}
		return "", false
	}
	return "", false
}

func classifyKind(nodeType, name, container string) Kind {
	if closureNodeTypes[nodeType] {
		return KindClosure
	}
	if nodeType == "constructor_declaration" {
		return KindConstructor
	}
	if container != "" {
		switch name {
		case "__init__", "initialize", "__construct", container:
			return KindConstructor
		}
		return KindMethod
	}
	switch nodeType {
	case "method_declaration", "method_definition", "method", "singleton_method":
		return KindMethod
	}
	return KindFunction
}

func namedChildText(node *sitter.Node, field string, src []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(src)
}

// firstIdentifier returns the text of the first identifier-like node in the
// subtree, depth first.
func firstIdentifier(node *sitter.Node, src []byte) string {
	if strings.Contains(node.Type(), "identifier") {
		return node.Content(src)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if name := firstIdentifier(node.NamedChild(i), src); name != "" {
			return name
		}
	}
	return ""
}

// firstOfType returns the text of the first descendant with the exact node
// type.
func firstOfType(node *sitter.Node, nodeType string, src []byte) string {
	if node.Type() == nodeType {
		return node.Content(src)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if name := firstOfType(node.NamedChild(i), nodeType, src); name != "" {
			return name
		}
	}
	return ""
}
