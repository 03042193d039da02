package funcparser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a programming language with function-boundary support.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguageCpp        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguagePHP        Language = "php"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
	LanguageKotlin     Language = "kotlin"
	LanguageScala      Language = "scala"

	// LanguageUnknown marks files skipped for function-level analysis.
	LanguageUnknown Language = ""
)

var treeSitterLanguages = map[Language]*sitter.Language{
	LanguageGo:         golang.GetLanguage(),
	LanguagePython:     python.GetLanguage(),
	LanguageJavaScript: javascript.GetLanguage(),
	LanguageTypeScript: typescript.GetLanguage(),
	LanguageTSX:        tsx.GetLanguage(),
	LanguageJava:       java.GetLanguage(),
	LanguageC:          c.GetLanguage(),
	LanguageCpp:        cpp.GetLanguage(),
	LanguageCSharp:     csharp.GetLanguage(),
	LanguagePHP:        php.GetLanguage(),
	LanguageRuby:       ruby.GetLanguage(),
	LanguageRust:       rust.GetLanguage(),
	LanguageKotlin:     kotlin.GetLanguage(),
	LanguageScala:      scala.GetLanguage(),
}

var languageExtensions = map[string]Language{
	".go": LanguageGo,

	".py":  LanguagePython,
	".pyw": LanguagePython,
	".pyi": LanguagePython,

	".js":  LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".jsx": LanguageTSX,
	".ts":  LanguageTypeScript,
	".tsx": LanguageTSX,

	".java": LanguageJava,

	".c": LanguageC,
	".h": LanguageC,

	".cpp": LanguageCpp,
	".cxx": LanguageCpp,
	".cc":  LanguageCpp,
	".hpp": LanguageCpp,
	".hxx": LanguageCpp,
	".hh":  LanguageCpp,

	".cs": LanguageCSharp,

	".php": LanguagePHP,

	".rb":   LanguageRuby,
	".rake": LanguageRuby,

	".rs": LanguageRust,

	".kt":  LanguageKotlin,
	".kts": LanguageKotlin,

	".scala": LanguageScala,
	".sc":    LanguageScala,
}

// functionNodeTypes lists the tree-sitter node types that introduce a
// function-like definition, per language.
var functionNodeTypes = map[Language]map[string]bool{
	LanguageGo: {
		"function_declaration": true,
		"method_declaration":   true,
		"func_literal":         true,
	},
	LanguagePython: {
		"function_definition": true,
		"lambda":              true,
	},
	LanguageJavaScript: {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
		"arrow_function":                 true,
		"function_expression":            true,
	},
	LanguageTypeScript: {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
		"arrow_function":                 true,
		"function_expression":            true,
	},
	LanguageTSX: {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
		"arrow_function":                 true,
		"function_expression":            true,
	},
	LanguageJava: {
		"method_declaration":      true,
		"constructor_declaration": true,
		"lambda_expression":       true,
	},
	LanguageC: {
		"function_definition": true,
	},
	LanguageCpp: {
		"function_definition": true,
		"lambda_expression":   true,
	},
	LanguageCSharp: {
		"method_declaration":       true,
		"constructor_declaration":  true,
		"local_function_statement": true,
	},
	LanguagePHP: {
		"function_definition":           true,
		"method_declaration":            true,
		"anonymous_function_creation_expression": true,
	},
	LanguageRuby: {
		"method":           true,
		"singleton_method": true,
	},
	LanguageRust: {
		"function_item":      true,
		"closure_expression": true,
	},
	LanguageKotlin: {
		"function_declaration": true,
		"lambda_literal":       true,
	},
	LanguageScala: {
		"function_definition": true,
	},
}

// containerNodeTypes lists the node types whose name becomes the container
// (class) name of the functions nested inside them.
var containerNodeTypes = map[Language]map[string]bool{
	LanguagePython: {
		"class_definition": true,
	},
	LanguageJavaScript: {
		"class_declaration": true,
		"class":             true,
	},
	LanguageTypeScript: {
		"class_declaration": true,
		"class":             true,
	},
	LanguageTSX: {
		"class_declaration": true,
		"class":             true,
	},
	LanguageJava: {
		"class_declaration":     true,
		"interface_declaration": true,
		"enum_declaration":      true,
	},
	LanguageCpp: {
		"class_specifier":  true,
		"struct_specifier": true,
	},
	LanguageCSharp: {
		"class_declaration":     true,
		"struct_declaration":    true,
		"interface_declaration": true,
	},
	LanguagePHP: {
		"class_declaration": true,
	},
	LanguageRuby: {
		"class":  true,
		"module": true,
	},
	LanguageRust: {
		"impl_item":  true,
		"trait_item": true,
	},
	LanguageKotlin: {
		"class_declaration":  true,
		"object_declaration": true,
	},
	LanguageScala: {
		"class_definition":  true,
		"object_definition": true,
		"trait_definition":  true,
	},
}

// closureNodeTypes marks the node types that never carry their own name.
var closureNodeTypes = map[string]bool{
	"lambda":            true,
	"lambda_expression": true,
	"lambda_literal":    true,
	"arrow_function":    true,
	"function_expression": true,
	"func_literal":        true,
	"closure_expression":  true,
	"anonymous_function_creation_expression": true,
}

// DetectLanguage detects the programming language from a file path.
// Returns LanguageUnknown for files without function-boundary support.
func DetectLanguage(filePath string) Language {
	if filePath == "" {
		return LanguageUnknown
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if language, ok := languageExtensions[ext]; ok {
		return language
	}
	return LanguageUnknown
}

// IsSupported reports whether function-level analysis is available for the
// language.
func IsSupported(language Language) bool {
	_, ok := treeSitterLanguages[language]
	return ok
}
