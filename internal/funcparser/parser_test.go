package funcparser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFunctionsGo(t *testing.T) {
	content := `package main

func Add(a, b int) int {
	return a + b
}

func (s *Server) Start() error {
	return nil
}
`
	functions, err := NewParser().ExtractFunctions(context.Background(), content, LanguageGo)
	require.NoError(t, err)
	require.Len(t, functions, 2)

	add := functions[0]
	assert.Equal(t, "Add", add.Name)
	assert.Equal(t, KindFunction, add.Kind)
	assert.Empty(t, add.Container)
	assert.Equal(t, 3, add.StartLine)
	assert.Equal(t, 5, add.EndLine)

	start := functions[1]
	assert.Equal(t, "Start", start.Name)
	assert.Equal(t, KindMethod, start.Kind)
	assert.Equal(t, "Server", start.Container)
	assert.Equal(t, "Server.Start", start.Key())
	assert.Equal(t, 7, start.StartLine)
	assert.Equal(t, 9, start.EndLine)
}

func TestExtractFunctionsPython(t *testing.T) {
	content := `class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return "hi " + self.name

def helper():
    return 1
`
	functions, err := NewParser().ExtractFunctions(context.Background(), content, LanguagePython)
	require.NoError(t, err)
	require.Len(t, functions, 3)

	init := functions[0]
	assert.Equal(t, "__init__", init.Name)
	assert.Equal(t, "Greeter", init.Container)
	assert.Equal(t, KindConstructor, init.Kind)
	assert.Equal(t, 2, init.StartLine)
	assert.Equal(t, 3, init.EndLine)

	greet := functions[1]
	assert.Equal(t, "greet", greet.Name)
	assert.Equal(t, KindMethod, greet.Kind)
	assert.Equal(t, 5, greet.StartLine)

	helper := functions[2]
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, KindFunction, helper.Kind)
	assert.Empty(t, helper.Container)
	assert.Equal(t, 8, helper.StartLine)
	assert.Equal(t, 9, helper.EndLine)
}

func TestExtractFunctionsArrowInheritsVariableName(t *testing.T) {
	content := `const add = (a, b) => a + b;
`
	functions, err := NewParser().ExtractFunctions(context.Background(), content, LanguageJavaScript)
	require.NoError(t, err)
	require.Len(t, functions, 1)

	assert.Equal(t, "add", functions[0].Name)
	assert.Equal(t, KindClosure, functions[0].Kind)
	assert.Equal(t, 1, functions[0].StartLine)
}

func TestExtractFunctionsNestedKeepOwnRecords(t *testing.T) {
	content := `def outer():
    def inner():
        return 2
    return inner
`
	functions, err := NewParser().ExtractFunctions(context.Background(), content, LanguagePython)
	require.NoError(t, err)
	require.Len(t, functions, 2)

	assert.Equal(t, "outer", functions[0].Name)
	assert.Equal(t, 1, functions[0].StartLine)
	assert.Equal(t, "inner", functions[1].Name)
	assert.Equal(t, 2, functions[1].StartLine)
	assert.Equal(t, 3, functions[1].EndLine)
}

func TestExtractFunctionsUnsupportedLanguage(t *testing.T) {
	_, err := NewParser().ExtractFunctions(context.Background(), "some text", LanguageUnknown)
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestExtractFunctionsEmptyContent(t *testing.T) {
	functions, err := NewParser().ExtractFunctions(context.Background(), "", LanguageGo)
	require.NoError(t, err)
	assert.Empty(t, functions)
}

func TestScanFunctions(t *testing.T) {
	content := `func alpha() {
	x()
}

func beta() {
	y()
}
`
	functions := NewParser().scanFunctions(content, LanguageGo)
	require.Len(t, functions, 2)

	assert.Equal(t, "alpha", functions[0].Name)
	assert.Equal(t, 1, functions[0].StartLine)
	assert.Equal(t, 3, functions[0].EndLine)

	assert.Equal(t, "beta", functions[1].Name)
	assert.Equal(t, 5, functions[1].StartLine)
	assert.Equal(t, 7, functions[1].EndLine)
}

func TestScanFunctionsOpaqueUnit(t *testing.T) {
	// No introducer keyword matches: the whole file is one opaque unit.
	content := "x = 1\ny = 2\nz = 3"
	functions := NewParser().scanFunctions(content, LanguagePython)
	require.Len(t, functions, 1)

	unit := functions[0]
	assert.Equal(t, OpaqueUnitName, unit.Name)
	assert.Equal(t, KindUnit, unit.Kind)
	assert.Equal(t, 1, unit.StartLine)
	assert.Equal(t, 3, unit.EndLine)
}

func TestScanFunctionsNoPatternLanguage(t *testing.T) {
	// C has no introducer keyword, so scanning degrades to the opaque unit.
	content := "int main(void) {\n    return 0;\n}"
	functions := NewParser().scanFunctions(content, LanguageC)
	require.Len(t, functions, 1)
	assert.Equal(t, OpaqueUnitName, functions[0].Name)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"internal/diff/parser.go", LanguageGo},
		{"scripts/run.py", LanguagePython},
		{"web/app.tsx", LanguageTSX},
		{"lib/util.rb", LanguageRuby},
		{"README.md", LanguageUnknown},
		{"Makefile", LanguageUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}
