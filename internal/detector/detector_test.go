package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doublelei/DiffScope/internal/diff"
	"github.com/doublelei/DiffScope/internal/funcparser"
	"github.com/doublelei/DiffScope/internal/model"
)

func parsePatch(t *testing.T, oldPath, newPath, patch string) *diff.FileDiff {
	t.Helper()
	fd, err := diff.NewParser().ParseFile(oldPath, newPath, patch)
	require.NoError(t, err)
	return fd
}

func fn(name string, kind funcparser.Kind, start, end int) funcparser.Function {
	return funcparser.Function{Name: name, Kind: kind, StartLine: start, EndLine: end}
}

func TestDetectBodyChange(t *testing.T) {
	oldContent := "def foo():\n    return 1\n"
	newContent := "def foo():\n    return 2\n"
	patch := "@@ -1,2 +1,2 @@\n def foo():\n-    return 1\n+    return 2"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	})

	require.Len(t, result.Functions, 1)
	fc := result.Functions[0]
	assert.Equal(t, model.FunctionBodyChanged, fc.ChangeType)
	assert.Equal(t, "foo", fc.Name)
	assert.Equal(t, 2, fc.Changes)
	assert.Equal(t, 1, *fc.OriginalStart)
	assert.Equal(t, 2, *fc.OriginalEnd)
	assert.Equal(t, 1, *fc.NewStart)
	assert.Equal(t, 2, *fc.NewEnd)
	assert.Contains(t, fc.Diff, "-    return 1")
	assert.Nil(t, result.NonFunctionArea)
}

func TestDetectSignatureChange(t *testing.T) {
	oldContent := "def foo(a):\n    return a\n"
	newContent := "def foo(a, b):\n    return a\n"
	patch := "@@ -1,2 +1,2 @@\n-def foo(a):\n+def foo(a, b):\n     return a"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, model.FunctionSignatureChanged, result.Functions[0].ChangeType)
}

func TestSignatureChangeWinsOverDocstringAndBody(t *testing.T) {
	oldContent := "def foo(a):\n    \"\"\"Old doc.\"\"\"\n    return 1\n"
	newContent := "def foo(a, b):\n    \"\"\"New doc.\"\"\"\n    return 2\n"
	patch := "@@ -1,3 +1,3 @@\n-def foo(a):\n-    \"\"\"Old doc.\"\"\"\n-    return 1\n+def foo(a, b):\n+    \"\"\"New doc.\"\"\"\n+    return 2"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, model.FunctionSignatureChanged, result.Functions[0].ChangeType)
}

func TestSignatureIndentationChangeIsSignatureChange(t *testing.T) {
	// The first line is compared without normalization: re-indenting a
	// signature is still a signature change.
	oldContent := "def foo():\n    return 1\n"
	newContent := "  def foo():\n    return 1\n"
	patch := "@@ -1,1 +1,1 @@\n-def foo():\n+  def foo():"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, model.FunctionSignatureChanged, result.Functions[0].ChangeType)
}

func TestDetectDocstringOnlyChange(t *testing.T) {
	oldContent := "def foo():\n    \"\"\"Old doc.\"\"\"\n    return 1\n"
	newContent := "def foo():\n    \"\"\"New doc.\"\"\"\n    return 1\n"
	patch := "@@ -1,3 +1,3 @@\n def foo():\n-    \"\"\"Old doc.\"\"\"\n+    \"\"\"New doc.\"\"\"\n     return 1"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, model.FunctionDocstringChanged, result.Functions[0].ChangeType)
}

func TestDocstringChangePlusBodyChangeIsBodyChange(t *testing.T) {
	oldContent := "def foo():\n    \"\"\"Old doc.\"\"\"\n    return 1\n"
	newContent := "def foo():\n    \"\"\"New doc.\"\"\"\n    return 2\n"
	patch := "@@ -1,3 +1,3 @@\n def foo():\n-    \"\"\"Old doc.\"\"\"\n-    return 1\n+    \"\"\"New doc.\"\"\"\n+    return 2"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, model.FunctionBodyChanged, result.Functions[0].ChangeType)
}

func TestDetectNewFile(t *testing.T) {
	newContent := "def foo():\n    return 1\n\ndef bar():\n    return 2\n"
	patch := "@@ -0,0 +1,5 @@\n+def foo():\n+    return 1\n+\n+def bar():\n+    return 2"
	fd := parsePatch(t, "calc.py", "calc.py", patch)
	fd.IsNew = true

	result := New().DetectFileChanges(FileInput{
		Path:       "calc.py",
		Diff:       fd,
		NewContent: newContent,
		NewFunctions: []funcparser.Function{
			fn("foo", funcparser.KindFunction, 1, 2),
			fn("bar", funcparser.KindFunction, 4, 5),
		},
	})

	require.Len(t, result.Functions, 2)
	for _, fc := range result.Functions {
		assert.Equal(t, model.FunctionAdded, fc.ChangeType)
		assert.Nil(t, fc.OriginalStart)
		assert.NotNil(t, fc.NewStart)
		assert.NotEmpty(t, fc.Source)
	}
	assert.Equal(t, 2, result.Functions[0].Changes)
}

func TestDetectDeletedFile(t *testing.T) {
	oldContent := "def foo():\n    return 1\n"
	patch := "@@ -1,2 +0,0 @@\n-def foo():\n-    return 1"
	fd := parsePatch(t, "calc.py", "calc.py", patch)
	fd.IsDeleted = true

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         fd,
		OldContent:   oldContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	})

	require.Len(t, result.Functions, 1)
	fc := result.Functions[0]
	assert.Equal(t, model.FunctionDeleted, fc.ChangeType)
	assert.Nil(t, fc.NewStart)
	assert.Equal(t, 1, *fc.OriginalStart)
	assert.Equal(t, "def foo():\n    return 1", fc.Source)
}

func TestDetectAddedAndDeletedInModifiedFile(t *testing.T) {
	oldContent := "def keep():\n    return 0\n\ndef gone():\n    return 1\n"
	newContent := "def keep():\n    return 0\n\ndef fresh():\n    return 2\n"
	patch := "@@ -4,2 +4,2 @@\n-def gone():\n-    return 1\n+def fresh():\n+    return 2"

	result := New().DetectFileChanges(FileInput{
		Path:       "calc.py",
		Diff:       parsePatch(t, "calc.py", "calc.py", patch),
		OldContent: oldContent,
		NewContent: newContent,
		OldFunctions: []funcparser.Function{
			fn("keep", funcparser.KindFunction, 1, 2),
			fn("gone", funcparser.KindFunction, 4, 5),
		},
		NewFunctions: []funcparser.Function{
			fn("keep", funcparser.KindFunction, 1, 2),
			fn("fresh", funcparser.KindFunction, 4, 5),
		},
	})

	require.Len(t, result.Functions, 2)

	added := result.Functions[0]
	assert.Equal(t, model.FunctionAdded, added.ChangeType)
	assert.Equal(t, "fresh", added.Name)
	assert.True(t, added.IsProvisional())

	deleted := result.Functions[1]
	assert.Equal(t, model.FunctionDeleted, deleted.ChangeType)
	assert.Equal(t, "gone", deleted.Name)
}

func TestDetectPureLineDeletionInsideFunction(t *testing.T) {
	// Only removed lines, nothing added: the function must surface as a
	// body change, not as a deletion.
	oldContent := "def foo():\n    x = 1\n    return x\n"
	newContent := "def foo():\n    return x\n"
	patch := "@@ -2,1 +1,0 @@\n-    x = 1"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 3)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	})

	require.Len(t, result.Functions, 1)
	fc := result.Functions[0]
	assert.Equal(t, model.FunctionBodyChanged, fc.ChangeType)
	assert.Equal(t, 1, fc.Changes)
}

func TestDetectUntouchedFunctionNotReported(t *testing.T) {
	oldContent := "def a():\n    return 1\n\ndef b():\n    return 2\n"
	newContent := "def a():\n    return 1\n\ndef b():\n    return 3\n"
	patch := "@@ -5,1 +5,1 @@\n-    return 2\n+    return 3"

	result := New().DetectFileChanges(FileInput{
		Path:       "calc.py",
		Diff:       parsePatch(t, "calc.py", "calc.py", patch),
		OldContent: oldContent,
		NewContent: newContent,
		OldFunctions: []funcparser.Function{
			fn("a", funcparser.KindFunction, 1, 2),
			fn("b", funcparser.KindFunction, 4, 5),
		},
		NewFunctions: []funcparser.Function{
			fn("a", funcparser.KindFunction, 1, 2),
			fn("b", funcparser.KindFunction, 4, 5),
		},
	})

	require.Len(t, result.Functions, 1)
	assert.Equal(t, "b", result.Functions[0].Name)
}

func TestDetectNonFunctionAreaChanges(t *testing.T) {
	oldContent := "import os\n\ndef foo():\n    return 1\n"
	newContent := "import sys\n\ndef foo():\n    return 1\n"
	patch := "@@ -1,1 +1,1 @@\n-import os\n+import sys"

	result := New().DetectFileChanges(FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", patch),
		OldContent:   oldContent,
		NewContent:   newContent,
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 3, 4)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 3, 4)},
	})

	assert.Empty(t, result.Functions)
	require.NotNil(t, result.NonFunctionArea)
	assert.Equal(t, []int{1}, result.NonFunctionArea.OldLines)
	assert.Equal(t, []int{1}, result.NonFunctionArea.NewLines)
}

func TestDetectBinaryFileSkipped(t *testing.T) {
	result := New().DetectFileChanges(FileInput{
		Path: "img.png",
		Diff: &diff.FileDiff{IsBinary: true},
	})
	assert.Empty(t, result.Functions)
}

func TestDetectIsIdempotent(t *testing.T) {
	in := FileInput{
		Path:         "calc.py",
		Diff:         parsePatch(t, "calc.py", "calc.py", "@@ -1,2 +1,2 @@\n def foo():\n-    return 1\n+    return 2"),
		OldContent:   "def foo():\n    return 1\n",
		NewContent:   "def foo():\n    return 2\n",
		OldFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
		NewFunctions: []funcparser.Function{fn("foo", funcparser.KindFunction, 1, 2)},
	}

	d := New()
	first := d.DetectFileChanges(in)
	second := d.DetectFileChanges(in)
	assert.Equal(t, first, second)
}
