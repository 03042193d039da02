package diff

import (
	"fmt"
	"sort"
	"strings"
)

// ChangedLineNumbers returns the changed line numbers of both file versions
// in ascending order: lines deleted from the old version and lines added to
// the new version.
func ChangedLineNumbers(d *FileDiff) (orig, updated []int) {
	orig = sortedKeys(d.OriginalChanges)
	updated = sortedKeys(d.NewChanges)
	return orig, updated
}

// MapOldToNew maps a line number of the old file version to its counterpart
// in the new version. Returns false when the line was deleted or replaced,
// so it has no counterpart.
func MapOldToNew(d *FileDiff, oldLine int) (int, bool) {
	if _, changed := d.OriginalChanges[oldLine]; changed {
		return 0, false
	}

	offset := 0
	for _, h := range d.Hunks {
		before, inside := hunkPosition(oldLine, h.Header.OldStart, h.Header.OldCount)
		if before {
			return oldLine + offset, true
		}
		if inside {
			return walkHunkOldToNew(h, oldLine)
		}
		offset += h.Header.NewCount - h.Header.OldCount
	}
	// Beyond all hunks: shifted by the total net offset.
	return oldLine + offset, true
}

// MapNewToOld is the inverse of MapOldToNew. Returns false for inserted lines.
func MapNewToOld(d *FileDiff, newLine int) (int, bool) {
	if _, changed := d.NewChanges[newLine]; changed {
		return 0, false
	}

	offset := 0
	for _, h := range d.Hunks {
		before, inside := hunkPosition(newLine, h.Header.NewStart, h.Header.NewCount)
		if before {
			return newLine - offset, true
		}
		if inside {
			return walkHunkNewToOld(h, newLine)
		}
		offset += h.Header.NewCount - h.Header.OldCount
	}
	return newLine - offset, true
}

// GenerateLineMap eagerly builds the new-to-old mapping for every new-file
// line from 1 to the last line touched by any hunk. Inserted lines are absent
// from the returned map. Use it when many lookups are needed.
func GenerateLineMap(d *FileDiff) map[int]int {
	lineMap := make(map[int]int)

	lastTouched := 0
	for _, h := range d.Hunks {
		end := h.Header.NewStart + h.Header.NewCount - 1
		if end > lastTouched {
			lastTouched = end
		}
	}

	for n := 1; n <= lastTouched; n++ {
		if old, ok := MapNewToOld(d, n); ok {
			lineMap[n] = old
		}
	}
	return lineMap
}

// hunkPosition locates line relative to a hunk side given its start and
// count. A zero-count side occupies no lines: everything at or before start
// is in front of the hunk.
func hunkPosition(line, start, count int) (before, inside bool) {
	if count == 0 {
		return line <= start, false
	}
	if line < start {
		return true, false
	}
	return false, line <= start+count-1
}

func walkHunkOldToNew(h Hunk, oldLine int) (int, bool) {
	o, n := h.Header.OldStart, h.Header.NewStart
	for _, line := range h.Lines {
		switch marker(line) {
		case '-':
			if o == oldLine {
				return 0, false
			}
			o++
		case '+':
			n++
		case ' ':
			if o == oldLine {
				return n, true
			}
			o++
			n++
		}
	}
	return 0, false
}

func walkHunkNewToOld(h Hunk, newLine int) (int, bool) {
	o, n := h.Header.OldStart, h.Header.NewStart
	for _, line := range h.Lines {
		switch marker(line) {
		case '-':
			o++
		case '+':
			if n == newLine {
				return 0, false
			}
			n++
		case ' ':
			if n == newLine {
				return o, true
			}
			o++
			n++
		}
	}
	return 0, false
}

func marker(line string) byte {
	if line == "" {
		return ' '
	}
	return line[0]
}

// ExtractFunctionDiff slices the file diff down to the hunk lines whose old
// or new line number falls inside [startLine, endLine], synthesizing one
// header per intersecting hunk. Returns "" when no hunk intersects the span.
func ExtractFunctionDiff(d *FileDiff, startLine, endLine int) string {
	var b strings.Builder

	for _, h := range d.Hunks {
		var kept []string
		o, n := h.Header.OldStart, h.Header.NewStart
		firstOld, firstNew := 0, 0
		oldCount, newCount := 0, 0

		for _, line := range h.Lines {
			var include bool
			switch marker(line) {
			case '-':
				include = startLine <= o && o <= endLine
				if include {
					if firstOld == 0 {
						firstOld = o
					}
					oldCount++
				}
				o++
			case '+':
				include = startLine <= n && n <= endLine
				if include {
					if firstNew == 0 {
						firstNew = n
					}
					newCount++
				}
				n++
			case ' ':
				include = (startLine <= o && o <= endLine) || (startLine <= n && n <= endLine)
				if include {
					if firstOld == 0 {
						firstOld = o
					}
					if firstNew == 0 {
						firstNew = n
					}
					oldCount++
					newCount++
				}
				o++
				n++
			default:
				continue
			}
			if include {
				kept = append(kept, line)
			}
		}

		if len(kept) == 0 {
			continue
		}
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", firstOld, oldCount, firstNew, newCount)
		b.WriteString(strings.Join(kept, "\n"))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// CountChanges counts the added and removed lines of a diff fragment.
func CountChanges(diffText string) int {
	if diffText == "" {
		return 0
	}
	count := 0
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			count++
		}
	}
	return count
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
