// Package diff computes a line-level alignment between two text snapshots.
// The alignment yields aggregate added/removed counts and a mapping from
// old line numbers to approximate new line numbers, used as relocation
// hints for comment anchors.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Alignment is the result of aligning an old snapshot against a new one.
// Matching blocks come from an LCS-style diff, so the alignment maximizes
// total matched line count.
type Alignment struct {
	LinesAdded   int
	LinesRemoved int

	blocks []difflib.Match // excludes the zero-size sentinel
	oldLen int
	newLen int
}

// Lines splits content into lines for alignment. The split is on "\n"
// only; a trailing newline therefore produces a final empty line, which
// keeps the count symmetric between old and new snapshots.
func Lines(content string) []string {
	return strings.Split(content, "\n")
}

// Align computes the alignment between old and new line sequences.
func Align(old, new []string) *Alignment {
	m := difflib.NewMatcher(old, new)

	matched := 0
	var blocks []difflib.Match
	for _, b := range m.GetMatchingBlocks() {
		if b.Size == 0 {
			continue // sentinel
		}
		blocks = append(blocks, b)
		matched += b.Size
	}

	return &Alignment{
		LinesAdded:   len(new) - matched,
		LinesRemoved: len(old) - matched,
		blocks:       blocks,
		oldLen:       len(old),
		newLen:       len(new),
	}
}

// MapOldLine maps a 1-based old line number to an approximate 1-based new
// line number. A line inside an unchanged region maps directly; a line
// inside a changed region maps to the nearest boundary of the surrounding
// unchanged regions. Returns 0 when there is no unchanged region at all.
func (a *Alignment) MapOldLine(n int) int {
	if n < 1 || len(a.blocks) == 0 {
		return 0
	}
	i := n - 1 // 0-based
	if i >= a.oldLen {
		i = a.oldLen - 1
	}

	bestDist := -1
	bestLine := 0
	for _, b := range a.blocks {
		if i >= b.A && i < b.A+b.Size {
			return b.B + (i - b.A) + 1
		}
		// Distance to this block's nearest edge, and the new-side line
		// that edge corresponds to.
		var dist, line int
		if i < b.A {
			dist = b.A - i
			line = b.B + 1
		} else {
			dist = i - (b.A + b.Size - 1)
			line = b.B + b.Size
		}
		// Strict < keeps the earlier (preceding) boundary on ties, which
		// minimizes churn in hints.
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			bestLine = line
		}
	}
	return bestLine
}
