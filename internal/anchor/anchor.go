// Package anchor implements the text-based reference binding a comment to
// document content: the exact quoted target text plus surrounding context
// and a cached line hint. Relocation re-finds the target in new content
// after edits; offsets and line numbers are never the source of truth.
package anchor

import (
	"strings"

	"github.com/xrash/smetrics"
)

// DefaultContextRadius is the number of bytes of surrounding text captured
// on each side of the target when an anchor is created or refreshed.
const DefaultContextRadius = 32

// Jaro-Winkler parameters (standard values).
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Relative weight of context similarity vs. hint proximity when scoring
// candidate occurrences.
const (
	contextWeight   = 0.9
	proximityWeight = 0.1
)

// Anchor is a comment's attachment to text.
type Anchor struct {
	TargetText string
	Prefix     string
	Suffix     string
	LineHint   int // 1-based; 0 = unknown
}

// Match is a resolved anchor position in a content buffer.
type Match struct {
	Offset int
	Line   int // 1-based
}

// Relocate searches content for the anchor's target text. A single exact
// occurrence relocates unconditionally. Multiple occurrences are scored by
// context similarity and proximity to hint; ties break by proximity, then
// earliest offset. Zero occurrences returns ok=false (the comment is
// orphaned for this sync, and retried on the next one).
func (a *Anchor) Relocate(content string, hint int) (Match, bool) {
	offsets := occurrences(content, a.TargetText)
	if len(offsets) == 0 {
		return Match{}, false
	}
	if len(offsets) == 1 {
		return Match{Offset: offsets[0], Line: LineAt(content, offsets[0])}, true
	}

	radius := max(len(a.Prefix), len(a.Suffix))
	if radius == 0 {
		radius = DefaultContextRadius
	}

	best := Match{Offset: -1}
	bestScore := -1.0
	bestDist := -1
	for _, off := range offsets {
		line := LineAt(content, off)
		prefix, suffix := Extract(content, off, len(a.TargetText), radius)

		ctx := (similarity(a.Prefix, prefix) + similarity(a.Suffix, suffix)) / 2
		dist := hintDistance(line, hint)
		prox := 0.0
		if hint > 0 {
			prox = 1.0 / float64(1+dist)
		}
		score := contextWeight*ctx + proximityWeight*prox

		switch {
		case score > bestScore+1e-9:
		case score > bestScore-1e-9 && hint > 0 && dist < bestDist:
			// Equal score: nearest to hint wins. Earliest offset wins the
			// remaining ties because offsets are scanned in order.
		default:
			continue
		}
		best = Match{Offset: off, Line: line}
		bestScore = score
		bestDist = dist
	}
	return best, true
}

// Extract returns the context strings surrounding [offset, offset+length).
func Extract(content string, offset, length, radius int) (prefix, suffix string) {
	start := offset - radius
	if start < 0 {
		start = 0
	}
	end := offset + length + radius
	if end > len(content) {
		end = len(content)
	}
	return content[start:offset], content[offset+length : end]
}

// LineAt returns the 1-based line number containing the byte offset.
func LineAt(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + strings.Count(content[:offset], "\n")
}

// occurrences returns all byte offsets of target in content, in order.
func occurrences(content, target string) []int {
	if target == "" {
		return nil
	}
	var offsets []int
	from := 0
	for {
		i := strings.Index(content[from:], target)
		if i < 0 {
			return offsets
		}
		offsets = append(offsets, from+i)
		from += i + 1
	}
}

// similarity scores two context strings in [0,1]. Two empty strings are a
// perfect match; one empty side scores zero.
func similarity(stored, found string) float64 {
	if stored == "" && found == "" {
		return 1
	}
	if stored == "" || found == "" {
		return 0
	}
	return smetrics.JaroWinkler(stored, found, jwBoostThreshold, jwPrefixSize)
}

func hintDistance(line, hint int) int {
	if hint <= 0 {
		return 0
	}
	d := line - hint
	if d < 0 {
		return -d
	}
	return d
}
