// Package artifact defines the domain model for tracked documents:
// artifacts, their immutable version history, and text-anchored comments.
package artifact

// Comment status values. A comment only ever moves from open to resolved.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Artifact is one tracked document. Identity is stable for the artifact's
// lifetime; the path may change via a move without altering identity.
type Artifact struct {
	ID             string  `json:"id"`
	RunID          string  `json:"run_id"`
	Path           string  `json:"path"`
	Title          *string `json:"title,omitempty"`
	CurrentVersion int64   `json:"current_version"` // 0 = never synced
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

// Version is one immutable content snapshot. Version numbers are 1-based
// and gapless per artifact; LinesAdded/LinesRemoved are relative to the
// immediately preceding version (zero for version 1).
type Version struct {
	ArtifactID   string `json:"artifact_id"`
	Version      int64  `json:"version"`
	Content      string `json:"content"`
	ContentHash  string `json:"content_hash"`
	LinesAdded   int    `json:"lines_added"`
	LinesRemoved int    `json:"lines_removed"`
	SyncedAt     int64  `json:"synced_at"`
}

// Comment is a text-anchored annotation. The anchor's target and context
// strings are the source of truth; LineHint is a cache recomputed on every
// sync. An orphaned comment keeps its last good anchor and is retried.
type Comment struct {
	ID            string  `json:"id"`
	ArtifactID    string  `json:"artifact_id"`
	TargetText    string  `json:"target_text"`
	PrefixContext string  `json:"prefix_context"`
	SuffixContext string  `json:"suffix_context"`
	LineHint      int     `json:"line_hint"`
	Body          string  `json:"body"`
	Author        string  `json:"author"`
	Status        string  `json:"status"`
	Orphaned      bool    `json:"orphaned"`
	CreatedAt     int64   `json:"created_at"`
	ResolvedBy    *string `json:"resolved_by,omitempty"`
	ResolvedAt    *int64  `json:"resolved_at,omitempty"`
}
