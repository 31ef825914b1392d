package ops

import (
	"fmt"
	"time"

	"github.com/tetherdocs/tether/internal/anchor"
	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/diff"
	"github.com/tetherdocs/tether/internal/errors"
)

// Sync status values.
const (
	StatusRegistered = "registered" // first version of a new artifact
	StatusUnchanged  = "unchanged"  // content hash matches the latest version
	StatusSynced     = "synced"     // new version committed
)

// SyncInput contains parameters for the Sync operation. Content is the
// full snapshot of the document; the engine never reads the file itself.
type SyncInput struct {
	RunID   string
	Path    string
	Content string
}

// SyncOutput contains the result of the Sync operation.
type SyncOutput struct {
	Status            string `json:"status"`
	Version           int64  `json:"version"`
	Title             string `json:"title"`
	LinesAdded        int    `json:"lines_added"`
	LinesRemoved      int    `json:"lines_removed"`
	CommentsRelocated int    `json:"comments_relocated"`
	CommentsOrphaned  int    `json:"comments_orphaned"`
}

// Sync accepts a content snapshot for an artifact path, registering the
// artifact on first contact, short-circuiting when content is unchanged,
// and otherwise committing a new version plus relocated comment anchors
// as one transaction. Syncs on the same artifact are serialized; a
// version-number race with another process is retried a bounded number of
// times before surfacing BUSY.
func Sync(env *Env, input SyncInput) (*SyncOutput, error) {
	runID := normalizeRun(input.RunID)
	path, err := validatePath(input.Path)
	if err != nil {
		return nil, err
	}

	release, err := env.Locks.Acquire(lockKey(runID, path), env.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	hash := artifact.Hash(input.Content)
	retries := env.syncRetries()
	for attempt := 0; attempt < retries; attempt++ {
		out, err := syncOnce(env, runID, path, input.Content, hash)
		if err == db.ErrVersionConflict || err == db.ErrUniqueConstraint {
			// Another writer claimed the version number (or created the
			// artifact) first. Re-read and recompute against the new
			// latest state.
			continue
		}
		return out, err
	}
	return nil, errors.NewBusy(fmt.Sprintf("version conflict persisted after %d attempts", retries))
}

// syncOnce runs one attempt of the hash/diff/relocate/commit sequence
// inside a single transaction.
func syncOnce(env *Env, runID, path, content, hash string) (*SyncOutput, error) {
	tx, err := env.DB.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	art, err := db.GetArtifactByPath(tx, runID, path)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	if art == nil {
		id, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		art = &artifact.Artifact{
			ID:        id,
			RunID:     runID,
			Path:      path,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.InsertArtifact(tx, art); err != nil {
			return nil, err
		}
	}

	latest, err := db.GetLatestVersion(tx, art.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.ContentHash == hash {
		// No-op sync: no new version row, prior state untouched.
		title := ""
		if art.Title != nil {
			title = *art.Title
		}
		return &SyncOutput{Status: StatusUnchanged, Version: latest.Version, Title: title}, nil
	}

	var alignment *diff.Alignment
	status := StatusRegistered
	newVersion := int64(1)
	added, removed := 0, 0
	if latest != nil {
		alignment = diff.Align(diff.Lines(latest.Content), diff.Lines(content))
		added = alignment.LinesAdded
		removed = alignment.LinesRemoved
		newVersion = latest.Version + 1
		status = StatusSynced
	}

	title := artifact.TitleFromContent(content, path)

	if err := db.InsertVersion(tx, &artifact.Version{
		ArtifactID:   art.ID,
		Version:      newVersion,
		Content:      content,
		ContentHash:  hash,
		LinesAdded:   added,
		LinesRemoved: removed,
		SyncedAt:     now,
	}); err != nil {
		return nil, err
	}

	relocated, orphaned, err := relocateComments(env, tx, art.ID, content, alignment)
	if err != nil {
		return nil, err
	}

	if err := db.UpdateArtifactVersion(tx, art.ID, newVersion, title, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &SyncOutput{
		Status:            status,
		Version:           newVersion,
		Title:             title,
		LinesAdded:        added,
		LinesRemoved:      removed,
		CommentsRelocated: relocated,
		CommentsOrphaned:  orphaned,
	}, nil
}

// relocateComments re-anchors every open comment against the new content.
// Resolved comments are never relocated. An orphaned comment keeps its
// last good anchor and is retried on the next sync.
func relocateComments(env *Env, tx db.DBTX, artifactID, content string, alignment *diff.Alignment) (relocated, orphaned int, err error) {
	open, err := db.ListComments(tx, artifactID, artifact.StatusOpen)
	if err != nil {
		return 0, 0, err
	}

	for _, c := range open {
		hint := c.LineHint
		if alignment != nil {
			if mapped := alignment.MapOldLine(c.LineHint); mapped > 0 {
				hint = mapped
			}
		}

		a := &anchor.Anchor{
			TargetText: c.TargetText,
			Prefix:     c.PrefixContext,
			Suffix:     c.SuffixContext,
			LineHint:   c.LineHint,
		}
		m, ok := a.Relocate(content, hint)
		if !ok {
			if err := db.MarkCommentOrphaned(tx, c.ID); err != nil {
				return 0, 0, err
			}
			orphaned++
			continue
		}

		prefix, suffix := anchor.Extract(content, m.Offset, len(c.TargetText), env.contextRadius())
		if err := db.UpdateCommentAnchor(tx, c.ID, m.Line, prefix, suffix, false); err != nil {
			return 0, 0, err
		}
		relocated++
	}
	return relocated, orphaned, nil
}
