package ops

import (
	"time"

	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/errors"
)

// MoveInput contains parameters for the Move operation. With RefsOnly the
// caller asserts the file has already been relocated and only the stored
// path is updated; otherwise the file is moved via the collaborator first.
type MoveInput struct {
	RunID    string
	OldPath  string
	NewPath  string
	RefsOnly bool
}

// MoveOutput contains the result of the Move operation.
type MoveOutput struct {
	FileMoved         bool `json:"file_moved"`
	CommentsPreserved int  `json:"comments_preserved"`
}

// Move changes an artifact's path without altering its identity, version
// history, or comments. Comments are anchored to content, not path, so
// they remain valid without re-anchoring.
func Move(env *Env, input MoveInput) (*MoveOutput, error) {
	runID := normalizeRun(input.RunID)
	oldPath, err := validatePath(input.OldPath)
	if err != nil {
		return nil, err
	}
	newPath, err := validatePath(input.NewPath)
	if err != nil {
		return nil, err
	}
	if oldPath == newPath {
		return nil, errors.NewInvalidRequest("old_path and new_path are identical")
	}

	release, err := env.Locks.Acquire(lockKey(runID, oldPath), env.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := env.DB.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	art, err := db.GetArtifactByPath(tx, runID, oldPath)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, errors.NewNotFound("artifact", oldPath)
	}

	claimed, err := db.GetArtifactByPath(tx, runID, newPath)
	if err != nil {
		return nil, err
	}
	if claimed != nil {
		return nil, errors.NewConflict("new_path already names a different artifact: " + newPath)
	}

	fileMoved := false
	if input.RefsOnly {
		if !env.FS.Exists(newPath) {
			return nil, errors.NewNotFound("file", newPath)
		}
	} else {
		if err := env.FS.Rename(oldPath, newPath); err != nil {
			return nil, errors.NewUnavailable("failed to move file", err)
		}
		fileMoved = true
	}

	if err := db.UpdateArtifactPath(tx, art.ID, newPath, time.Now().Unix()); err != nil {
		undoRename(env, fileMoved, newPath, oldPath)
		return nil, err
	}

	preserved, err := db.CountComments(tx, art.ID)
	if err != nil {
		undoRename(env, fileMoved, newPath, oldPath)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		undoRename(env, fileMoved, newPath, oldPath)
		return nil, errors.NewInternal(err)
	}

	return &MoveOutput{FileMoved: fileMoved, CommentsPreserved: preserved}, nil
}

// undoRename moves the file back when the path update cannot be
// committed, so disk and registry do not diverge. Best-effort.
func undoRename(env *Env, moved bool, from, to string) {
	if moved {
		_ = env.FS.Rename(from, to)
	}
}
