package db

import (
	"database/sql"
	"strings"

	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.TetherError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertArtifact stores a new artifact row.
func InsertArtifact(q DBTX, a *artifact.Artifact) error {
	query := `
		INSERT INTO artifacts (id, run_id, path, title, current_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.Exec(query,
		a.ID, a.RunID, a.Path, toNullString(a.Title), a.CurrentVersion, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetArtifactByPath retrieves an artifact by its current path within a run.
// Returns (nil, nil) when no artifact is registered at the path.
func GetArtifactByPath(q DBTX, runID, path string) (*artifact.Artifact, error) {
	query := `
		SELECT id, run_id, path, title, current_version, created_at, updated_at
		FROM artifacts
		WHERE run_id = ? AND path = ?
	`
	a, err := scanArtifact(q.QueryRow(query, runID, path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return a, nil
}

// GetArtifactByID retrieves an artifact by id.
func GetArtifactByID(q DBTX, id string) (*artifact.Artifact, error) {
	query := `
		SELECT id, run_id, path, title, current_version, created_at, updated_at
		FROM artifacts
		WHERE id = ?
	`
	a, err := scanArtifact(q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("artifact", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return a, nil
}

// UpdateArtifactVersion advances an artifact's current version and title.
func UpdateArtifactVersion(q DBTX, id string, version int64, title string, updatedAt int64) error {
	query := `
		UPDATE artifacts
		SET current_version = ?, title = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.Exec(query, version, title, updatedAt, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRowsAffected(result, "artifact", id)
}

// UpdateArtifactPath changes an artifact's path without altering identity.
func UpdateArtifactPath(q DBTX, id, newPath string, updatedAt int64) error {
	query := `
		UPDATE artifacts
		SET path = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.Exec(query, newPath, updatedAt, id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return requireRowsAffected(result, "artifact", id)
}

// ArtifactSummary is one row of the registry list view. Status is filled
// in by the caller via the filesystem collaborator.
type ArtifactSummary struct {
	Path         string  `json:"path"`
	Status       string  `json:"status"`
	Title        *string `json:"title,omitempty"`
	CommentCount int     `json:"comment_count"`
	VersionCount int     `json:"version_count"`
}

// ListArtifacts returns all artifacts in a run ordered by path, with
// comment and version counts aggregated.
func ListArtifacts(q DBTX, runID string) ([]ArtifactSummary, error) {
	query := `
		SELECT a.path, a.title,
			(SELECT COUNT(*) FROM comments c WHERE c.artifact_id = a.id),
			(SELECT COUNT(*) FROM versions v WHERE v.artifact_id = a.id)
		FROM artifacts a
		WHERE a.run_id = ?
		ORDER BY a.path ASC
	`
	rows, err := q.Query(query, runID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []ArtifactSummary
	for rows.Next() {
		var item ArtifactSummary
		var title sql.NullString
		if err := rows.Scan(&item.Path, &title, &item.CommentCount, &item.VersionCount); err != nil {
			return nil, errors.NewInternal(err)
		}
		item.Title = fromNullString(title)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// scanArtifact scans a single row into an Artifact struct.
func scanArtifact(row *sql.Row) (*artifact.Artifact, error) {
	var (
		a     artifact.Artifact
		title sql.NullString
	)
	err := row.Scan(&a.ID, &a.RunID, &a.Path, &title, &a.CurrentVersion, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Title = fromNullString(title)
	return &a, nil
}

// requireRowsAffected converts a zero-row UPDATE into a NotFound error.
func requireRowsAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(kind, id)
	}
	return nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
