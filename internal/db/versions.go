package db

import (
	"database/sql"
	"strconv"

	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/errors"
)

// ErrVersionConflict is returned when an insert races another sync for the
// same version number. The caller re-reads the latest version and retries.
var ErrVersionConflict = &errors.TetherError{
	Code:    errors.ErrConflict,
	Status:  409,
	Message: "version number already assigned",
}

// InsertVersion stores an immutable content snapshot. The (artifact_id,
// version) primary key rejects double assignment of a version number.
func InsertVersion(q DBTX, v *artifact.Version) error {
	query := `
		INSERT INTO versions (artifact_id, version, content, content_hash, lines_added, lines_removed, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.Exec(query,
		v.ArtifactID, v.Version, v.Content, v.ContentHash, v.LinesAdded, v.LinesRemoved, v.SyncedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrVersionConflict
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetLatestVersion returns the highest-numbered version of an artifact, or
// (nil, nil) when the artifact has never been synced.
func GetLatestVersion(q DBTX, artifactID string) (*artifact.Version, error) {
	query := `
		SELECT artifact_id, version, content, content_hash, lines_added, lines_removed, synced_at
		FROM versions
		WHERE artifact_id = ?
		ORDER BY version DESC
		LIMIT 1
	`
	v, err := scanVersion(q.QueryRow(query, artifactID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return v, nil
}

// GetVersion returns one specific version of an artifact.
func GetVersion(q DBTX, artifactID string, version int64) (*artifact.Version, error) {
	query := `
		SELECT artifact_id, version, content, content_hash, lines_added, lines_removed, synced_at
		FROM versions
		WHERE artifact_id = ? AND version = ?
	`
	v, err := scanVersion(q.QueryRow(query, artifactID, version))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("version", strconv.FormatInt(version, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return v, nil
}

// VersionSummary is one row of the version history view. Content is
// deliberately omitted; use GetVersion for the full snapshot.
type VersionSummary struct {
	Version      int64 `json:"version"`
	SyncedAt     int64 `json:"synced_at"`
	LinesAdded   int   `json:"lines_added"`
	LinesRemoved int   `json:"lines_removed"`
}

// ListVersions returns version summaries ascending by version number.
func ListVersions(q DBTX, artifactID string) ([]VersionSummary, error) {
	query := `
		SELECT version, synced_at, lines_added, lines_removed
		FROM versions
		WHERE artifact_id = ?
		ORDER BY version ASC
	`
	rows, err := q.Query(query, artifactID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []VersionSummary
	for rows.Next() {
		var item VersionSummary
		if err := rows.Scan(&item.Version, &item.SyncedAt, &item.LinesAdded, &item.LinesRemoved); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// scanVersion scans a single row into a Version struct.
func scanVersion(row *sql.Row) (*artifact.Version, error) {
	var v artifact.Version
	err := row.Scan(
		&v.ArtifactID, &v.Version, &v.Content, &v.ContentHash,
		&v.LinesAdded, &v.LinesRemoved, &v.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
