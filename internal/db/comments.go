package db

import (
	"database/sql"

	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/errors"
)

// InsertComment stores a new comment row.
func InsertComment(q DBTX, c *artifact.Comment) error {
	query := `
		INSERT INTO comments (
			id, artifact_id, target_text, prefix_context, suffix_context,
			line_hint, body, author, status, orphaned, created_at, resolved_by, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)
	`
	_, err := q.Exec(query,
		c.ID, c.ArtifactID, c.TargetText, c.PrefixContext, c.SuffixContext,
		c.LineHint, c.Body, c.Author, c.Status, boolToInt(c.Orphaned), c.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetCommentByID retrieves a comment by id.
func GetCommentByID(q DBTX, id string) (*artifact.Comment, error) {
	query := commentSelect + ` WHERE id = ?`
	c, err := scanComment(q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("comment", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListComments returns an artifact's comments, optionally filtered by
// status, ascending by created_at then id.
func ListComments(q DBTX, artifactID, status string) ([]*artifact.Comment, error) {
	query := commentSelect + ` WHERE artifact_id = ?`
	args := []any{artifactID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var comments []*artifact.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return comments, nil
}

// UpdateCommentAnchor persists a relocation result: the refreshed line
// hint, context strings, and orphaned flag.
func UpdateCommentAnchor(q DBTX, id string, lineHint int, prefix, suffix string, orphaned bool) error {
	query := `
		UPDATE comments
		SET line_hint = ?, prefix_context = ?, suffix_context = ?, orphaned = ?
		WHERE id = ?
	`
	result, err := q.Exec(query, lineHint, prefix, suffix, boolToInt(orphaned), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRowsAffected(result, "comment", id)
}

// MarkCommentOrphaned flags a comment whose anchor could not be found,
// leaving its anchor at the last successfully relocated values.
func MarkCommentOrphaned(q DBTX, id string) error {
	result, err := q.Exec(`UPDATE comments SET orphaned = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireRowsAffected(result, "comment", id)
}

// ResolveComment flips an open comment to resolved. Returns false if the
// comment was already resolved (the flip happens exactly once).
func ResolveComment(q DBTX, id, resolver string, resolvedAt int64) (bool, error) {
	query := `
		UPDATE comments
		SET status = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := q.Exec(query, artifact.StatusResolved, resolver, resolvedAt, id, artifact.StatusOpen)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// CountComments returns the number of comments on an artifact.
func CountComments(q DBTX, artifactID string) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM comments WHERE artifact_id = ?`, artifactID).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

const commentSelect = `
	SELECT id, artifact_id, target_text, prefix_context, suffix_context,
		line_hint, body, author, status, orphaned, created_at, resolved_by, resolved_at
	FROM comments`

// scanner abstracts *sql.Row and *sql.Rows for comment scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*artifact.Comment, error) {
	var (
		c          artifact.Comment
		orphaned   int
		resolvedBy sql.NullString
		resolvedAt sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.ArtifactID, &c.TargetText, &c.PrefixContext, &c.SuffixContext,
		&c.LineHint, &c.Body, &c.Author, &c.Status, &orphaned, &c.CreatedAt,
		&resolvedBy, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Orphaned = orphaned != 0
	c.ResolvedBy = fromNullString(resolvedBy)
	if resolvedAt.Valid {
		c.ResolvedAt = &resolvedAt.Int64
	}
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
