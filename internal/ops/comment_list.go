package ops

import (
	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/errors"
)

// ListCommentsInput contains parameters for the ListComments operation.
type ListCommentsInput struct {
	RunID  string
	Path   string
	Status string // open|resolved|all; default all
}

// CommentItem is one comment in the list view.
type CommentItem struct {
	CommentID  string  `json:"comment_id"`
	TargetText string  `json:"target_text"`
	Message    string  `json:"message"`
	Author     string  `json:"author"`
	Status     string  `json:"status"`
	Orphaned   bool    `json:"orphaned"`
	LineHint   int     `json:"line_hint"`
	CreatedAt  int64   `json:"created_at"`
	ResolvedBy *string `json:"resolved_by,omitempty"`
	ResolvedAt *int64  `json:"resolved_at,omitempty"`
}

// ListCommentsOutput contains the result of the ListComments operation.
type ListCommentsOutput struct {
	Comments []CommentItem `json:"comments"`
}

// ListComments returns an artifact's comments ordered by creation time.
func ListComments(env *Env, input ListCommentsInput) (*ListCommentsOutput, error) {
	runID := normalizeRun(input.RunID)
	path, err := validatePath(input.Path)
	if err != nil {
		return nil, err
	}

	filter := input.Status
	if filter == "" {
		filter = FilterAll
	}
	var status string
	switch filter {
	case FilterOpen:
		status = artifact.StatusOpen
	case FilterResolved:
		status = artifact.StatusResolved
	case FilterAll:
		status = ""
	default:
		return nil, errors.NewInvalidRequest("status must be one of: open, resolved, all")
	}

	art, err := db.GetArtifactByPath(env.DB, runID, path)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, errors.NewNotFound("artifact", path)
	}

	comments, err := db.ListComments(env.DB, art.ID, status)
	if err != nil {
		return nil, err
	}

	items := make([]CommentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, CommentItem{
			CommentID:  c.ID,
			TargetText: c.TargetText,
			Message:    c.Body,
			Author:     c.Author,
			Status:     c.Status,
			Orphaned:   c.Orphaned,
			LineHint:   c.LineHint,
			CreatedAt:  c.CreatedAt,
			ResolvedBy: c.ResolvedBy,
			ResolvedAt: c.ResolvedAt,
		})
	}
	return &ListCommentsOutput{Comments: items}, nil
}
