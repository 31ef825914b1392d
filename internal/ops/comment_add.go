package ops

import (
	"strings"
	"time"

	"github.com/tetherdocs/tether/internal/anchor"
	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/errors"
)

// AddCommentInput contains parameters for the AddComment operation.
type AddCommentInput struct {
	RunID      string
	Path       string
	TargetText string
	Message    string
	Author     string
}

// AddCommentOutput contains the result of the AddComment operation.
type AddCommentOutput struct {
	CommentID string `json:"comment_id"`
}

// AddComment anchors a new comment to an exact passage of the artifact's
// latest committed content. The target text must occur in that content;
// when it occurs more than once, the earliest occurrence is chosen.
func AddComment(env *Env, input AddCommentInput) (*AddCommentOutput, error) {
	runID := normalizeRun(input.RunID)
	path, err := validatePath(input.Path)
	if err != nil {
		return nil, err
	}
	if input.TargetText == "" {
		return nil, errors.NewInvalidRequest("target_text is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.NewInvalidRequest("message is required")
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		return nil, errors.NewInvalidRequest("author is required")
	}

	art, err := db.GetArtifactByPath(env.DB, runID, path)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, errors.NewNotFound("artifact", path)
	}

	latest, err := db.GetLatestVersion(env.DB, art.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.NewInvalidRequest("artifact has no synced versions: " + path)
	}

	a := &anchor.Anchor{TargetText: input.TargetText}
	m, ok := a.Relocate(latest.Content, 0)
	if !ok {
		return nil, errors.NewInvalidRequest("target_text not found in current content")
	}
	prefix, suffix := anchor.Extract(latest.Content, m.Offset, len(input.TargetText), env.contextRadius())

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	c := &artifact.Comment{
		ID:            id,
		ArtifactID:    art.ID,
		TargetText:    input.TargetText,
		PrefixContext: prefix,
		SuffixContext: suffix,
		LineHint:      m.Line,
		Body:          input.Message,
		Author:        author,
		Status:        artifact.StatusOpen,
		CreatedAt:     time.Now().Unix(),
	}
	if err := db.InsertComment(env.DB, c); err != nil {
		return nil, err
	}

	return &AddCommentOutput{CommentID: id}, nil
}
