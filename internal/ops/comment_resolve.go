package ops

import (
	"strings"
	"time"

	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/errors"
)

// ResolveCommentInput contains parameters for the ResolveComment operation.
type ResolveCommentInput struct {
	RunID     string
	CommentID string
	Resolver  string
}

// ResolveCommentOutput contains the result of the ResolveComment operation.
type ResolveCommentOutput struct {
	Resolved bool `json:"resolved"`
}

// ResolveComment flips a comment from open to resolved, exactly once.
// Resolving an already-resolved comment fails without un-resolving it.
func ResolveComment(env *Env, input ResolveCommentInput) (*ResolveCommentOutput, error) {
	runID := normalizeRun(input.RunID)
	commentID := strings.TrimSpace(input.CommentID)
	if commentID == "" {
		return nil, errors.NewInvalidRequest("comment_id is required")
	}
	resolver := strings.TrimSpace(input.Resolver)
	if resolver == "" {
		return nil, errors.NewInvalidRequest("resolver is required")
	}

	c, err := db.GetCommentByID(env.DB, commentID)
	if err != nil {
		return nil, err
	}

	// The comment must belong to an artifact in the caller's run.
	art, err := db.GetArtifactByID(env.DB, c.ArtifactID)
	if err != nil {
		return nil, err
	}
	if art.RunID != runID {
		return nil, errors.NewNotFound("comment", commentID)
	}

	if c.Status == artifact.StatusResolved {
		return nil, errors.NewInvalidRequest("comment already resolved: " + commentID)
	}

	flipped, err := db.ResolveComment(env.DB, commentID, resolver, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	if !flipped {
		// Lost a race with another resolver; status is resolved either way.
		return nil, errors.NewInvalidRequest("comment already resolved: " + commentID)
	}

	return &ResolveCommentOutput{Resolved: true}, nil
}
