package ops

import (
	"github.com/tetherdocs/tether/internal/artifact"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/errors"
)

// ListVersionsInput contains parameters for the ListVersions operation.
type ListVersionsInput struct {
	RunID string
	Path  string
}

// ListVersionsOutput contains version summaries ascending by version.
type ListVersionsOutput struct {
	Versions []db.VersionSummary `json:"versions"`
}

// ListVersions returns an artifact's version history.
func ListVersions(env *Env, input ListVersionsInput) (*ListVersionsOutput, error) {
	runID := normalizeRun(input.RunID)
	path, err := validatePath(input.Path)
	if err != nil {
		return nil, err
	}

	art, err := db.GetArtifactByPath(env.DB, runID, path)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, errors.NewNotFound("artifact", path)
	}

	versions, err := db.ListVersions(env.DB, art.ID)
	if err != nil {
		return nil, err
	}
	return &ListVersionsOutput{Versions: versions}, nil
}

// GetVersionInput contains parameters for the GetVersion operation.
type GetVersionInput struct {
	RunID   string
	Path    string
	Version int64
}

// GetVersionOutput contains one full content snapshot.
type GetVersionOutput struct {
	Version  int64  `json:"version"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	SyncedAt int64  `json:"synced_at"`
}

// GetVersion returns the exact content committed as the given version.
func GetVersion(env *Env, input GetVersionInput) (*GetVersionOutput, error) {
	runID := normalizeRun(input.RunID)
	path, err := validatePath(input.Path)
	if err != nil {
		return nil, err
	}
	if input.Version < 1 {
		return nil, errors.NewInvalidRequest("version must be a positive integer")
	}

	art, err := db.GetArtifactByPath(env.DB, runID, path)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, errors.NewNotFound("artifact", path)
	}

	v, err := db.GetVersion(env.DB, art.ID, input.Version)
	if err != nil {
		return nil, err
	}

	// Title reflects the requested snapshot, not the artifact's current one.
	return &GetVersionOutput{
		Version:  v.Version,
		Title:    artifact.TitleFromContent(v.Content, art.Path),
		Content:  v.Content,
		SyncedAt: v.SyncedAt,
	}, nil
}
