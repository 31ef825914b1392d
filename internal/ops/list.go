package ops

import (
	"github.com/tetherdocs/tether/internal/db"
)

// Artifact status values in the registry list view. Status is computed at
// request time against the filesystem, so operators can detect artifacts
// whose backing file moved out-of-band.
const (
	ArtifactStatusOK      = "ok"
	ArtifactStatusMissing = "missing"
)

// ListArtifactsInput contains parameters for the ListArtifacts operation.
type ListArtifactsInput struct {
	RunID string
}

// ListArtifactsOutput contains artifact summaries ordered by path.
type ListArtifactsOutput struct {
	Artifacts []db.ArtifactSummary `json:"artifacts"`
}

// ListArtifacts returns all tracked artifacts in a run with their
// present/missing status.
func ListArtifacts(env *Env, input ListArtifactsInput) (*ListArtifactsOutput, error) {
	runID := normalizeRun(input.RunID)

	items, err := db.ListArtifacts(env.DB, runID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if env.FS.Exists(items[i].Path) {
			items[i].Status = ArtifactStatusOK
		} else {
			items[i].Status = ArtifactStatusMissing
		}
	}

	return &ListArtifactsOutput{Artifacts: items}, nil
}
