// Package ops implements the engine's operation surface: sync, move,
// comment add/list/resolve, version history, and the registry list view.
// Each operation takes an input struct, validates it, and returns an
// output struct or a structured error.
package ops

import (
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tetherdocs/tether/internal/config"
	"github.com/tetherdocs/tether/internal/errors"
)

// DefaultRunID scopes artifacts when the caller does not supply a run.
const DefaultRunID = "default"

// Comment status filters for ListComments.
const (
	FilterOpen     = "open"
	FilterResolved = "resolved"
	FilterAll      = "all"
)

// Env bundles the collaborators every operation needs: the database, the
// configuration, the filesystem collaborator, and the per-artifact lock
// manager. One Env is shared by the CLI and the MCP server.
type Env struct {
	DB    *sql.DB
	Cfg   *config.Config
	FS    FileSystem
	Locks *LockManager
}

// NewEnv creates an Env with the real filesystem collaborator.
func NewEnv(database *sql.DB, cfg *config.Config) *Env {
	return &Env{
		DB:    database,
		Cfg:   cfg,
		FS:    OSFileSystem{},
		Locks: NewLockManager(),
	}
}

// lockWait returns the configured bound on per-artifact lock acquisition.
func (e *Env) lockWait() time.Duration {
	ms := e.Cfg.LockWaitMS
	if ms <= 0 {
		ms = 5000
	}
	return time.Duration(ms) * time.Millisecond
}

// contextRadius returns the configured anchor context radius.
func (e *Env) contextRadius() int {
	if e.Cfg.ContextRadius > 0 {
		return e.Cfg.ContextRadius
	}
	return 32
}

// syncRetries returns the configured bound on version-conflict retries.
func (e *Env) syncRetries() int {
	if e.Cfg.SyncMaxRetries > 0 {
		return e.Cfg.SyncMaxRetries
	}
	return 3
}

// normalizeRun applies the default run id and trims whitespace.
func normalizeRun(runID string) string {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return DefaultRunID
	}
	return runID
}

// validatePath rejects empty artifact paths.
func validatePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	return path, nil
}

// lockKey identifies an artifact's serialization point. Keyed by run and
// path so unrelated artifacts stay independent.
func lockKey(runID, path string) string {
	return runID + "\x00" + path
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
