package ops

import (
	"errors"
	"testing"

	"github.com/tetherdocs/tether/internal/config"
	"github.com/tetherdocs/tether/internal/db"
)

// fakeFS is an in-memory FileSystem for tests. Paths in files exist;
// renameErr, when set, makes Rename fail.
type fakeFS struct {
	files     map[string]bool
	renameErr error
}

func newFakeFS(paths ...string) *fakeFS {
	fs := &fakeFS{files: make(map[string]bool)}
	for _, p := range paths {
		fs.files[p] = true
	}
	return fs
}

func (f *fakeFS) Exists(path string) bool {
	return f.files[path]
}

func (f *fakeFS) Rename(oldPath, newPath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	if !f.files[oldPath] {
		return errors.New("no such file: " + oldPath)
	}
	delete(f.files, oldPath)
	f.files[newPath] = true
	return nil
}

// testEnv builds an Env backed by a temp database and a fake filesystem.
func testEnv(t *testing.T) (*Env, *fakeFS) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	fs := newFakeFS()
	env := &Env{
		DB:    database,
		Cfg:   config.DefaultConfig(),
		FS:    fs,
		Locks: NewLockManager(),
	}
	return env, fs
}

// mustSync runs Sync and fails the test on error.
func mustSync(t *testing.T, env *Env, path, content string) *SyncOutput {
	t.Helper()
	out, err := Sync(env, SyncInput{Path: path, Content: content})
	if err != nil {
		t.Fatalf("Sync(%s) error = %v", path, err)
	}
	return out
}

// mustComment adds a comment and fails the test on error.
func mustComment(t *testing.T, env *Env, path, target, message string) string {
	t.Helper()
	out, err := AddComment(env, AddCommentInput{
		Path:       path,
		TargetText: target,
		Message:    message,
		Author:     "reviewer",
	})
	if err != nil {
		t.Fatalf("AddComment(%s, %q) error = %v", path, target, err)
	}
	return out.CommentID
}
