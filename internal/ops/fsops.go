package ops

import "os"

// FileSystem is the file collaborator consumed by the registry's status
// computation and by move. The engine never reads document content from
// disk itself; content always arrives as operation input.
type FileSystem interface {
	// Exists reports whether a file is present at path.
	Exists(path string) bool
	// Rename relocates a file on disk.
	Rename(oldPath, newPath string) error
}

// OSFileSystem is the real filesystem.
type OSFileSystem struct{}

// Exists reports whether a regular file (or anything stat-able) is at path.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Rename relocates a file via os.Rename.
func (OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}
