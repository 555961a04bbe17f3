package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_CreatesFolder verifies Publish creates a missing output folder.
func TestFileRepository_CreatesFolder(t *testing.T) {
	t.Parallel()

	folder := filepath.Join(t.TempDir(), "nested", "build")
	repo := NewFileRepository(folder)

	published, err := repo.Publish(context.Background(), "redirector-chrome.zip", []byte("first"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(folder, "redirector-chrome.zip"), published.Path)
	require.Equal(t, int64(5), published.Size)

	contents, err := os.ReadFile(published.Path)
	require.NoError(t, err)
	require.Equal(t, "first", string(contents))
}

// TestFileRepository_Overwrites ensures a rebuild replaces the previous artifact wholesale.
func TestFileRepository_Overwrites(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	_, err := repo.Publish(ctx, "redirector-firefox.xpi", []byte("a much longer first version"))
	require.NoError(t, err)

	published, err := repo.Publish(ctx, "redirector-firefox.xpi", []byte("second"))
	require.NoError(t, err)

	contents, err := os.ReadFile(published.Path)
	require.NoError(t, err)
	require.Equal(t, "second", string(contents))

	onDisk, err := FileChecksum(published.Path)
	require.NoError(t, err)
	require.Equal(t, published.Checksum, onDisk)

	// No leftovers from the atomic swap.
	entries, err := os.ReadDir(repo.Folder())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestFileRepository_FolderIsAFile reports a fatal error when the folder cannot be created.
func TestFileRepository_FolderIsAFile(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), DefaultFileMode))

	repo := NewFileRepository(blocker)
	require.Error(t, repo.EnsureFolder(context.Background()))

	_, err := repo.Publish(context.Background(), "redirector-edge.zip", []byte("x"))
	require.Error(t, err)
}
