package artifact

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// DefaultFileMode is used for published archives and reports.
	DefaultFileMode os.FileMode = 0o644

	// DefaultFolderMode is used when the output folder has to be created.
	DefaultFolderMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to verify published artifacts.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var errHashUnavailable = errors.New("hash function unavailable")

// Repository defines where finished artifacts are stored.
type Repository interface {
	Folder() string
	EnsureFolder(ctx context.Context) error
	Publish(ctx context.Context, name string, contents []byte) (*Published, error)
}

// Published describes an artifact written by the repository.
type Published struct {
	// Path is the location of the artifact on disk.
	Path string
	// Checksum is the DefaultChecksumFunction digest of the contents.
	Checksum []byte
	// Size is the artifact length in bytes.
	Size int64
}

// FileRepository stores artifacts in a folder on the local filesystem.
type FileRepository struct {
	// folder is the output folder, created on demand.
	folder string
}

// NewFileRepository creates a repository writing into folder.
func NewFileRepository(folder string) *FileRepository {
	return &FileRepository{
		folder: filepath.Clean(folder),
	}
}

// Folder returns the output folder.
func (r *FileRepository) Folder() string {
	return r.folder
}

// EnsureFolder creates the output folder when it is absent.
func (r *FileRepository) EnsureFolder(_ context.Context) error {
	if err := os.MkdirAll(r.folder, DefaultFolderMode); err != nil {
		return fmt.Errorf("create output folder %s: %w", r.folder, err)
	}

	return nil
}

// Publish writes contents to name inside the output folder, replacing any previous file.
func (r *FileRepository) Publish(ctx context.Context, name string, contents []byte) (*Published, error) {
	if err := r.EnsureFolder(ctx); err != nil {
		return nil, err
	}

	checksum, err := Checksum(contents)
	if err != nil {
		return nil, err
	}

	target := filepath.Join(r.folder, name)

	// go-update renames the previous file away, so the target has to exist.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(target, nil, DefaultFileMode); err != nil {
			return nil, fmt.Errorf("create %s: %w", target, err)
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return nil, fmt.Errorf("publish %s: %w", target, err)
	}

	removeStaleCopies(target)

	return &Published{
		Path:     target,
		Checksum: checksum,
		Size:     int64(len(contents)),
	}, nil
}

// removeStaleCopies drops the previous version go-update may leave next to the target.
func removeStaleCopies(target string) {
	folder, name := filepath.Split(target)

	for _, stale := range []string{target + ".old", filepath.Join(folder, "."+name+".old")} {
		if _, err := os.Stat(stale); err == nil {
			_ = os.Remove(stale)
		}
	}
}

// Checksum returns the DefaultChecksumFunction digest of contents.
func Checksum(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// FileChecksum returns the DefaultChecksumFunction digest of the file at path.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return Checksum(contents)
}
