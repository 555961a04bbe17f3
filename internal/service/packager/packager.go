package packager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
	"github.com/oshokin/redirector-packager/internal/logger"
	"github.com/oshokin/redirector-packager/internal/manifest"
	"github.com/oshokin/redirector-packager/internal/repository/artifact"
	"github.com/oshokin/redirector-packager/internal/service/signer"
)

// EntryTime is the modification time stamped on every archive entry.
//
//nolint:gochecknoglobals // time.Time cannot be a constant.
var EntryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	errRepositoryNotSet = errors.New("artifact repository is not set")
	errSignerNotSet     = errors.New("signer is not set")
)

// Options contains the collaborators of a Packager.
type Options struct {
	// Root is the extension source tree the selected paths are relative to.
	Root string
	// Certificate is the path of the Opera signing certificate.
	Certificate string
	// Repository stores finished archives.
	Repository artifact.Repository
	// Signer produces the signed Opera package.
	Signer signer.Signer
}

// Artifact describes the package produced for one target.
type Artifact struct {
	// Target is the browser the package was built for.
	Target browser.Target
	// Path is the archive location.
	Path string
	// Entries lists the archive entry names in write order.
	Entries []string
	// Checksum is the SHA-512 digest of the archive.
	Checksum []byte
	// Size is the archive length in bytes.
	Size int64
	// SignedPath is the signed package location, empty when signing was skipped.
	SignedPath string
}

// Packager turns a list of selected files into an archive.
type Packager struct {
	// root is the extension source tree.
	root string
	// certificate is the Opera signing certificate path.
	certificate string
	// repository publishes archives into the output folder.
	repository artifact.Repository
	// signer produces the signed Opera package.
	signer signer.Signer
}

// New validates opts and creates a Packager.
func New(opts *Options) (*Packager, error) {
	if opts.Repository == nil {
		return nil, errRepositoryNotSet
	}

	if opts.Signer == nil {
		return nil, errSignerNotSet
	}

	return &Packager{
		root:        opts.Root,
		certificate: opts.Certificate,
		repository:  opts.Repository,
		signer:      opts.Signer,
	}, nil
}

// Assemble writes the archive for target from files, which are slash-separated paths relative to the root.
//
// For Opera a non-nil Artifact is returned together with a signing error, since the
// plain archive is already in place at that point.
func (p *Packager) Assemble(ctx context.Context, target browser.Target, files []string) (*Artifact, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "packager"), "target", target.String())

	logger.InfoKV(ctx, "Creating package", "archive", target.ArchiveName())

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)
	entries := make([]string, 0, len(files))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case manifest.IsDefault(name):
			logger.InfoKV(ctx, "Adding", "file", name)

			if err := p.addManifest(ctx, writer, target, name); err != nil {
				return nil, fmt.Errorf("add %s: %w", name, err)
			}
		case manifest.IsFirefox(name):
			// Already folded into manifest.json when the target needs it.
			logger.DebugKV(ctx, "Skipping Firefox manifest", "file", name)

			continue
		default:
			logger.InfoKV(ctx, "Adding", "file", name)

			if err := p.addFile(writer, name); err != nil {
				return nil, fmt.Errorf("add %s: %w", name, err)
			}
		}

		entries = append(entries, name)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	published, err := p.repository.Publish(ctx, target.ArchiveName(), buf.Bytes())
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Created", "archive", published.Path, "entries", len(entries))

	result := &Artifact{
		Target:   target,
		Path:     published.Path,
		Entries:  entries,
		Checksum: published.Checksum,
		Size:     published.Size,
	}

	if target.IsSigned() {
		if err = p.sign(ctx, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// addManifest writes the browser-specific manifest under name.
func (p *Packager) addManifest(ctx context.Context, writer *zip.Writer, target browser.Target, name string) error {
	source := manifest.ResolveSource(target, p.sourcePath(name), fileExists)
	if source != p.sourcePath(name) {
		logger.InfoKV(ctx, "Using alternate manifest", "source", filepath.Base(source))
	}

	doc, err := manifest.Load(source)
	if err != nil {
		return err
	}

	if got, want := doc.SchemaVersion(), target.SchemaVersion(); got != want {
		logger.WarnKV(ctx, "Manifest schema version does not match target",
			"source", filepath.Base(source), "manifest_version", got, "expected", want)
	}

	if err = manifest.Mutate(target, doc); err != nil {
		return err
	}

	contents, err := manifest.Encode(doc)
	if err != nil {
		return err
	}

	return writeEntry(writer, name, contents)
}

// addFile copies the raw bytes of name into the archive.
func (p *Packager) addFile(writer *zip.Writer, name string) error {
	contents, err := os.ReadFile(p.sourcePath(name))
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	return writeEntry(writer, name, contents)
}

// sign hands the Opera archive to the external signer when the certificate is available.
func (p *Packager) sign(ctx context.Context, result *Artifact) error {
	if !fileExists(p.certificate) {
		logger.WarnKV(ctx, "Extension certificate does not exist, skipping signed package",
			"certificate", p.certificate)

		return nil
	}

	signedPath := SignedPath(result.Path)

	if err := p.signer.Sign(ctx, result.Path, signedPath, p.certificate); err != nil {
		return fmt.Errorf("sign %s: %w", filepath.Base(result.Path), err)
	}

	result.SignedPath = signedPath

	return nil
}

// sourcePath converts a slash-separated relative path into a filesystem path under the root.
func (p *Packager) sourcePath(name string) string {
	return filepath.Join(p.root, filepath.FromSlash(name))
}

// SignedPath returns archivePath with its extension replaced by the signed package extension.
func SignedPath(archivePath string) string {
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + "." + browser.SignedExtension
}

// writeEntry stores contents uncompressed under name with the fixed timestamp.
func writeEntry(writer *zip.Writer, name string, contents []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: EntryTime,
	}

	w, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	if _, err = w.Write(contents); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}

	return nil
}

func fileExists(name string) bool {
	info, err := os.Stat(name)

	return err == nil && !info.IsDir()
}
