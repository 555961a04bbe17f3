package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/redirector-packager/internal/config"
	"github.com/oshokin/redirector-packager/internal/domain/browser"
	"github.com/oshokin/redirector-packager/internal/logger"
	"github.com/oshokin/redirector-packager/internal/repository/artifact"
	"github.com/oshokin/redirector-packager/internal/service/packager"
	"github.com/oshokin/redirector-packager/internal/service/selector"
	"github.com/oshokin/redirector-packager/internal/service/signer"
)

// Options contains inputs for the builder entry point. Non-empty fields override the settings file.
type Options struct {
	// ConfigPath is an optional path to the settings file (defaults to .redirector-packager.yaml).
	ConfigPath string
	// Root overrides the extension source tree.
	Root string
	// OutputFolder overrides the folder receiving the archives.
	OutputFolder string
	// LogLevel overrides the log level.
	LogLevel string
	// FailFast stops at the first failing target.
	FailFast bool
	// Signer replaces the command signer built from the settings.
	Signer signer.Signer
}

// Run builds every browser target in order and writes the build report.
//
// Each target is attempted even when an earlier one failed, unless fail-fast is
// configured; all failures are returned joined.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "redirector-packager")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	repo := artifact.NewFileRepository(cfg.ResolvePath(cfg.OutputFolder))
	if err = repo.EnsureFolder(ctx); err != nil {
		return err
	}

	lock := newMarker(repo.Folder())
	if err = lock.Acquire(ctx); err != nil {
		return err
	}

	defer lock.Release(ctx)

	sign := opts.Signer
	if sign == nil {
		sign = signer.NewCommandSigner(cfg.SignerCommand, cfg.Root)
	}

	pkg, err := packager.New(&packager.Options{
		Root:        cfg.Root,
		Certificate: cfg.ResolvePath(cfg.Certificate),
		Repository:  repo,
		Signer:      sign,
	})
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	extraRules := outputFolderRules(cfg.Root, repo.Folder())

	logger.InfoKV(ctx, "Building packages", "root", cfg.Root, "output", repo.Folder())

	var (
		report   = NewReport()
		failures = make([]error, 0)
	)

	for _, target := range browser.All() {
		result, buildErr := buildTarget(ctx, cfg.Root, pkg, target, extraRules...)
		report.Add(target.String(), result, buildErr)

		if buildErr == nil {
			continue
		}

		buildErr = fmt.Errorf("%s: %w", target, buildErr)
		logger.ErrorKV(ctx, "Target failed", "target", target.String(), "error", buildErr)
		failures = append(failures, buildErr)

		if cfg.FailFast {
			break
		}
	}

	if err = writeReport(ctx, repo, report); err != nil {
		failures = append(failures, err)
	}

	printSummary(ctx, repo.Folder(), report)

	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	logger.Info(ctx, "Build complete")

	return nil
}

// loadConfig reads the settings file and applies command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	if opts.OutputFolder != "" {
		cfg.OutputFolder = opts.OutputFolder
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	cfg.FailFast = cfg.FailFast || opts.FailFast

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildTarget runs the selector and the packager for one target.
func buildTarget(
	ctx context.Context,
	root string,
	pkg *packager.Packager,
	target browser.Target,
	extra ...selector.Rule,
) (*packager.Artifact, error) {
	logger.Infof(ctx, "**** Creating addon for %s (Manifest V%d) ****", target, target.SchemaVersion())

	files, err := selector.Select(ctx, root, target, extra...)
	if err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}

	return pkg.Assemble(ctx, target, files)
}

// outputFolderRules keeps previous artifacts out of the packages when the output folder lives inside the root.
func outputFolderRules(root, folder string) []selector.Rule {
	absRoot, rootErr := filepath.Abs(root)
	absFolder, folderErr := filepath.Abs(folder)

	if rootErr != nil || folderErr != nil {
		return nil
	}

	relative, err := filepath.Rel(absRoot, absFolder)
	if err != nil || relative == "." || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return nil
	}

	return []selector.Rule{
		selector.PrefixRule{
			Label:  "output-folder",
			Prefix: filepath.ToSlash(relative),
		},
	}
}

// writeReport publishes the YAML report next to the archives.
func writeReport(ctx context.Context, repo artifact.Repository, report *Report) error {
	contents, err := report.Marshal()
	if err != nil {
		return err
	}

	published, err := repo.Publish(ctx, ReportFilename, contents)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.DebugKV(ctx, "Report written", "path", published.Path)

	return nil
}

// printSummary logs a human-readable list of produced artifacts.
func printSummary(ctx context.Context, folder string, report *Report) {
	var builder strings.Builder

	builder.WriteString("Build summary:")

	for _, entry := range report.Targets {
		builder.WriteString("\n")
		builder.WriteString(entry.Target)
		builder.WriteString(": ")

		switch {
		case entry.Archive == "":
			builder.WriteString("failed")
		case entry.Signed != "":
			builder.WriteString(entry.Archive + ", " + entry.Signed)
		default:
			builder.WriteString(entry.Archive)
		}

		if entry.Error != "" {
			builder.WriteString(" (" + entry.Error + ")")
		}
	}

	builder.WriteString("\nChrome/Edge/Opera: Manifest V3, Firefox: Manifest V2, artifacts in ")
	builder.WriteString(filepath.Clean(folder))

	logger.Info(ctx, builder.String())
}
