package selector

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
	"github.com/oshokin/redirector-packager/internal/logger"
)

// directoryProbe is appended to a directory path to ask rules whether anything below it could survive.
const directoryProbe = "/_"

// Select walks root and returns the slash-separated relative paths that belong to target's package.
// Paths come back in directory-walk order, which is lexical within each directory.
// Extra rules are appended to the target's rule set.
func Select(ctx context.Context, root string, target browser.Target, extra ...Rule) ([]string, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "selector"), "target", target.String())

	rules := append(RulesFor(target), extra...)
	files := make([]string, 0)

	err := filepath.WalkDir(root, func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		relative, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}

		relative = filepath.ToSlash(relative)

		if entry.IsDir() {
			if relative == "." {
				return nil
			}

			// Every file below an excluded directory would be excluded as well.
			if rules.Excludes(relative + directoryProbe) {
				logger.DebugKV(ctx, "Skipping directory", "path", relative)
				return fs.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if rule := rules.Match(relative); rule != nil {
			logger.DebugKV(ctx, "Excluding file", "path", relative, "rule", rule.Name())
			return nil
		}

		files = append(files, relative)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	logger.InfoKV(ctx, "Selected files", "count", len(files))

	return files, nil
}
