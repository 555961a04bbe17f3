package selector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
)

// sourceTree mirrors the layout of the extension repository.
var sourceTree = []string{
	"manifest.json",
	"manifest-firefox.json",
	"popup.html",
	"redirector.html",
	"help.html",
	"privacy.md",
	"icon.html",
	"package.json",
	"package-lock.json",
	"build.py",
	"nex-build.sh",
	"extension-certificate.pem",
	"notes.bak",
	"README.md",
	"BUILD.md",
	"DECISIONS.md",
	"CHANGELOG.md",
	"CLAUDE.md",
	"CONTRIBUTING.md",
	"LICENSE",
	"LICENSE.md",
	"Makefile",
	".gitignore",
	".git/HEAD",
	".github/workflows/ci.yml",
	".claude/settings.json",
	"js/background.js",
	"js/migration.js",
	"js/declarative-rules.js",
	"js/.eslintrc",
	"js/tools/gen.py",
	"css/redirector.css",
	"images/icon-light-theme-16.png",
	"promo/tile.png",
	"unittest/redirect.test.js",
	"build/redirector-chrome.zip",
	"specs/001-mv3/spec.md",
	"tests/baseline/edge-cases.js",
	"node_modules/jest/index.js",
	"js/tests/fixture.js",
	"docs/promotional.md",
}

func writeTree(t *testing.T, files []string) string {
	t.Helper()

	root := t.TempDir()
	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	}

	return root
}

// TestSelectChrome checks the base rule set on a realistic tree.
func TestSelectChrome(t *testing.T) {
	t.Parallel()

	root := writeTree(t, sourceTree)

	files, err := Select(context.Background(), root, browser.Chrome)
	require.NoError(t, err)

	// WalkDir visits entries in lexical order within each directory.
	require.Equal(t, []string{
		"Makefile",
		"css/redirector.css",
		"docs/promotional.md",
		"help.html",
		"images/icon-light-theme-16.png",
		"js/background.js",
		"js/declarative-rules.js",
		"js/migration.js",
		"manifest.json",
		"popup.html",
		"privacy.md",
		"redirector.html",
	}, files)
}

// TestSelectFirefoxDropsMV3Scripts verifies the Firefox additions apply to Firefox only.
func TestSelectFirefoxDropsMV3Scripts(t *testing.T) {
	t.Parallel()

	root := writeTree(t, sourceTree)

	for _, target := range browser.All() {
		files, err := Select(context.Background(), root, target)
		require.NoError(t, err)
		require.Contains(t, files, "manifest.json", target.String())
		require.NotContains(t, files, "manifest-firefox.json", target.String())

		if target == browser.Firefox {
			require.NotContains(t, files, "js/migration.js")
			require.NotContains(t, files, "js/declarative-rules.js")
			require.Contains(t, files, "js/background.js")

			continue
		}

		require.Contains(t, files, "js/migration.js", target.String())
		require.Contains(t, files, "js/declarative-rules.js", target.String())
	}
}

// TestSelectNeverReturnsExcludedSegments asserts the hidden and development-directory properties for every target.
func TestSelectNeverReturnsExcludedSegments(t *testing.T) {
	t.Parallel()

	root := writeTree(t, sourceTree)
	probe := RuleSet{
		HiddenRule{},
		DirectoryRule{Directories: []string{"promo", "unittest", "build", "specs", "tests", "node_modules"}},
	}

	for _, target := range browser.All() {
		files, err := Select(context.Background(), root, target)
		require.NoError(t, err)

		for _, name := range files {
			require.False(t, probe.Excludes(name), "%s: %s", target, name)
		}
	}
}

// TestSelectMissingRoot propagates traversal failures.
func TestSelectMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Select(context.Background(), filepath.Join(t.TempDir(), "absent"), browser.Chrome)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestSelectCancelled stops the walk when the context is done.
func TestSelectCancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, sourceTree)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Select(ctx, root, browser.Chrome)
	require.ErrorIs(t, err, context.Canceled)
}

// TestRules covers individual predicates, including near-miss names that must stay included.
func TestRules(t *testing.T) {
	t.Parallel()

	base := BaseRules()

	excluded := []string{
		"tool.py",
		"scripts/release.sh",
		"key.pem",
		"x.bak",
		".env",
		"js/.DS_Store",
		"a/.hidden/b.js",
		"README.md",
		"LICENSE",
		"icon.html",
		"promo/a.png",
		"a/node_modules/b/c.js",
		"manifest-firefox.json",
	}
	for _, name := range excluded {
		require.True(t, base.Excludes(name), name)
	}

	included := []string{
		"manifest.json",
		"Makefile",
		"js/background.js",
		"js/migration.js",
		"docs/README.txt",
		"my-package.json",
		"build",
		"promo.html",
		"tests.js",
		"LICENSE.txt",
	}
	for _, name := range included {
		require.False(t, base.Excludes(name), name)
	}

	firefox := RulesFor(browser.Firefox)
	require.Len(t, firefox, len(base)+1)
	require.True(t, firefox.Excludes("js/migration.js"))
	require.True(t, firefox.Excludes("js/declarative-rules.js"))
	require.False(t, firefox.Excludes("js/migration.json"))

	require.Equal(t, "build-artifacts", base.Match("tool.py").Name())
	require.Nil(t, base.Match("popup.html"))
}
