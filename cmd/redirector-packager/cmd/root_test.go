package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRootCommandBuildsAllTargets runs the CLI against a minimal extension tree.
func TestRootCommandBuildsAllTargets(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"),
		[]byte(`{"manifest_version": 3, "name": "Redirector"}`), 0o600))

	rootCmd.SetArgs([]string{
		"--config", filepath.Join(root, ".absent.yaml"),
		"--root", root,
		"--log-level", "warn",
	})

	require.NoError(t, rootCmd.Execute())

	for _, name := range []string{
		"redirector-chrome.zip",
		"redirector-edge.zip",
		"redirector-opera.zip",
		"redirector-firefox.xpi",
	} {
		_, err := os.Stat(filepath.Join(root, "build", name))
		require.NoError(t, err, name)
	}

	// Positional arguments are rejected.
	rootCmd.SetArgs([]string{"chrome"})
	require.Error(t, rootCmd.Execute())
}
