// Package version exposes build metadata for the packager.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short is stamped into the build report, Full is printed by the
// version subcommand.
package version
