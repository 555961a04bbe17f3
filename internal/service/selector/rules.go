package selector

import (
	"path"
	"slices"
	"strings"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
	"github.com/oshokin/redirector-packager/internal/manifest"
)

// Rule is a single exclusion predicate over a slash-separated relative path.
type Rule interface {
	// Name identifies the rule in debug logs.
	Name() string
	// Match reports whether the path must be excluded.
	Match(relativePath string) bool
}

// RuleSet is an ordered list of rules; a path is excluded when any rule matches.
type RuleSet []Rule

// Match returns the first rule that excludes relativePath, or nil.
func (s RuleSet) Match(relativePath string) Rule {
	for _, rule := range s {
		if rule.Match(relativePath) {
			return rule
		}
	}

	return nil
}

// Excludes reports whether any rule matches relativePath.
func (s RuleSet) Excludes(relativePath string) bool {
	return s.Match(relativePath) != nil
}

// ExtensionRule excludes files by suffix, e.g. ".py".
type ExtensionRule struct {
	Label      string
	Extensions []string
}

// Name implements Rule.
func (r ExtensionRule) Name() string { return r.Label }

// Match implements Rule.
func (r ExtensionRule) Match(relativePath string) bool {
	return slices.Contains(r.Extensions, path.Ext(relativePath))
}

// FilenameRule excludes files whose base name equals one of Filenames.
type FilenameRule struct {
	Label     string
	Filenames []string
}

// Name implements Rule.
func (r FilenameRule) Name() string { return r.Label }

// Match implements Rule.
func (r FilenameRule) Match(relativePath string) bool {
	return slices.Contains(r.Filenames, path.Base(relativePath))
}

// HiddenRule excludes any path with a segment starting with a dot.
type HiddenRule struct{}

// Name implements Rule.
func (HiddenRule) Name() string { return "hidden" }

// Match implements Rule.
func (HiddenRule) Match(relativePath string) bool {
	for _, segment := range strings.Split(relativePath, "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}

	return false
}

// DirectoryRule excludes paths that live under a directory segment named one of Directories.
// The final segment (the file name itself) is not considered.
type DirectoryRule struct {
	Label       string
	Directories []string
}

// Name implements Rule.
func (r DirectoryRule) Name() string { return r.Label }

// Match implements Rule.
func (r DirectoryRule) Match(relativePath string) bool {
	segments := strings.Split(relativePath, "/")
	for _, segment := range segments[:len(segments)-1] {
		if slices.Contains(r.Directories, segment) {
			return true
		}
	}

	return false
}

// PrefixRule excludes everything below the slash-separated directory Prefix.
type PrefixRule struct {
	Label  string
	Prefix string
}

// Name implements Rule.
func (r PrefixRule) Name() string { return r.Label }

// Match implements Rule.
func (r PrefixRule) Match(relativePath string) bool {
	return strings.HasPrefix(relativePath, strings.TrimSuffix(r.Prefix, "/")+"/")
}

// BaseRules returns the exclusions shared by every target.
func BaseRules() RuleSet {
	return RuleSet{
		ExtensionRule{
			Label:      "build-artifacts",
			Extensions: []string{".py", ".sh", ".pem", ".bak"},
		},
		FilenameRule{
			Label:     "build-scripts",
			Filenames: []string{"build.py", "nex-build.sh"},
		},
		HiddenRule{},
		FilenameRule{
			Label:     "development-files",
			Filenames: []string{"package.json", "package-lock.json", "icon.html"},
		},
		FilenameRule{
			Label: "documentation",
			Filenames: []string{
				"README.md",
				"BUILD.md",
				"DECISIONS.md",
				"CHANGELOG.md",
				"CLAUDE.md",
				"CONTRIBUTING.md",
				"LICENSE",
				"LICENSE.md",
			},
		},
		DirectoryRule{
			Label:       "development-directories",
			Directories: []string{"promo", "unittest", "build", "specs", "tests", "node_modules"},
		},
		FilenameRule{
			Label:     "firefox-manifest",
			Filenames: []string{manifest.FirefoxFilename},
		},
	}
}

// firefoxRules drops Manifest V3 runtime files from the Manifest V2 package.
func firefoxRules() RuleSet {
	return RuleSet{
		FilenameRule{
			Label:     "mv3-only-scripts",
			Filenames: []string{"migration.js", "declarative-rules.js"},
		},
	}
}

// RulesFor returns the base rules followed by the target's additions.
func RulesFor(target browser.Target) RuleSet {
	rules := BaseRules()

	if target == browser.Firefox {
		rules = append(rules, firefoxRules()...)
	}

	return rules
}
