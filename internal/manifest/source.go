package manifest

import (
	"path/filepath"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
)

// ResolveSource picks the file whose content is written under manifestPath for target.
//
// Firefox builds prefer the sibling manifest-firefox.json when exists reports it present.
// Every other case, including Firefox without that file, uses manifestPath itself.
func ResolveSource(target browser.Target, manifestPath string, exists func(string) bool) string {
	if target != browser.Firefox {
		return manifestPath
	}

	candidate := filepath.Join(filepath.Dir(manifestPath), FirefoxFilename)
	if exists != nil && exists(candidate) {
		return candidate
	}

	return manifestPath
}
