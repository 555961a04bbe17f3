package browser

import (
	"errors"
	"fmt"
	"strings"
)

// Target identifies one of the browser ecosystems a package is produced for.
type Target string

const (
	// Chrome is the Chrome Web Store target (Manifest V3).
	Chrome Target = "chrome"
	// Edge is the Microsoft Edge Add-ons target (Manifest V3).
	Edge Target = "edge"
	// Opera is the Opera add-ons target (Manifest V3, signed .nex variant).
	Opera Target = "opera"
	// Firefox is the addons.mozilla.org target (Manifest V2).
	Firefox Target = "firefox"
)

const (
	// ArchivePrefix is the common prefix of every produced archive name.
	ArchivePrefix = "redirector"

	// SignedExtension is the extension of the vendor-signed Opera package.
	SignedExtension = "nex"

	extensionZip = "zip"
	extensionXpi = "xpi"
)

// ErrUnknownTarget is returned when a string does not name a supported target.
var ErrUnknownTarget = errors.New("unknown browser target")

// All returns every target in the fixed build order.
func All() []Target {
	return []Target{Chrome, Edge, Opera, Firefox}
}

// Parse converts a user-supplied name into a Target.
func Parse(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}

	return t, nil
}

// IsValid reports whether t belongs to the supported set.
func (t Target) IsValid() bool {
	switch t {
	case Chrome, Edge, Opera, Firefox:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return string(t)
}

// Extension returns the archive file extension without the leading dot.
func (t Target) Extension() string {
	if t == Firefox {
		return extensionXpi
	}

	return extensionZip
}

// SchemaVersion returns the manifest_version the target expects.
func (t Target) SchemaVersion() int {
	if t == Firefox {
		return 2
	}

	return 3
}

// ArchiveName returns the output filename, e.g. redirector-chrome.zip.
func (t Target) ArchiveName() string {
	return ArchivePrefix + "-" + string(t) + "." + t.Extension()
}

// IsSigned reports whether the target gets a vendor-signed secondary artifact.
func (t Target) IsSigned() bool {
	return t == Opera
}
