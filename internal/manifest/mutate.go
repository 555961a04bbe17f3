package manifest

import (
	"errors"
	"fmt"

	"github.com/oshokin/redirector-packager/internal/domain/browser"
)

const (
	keyApplications            = "applications"
	keyBrowserSpecificSettings = "browser_specific_settings"
	keyOptionsUI               = "options_ui"
	keyOptionsPage             = "page"
	keyChromeStyle             = "chrome_style"

	// OperaOptionsPage opens the options in a full tab on Opera.
	OperaOptionsPage = "redirector.html"
)

var (
	// ErrInvalidOptionsUI is returned when options_ui exists but is not an object.
	ErrInvalidOptionsUI = errors.New("options_ui is not an object")
	// ErrNoMutation is returned for targets without a registered mutation.
	ErrNoMutation = errors.New("no manifest mutation for target")
)

// Mutation rewrites a document in place for one target.
type Mutation func(doc Document) error

// mutations holds exactly one entry per supported target.
//
//nolint:gochecknoglobals // Closed dispatch table.
var mutations = map[browser.Target]Mutation{
	browser.Chrome:  dropLegacyFirefoxKeys,
	browser.Edge:    dropLegacyFirefoxKeys,
	browser.Opera:   operaMutation,
	browser.Firefox: keepAsIs,
}

// MutationFor returns the mutation registered for target.
func MutationFor(target browser.Target) (Mutation, error) {
	m, ok := mutations[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMutation, target)
	}

	return m, nil
}

// Mutate applies the target's mutation to doc.
func Mutate(target browser.Target, doc Document) error {
	m, err := MutationFor(target)
	if err != nil {
		return err
	}

	return m(doc)
}

// keepAsIs leaves Firefox-specific keys untouched.
func keepAsIs(Document) error {
	return nil
}

// dropLegacyFirefoxKeys removes the MV2-era Firefox key that MV3 stores reject.
func dropLegacyFirefoxKeys(doc Document) error {
	delete(doc, keyApplications)

	return nil
}

// operaMutation also removes browser_specific_settings, which only triggers a
// store validation warning on Opera, and forces the options page into its own tab.
func operaMutation(doc Document) error {
	if err := dropLegacyFirefoxKeys(doc); err != nil {
		return err
	}

	delete(doc, keyBrowserSpecificSettings)

	optionsUI := map[string]any{}

	if raw, ok := doc[keyOptionsUI]; ok && raw != nil {
		existing, isObject := raw.(map[string]any)
		if !isObject {
			return fmt.Errorf("%w: got %T", ErrInvalidOptionsUI, raw)
		}

		optionsUI = existing
	}

	optionsUI[keyOptionsPage] = OperaOptionsPage
	optionsUI[keyChromeStyle] = false
	doc[keyOptionsUI] = optionsUI

	return nil
}
