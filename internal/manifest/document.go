package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

const (
	// DefaultFilename is the manifest every package carries.
	DefaultFilename = "manifest.json"
	// FirefoxFilename is the optional Manifest V2 source used for Firefox builds.
	FirefoxFilename = "manifest-firefox.json"

	indent = "  "
)

// ErrMalformed is returned when a manifest source is not a JSON object.
var ErrMalformed = errors.New("malformed manifest")

// Document is a decoded manifest. Numbers keep their source text as json.Number.
type Document map[string]any

// Load reads and parses the manifest stored at path.
func Load(filename string) (Document, error) {
	contents, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", filename, err)
	}

	doc, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return doc, nil
}

// Parse decodes contents into a Document.
func Parse(contents []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(contents))
	decoder.UseNumber()

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	// Trailing data after the object means the file is not a single document.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the top-level object", ErrMalformed)
	}

	return doc, nil
}

// Encode renders doc with a stable two-space indentation.
// Keys are sorted and HTML characters are left as-is so match patterns like <all_urls> survive.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// IsDefault reports whether the slash-separated relative path names a default manifest.
func IsDefault(relativePath string) bool {
	return path.Base(relativePath) == DefaultFilename
}

// IsFirefox reports whether the slash-separated relative path names a Firefox-specific manifest.
func IsFirefox(relativePath string) bool {
	return path.Base(relativePath) == FirefoxFilename
}

// SchemaVersion returns the manifest_version value, or 0 when it is missing or not a number.
func (d Document) SchemaVersion() int {
	number, ok := d["manifest_version"].(json.Number)
	if !ok {
		return 0
	}

	v, err := number.Int64()
	if err != nil {
		return 0
	}

	return int(v)
}
