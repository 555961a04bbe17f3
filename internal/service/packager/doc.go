// Package packager assembles the per-browser extension archive.
//
// Every selected file is stored uncompressed with a fixed timestamp, so
// repeated builds produce byte-identical archives. The manifest entry is
// replaced by the browser-specific document, and the Opera archive is handed
// to the external signer afterwards.
package packager
