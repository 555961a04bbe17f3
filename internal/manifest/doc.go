// Package manifest loads the extension manifest, picks the per-browser source file,
// applies the target-specific mutations and renders the document that ends up in a package.
//
// The functions here do no archive I/O, so every browser's rule set can be tested in isolation.
package manifest
