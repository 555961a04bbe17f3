// Package signer runs the external tool that turns the Opera archive into a signed package.
//
// The tool is opaque: it receives the archive, the signed package path and the
// certificate as positional arguments, and its exit status is always reported back.
package signer
