// Package artifact publishes finished packages into the output folder.
//
// The FileRepository replaces an existing archive atomically through go-update
// and verifies the written bytes against their SHA-512 checksum.
package artifact
