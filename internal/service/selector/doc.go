// Package selector decides which files of the extension source tree go into a browser package.
//
// Exclusion is a list of independent Rule predicates evaluated with short-circuit OR.
// Target-specific rules are appended to the base set instead of editing a shared pattern.
package selector
