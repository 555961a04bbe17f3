// Package browser defines the closed set of browser targets the extension is packaged for
// and the per-target properties that do not depend on the source tree.
package browser
