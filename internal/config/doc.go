// Package config defines the packager settings and provides helpers to load,
// validate and save them in YAML format.
//
// A missing settings file is not an error: the defaults reproduce the layout
// of the extension repository (sources at the root, artifacts under build/).
package config
