// Package builder drives a complete packaging run: it selects and assembles
// every browser target in the fixed order, guards the output folder against
// concurrent runs and writes a YAML report of what was produced.
package builder
