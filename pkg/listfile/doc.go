// Package listfile parses newline-delimited identifier lists such as the
// plugin manifest, skipping comment lines and surrounding whitespace.
package listfile
