// Package sanitize normalizes directory and file names for the lyrics library.
//
// Names are made filesystem-consistent by removing every period and replacing
// every space with an underscore. File names keep their extension verbatim so
// media and text types stay recognizable after renaming.
package sanitize

import "strings"

var nameReplacer = strings.NewReplacer(".", "", " ", "_")

// Name removes periods and replaces spaces with underscores.
func Name(name string) string {
	return nameReplacer.Replace(name)
}

// Filename sanitizes the part of name before its final period and reattaches
// the original extension unchanged. Names without a period are handled like
// directory names.
func Filename(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return Name(name)
	}
	return Name(name[:idx]) + name[idx:]
}

// Changed reports whether Filename would rename name.
func Changed(name string) bool {
	return Filename(name) != name
}
