// Package reorganizer rebuilds a flat folder-of-subgenres library into a
// genre/subgenre hierarchy.
//
// A run stages the new layout in a sibling directory, copies every recognized
// subgenre folder under its main genre, sanitizes file names inside the copies,
// and only then swaps the staging tree into the library path. Until that final
// swap the original library is never modified, so any failure or interruption
// leaves it intact and the staging directory can simply be deleted.
//
// The rename-based swap is only atomic when staging and library share a
// filesystem; Run verifies that before touching disk.
package reorganizer
