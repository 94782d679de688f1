// Package config loads, normalizes, and validates genreshelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the GENRESHELF_LIBRARY_DIR
// environment fallback. The Config type carries the library paths, logging
// and journal settings, the CSV column translation table, and the genre
// taxonomy the reorganizer is driven by.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
