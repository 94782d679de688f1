// Package journal keeps a SQLite history of reorganize runs.
//
// Each run gets one row in runs plus one row per top-level library entry and
// per failed file rename, so `genreshelf history` can show what a past run
// did to the library after the staging directory is long gone.
package journal
