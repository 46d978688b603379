// Package addon holds the catalog domain model and the resolution rules that
// match a local plugin archive to a catalog entry.
//
// Matching never compares raw filenames: both sides are reduced to a
// normalization key first (see Normalize), and only file variants built for the
// pinned game version are eligible.
package addon
