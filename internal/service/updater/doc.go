// Package updater replaces outdated plugin archives with the catalog file built
// for the pinned game version.
//
// Archives are handled one at a time. Each yields an Outcome whose Kind decides,
// through a fixed policy table, whether the run continues: archives without
// metadata or without a catalog match are skipped, while catalog and download
// failures abort the remainder of the run.
package updater
