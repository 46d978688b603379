package addon

import "strings"

// Normalize reduces a filename to its matching key: every ASCII digit is
// removed, then every underscore becomes a hyphen. The transform is lossy on
// purpose so that two releases of the same plugin share a key.
func Normalize(filename string) string {
	stripped := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}

		return r
	}, filename)

	return strings.ReplaceAll(stripped, "_", "-")
}

// Resolver matches local archives to catalog entries for one pinned game version.
type Resolver struct {
	gameVersion string
}

// NewResolver returns a Resolver pinned to gameVersion.
func NewResolver(gameVersion string) *Resolver {
	return &Resolver{
		gameVersion: gameVersion,
	}
}

// GameVersion returns the pinned game version.
func (r *Resolver) GameVersion() string {
	return r.gameVersion
}

// SelectVariant returns the first file variant of entry built for the pinned
// game version. Later duplicates are ignored.
func (r *Resolver) SelectVariant(entry *CatalogEntry) (FileVariant, bool) {
	if entry == nil {
		return FileVariant{}, false
	}

	for _, variant := range entry.FileVariants {
		if variant.GameVersion == r.gameVersion {
			return variant, true
		}
	}

	return FileVariant{}, false
}

// FindMatch returns the first entry, in the given order, whose selected
// variant normalizes to the same key as localFilename, together with that variant.
// Entries without a variant for the pinned game version are never matched.
func (r *Resolver) FindMatch(entries []CatalogEntry, localFilename string) (*CatalogEntry, FileVariant, bool) {
	key := Normalize(localFilename)

	for i := range entries {
		variant, ok := r.SelectVariant(&entries[i])
		if !ok {
			continue
		}

		if Normalize(variant.FileName) == key {
			return &entries[i], variant, true
		}
	}

	return nil, FileVariant{}, false
}
