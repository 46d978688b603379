package addon

// Metadata is the descriptor embedded inside a plugin archive.
// Only Name is used to query the catalog.
type Metadata struct {
	ModID       string   `json:"modid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	MCVersion   string   `json:"mcversion"`
	URL         string   `json:"url"`
	AuthorList  []string `json:"authorList"`
	LogoFile    string   `json:"logoFile"`
}

// CatalogEntry is one search result, projected down to the fields matching relies on.
type CatalogEntry struct {
	// ID identifies the entry in follow-up catalog calls.
	ID int64
	// Name is the human-readable title.
	Name string
	// Summary is a one-line description.
	Summary string
	// Slug is the URL-friendly name.
	Slug string
	// FileVariants lists the latest file per game version.
	FileVariants []FileVariant
}

// FileVariant is one downloadable file of an entry, built for one game version.
type FileVariant struct {
	// GameVersion is the host version the file targets.
	GameVersion string
	// FileID identifies the file within its entry.
	FileID int64
	// FileName is the archive name the file is installed under.
	FileName string
	// FileType is the release channel reported by the catalog.
	FileType int
	// GameVersionFlavor is the loader flavor reported by the catalog, if any.
	GameVersionFlavor string
}

// ResolvedDownload is a file variant together with its direct download location.
type ResolvedDownload struct {
	URL      string
	FileName string
}
