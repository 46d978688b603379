package addon

import "errors"

var (
	// ErrExtractionFailure means the archive carries no readable metadata.
	ErrExtractionFailure = errors.New("metadata extraction failed")
	// ErrNoMatch means no catalog entry normalizes to the local filename.
	ErrNoMatch = errors.New("no matching catalog entry")
	// ErrCatalogUnavailable covers transport and HTTP failures of the catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrNotFound means the catalog no longer knows the requested identifiers.
	ErrNotFound = errors.New("catalog item not found")
	// ErrDownloadFailure covers failures while streaming a file to disk.
	ErrDownloadFailure = errors.New("download failed")
)
