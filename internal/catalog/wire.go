package catalog

import "github.com/rosshadden/emcee/internal/domain/addon"

// searchItem is the part of a search result emcee keeps. Every other field of
// the remote document is dropped by the decoder.
type searchItem struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	Summary                string     `json:"summary"`
	Slug                   string     `json:"slug"`
	GameVersionLatestFiles []fileItem `json:"gameVersionLatestFiles"`
}

type fileItem struct {
	GameVersion       string `json:"gameVersion"`
	ProjectFileID     int64  `json:"projectFileId"`
	ProjectFileName   string `json:"projectFileName"`
	FileType          int    `json:"fileType"`
	GameVersionFlavor string `json:"gameVersionFlavor"`
}

// fileInfo is the part of a file document emcee keeps.
type fileInfo struct {
	DownloadURL string `json:"downloadUrl"`
}

func (s *searchItem) toEntry() addon.CatalogEntry {
	variants := make([]addon.FileVariant, 0, len(s.GameVersionLatestFiles))
	for _, f := range s.GameVersionLatestFiles {
		variants = append(variants, addon.FileVariant{
			GameVersion:       f.GameVersion,
			FileID:            f.ProjectFileID,
			FileName:          f.ProjectFileName,
			FileType:          f.FileType,
			GameVersionFlavor: f.GameVersionFlavor,
		})
	}

	return addon.CatalogEntry{
		ID:           s.ID,
		Name:         s.Name,
		Summary:      s.Summary,
		Slug:         s.Slug,
		FileVariants: variants,
	}
}
