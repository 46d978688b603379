package updater

import (
	"context"
	"fmt"

	"github.com/inhies/go-bytesize"

	"github.com/rosshadden/emcee/internal/domain/addon"
	"github.com/rosshadden/emcee/internal/logger"
)

// process resolves one archive against the catalog and replaces it when the
// catalog offers a different file for the pinned game version.
func (r *runner) process(ctx context.Context, name string) Outcome {
	logger.Debug(ctx, "Reading archive metadata")

	doc, err := r.metadata.Read(ctx, r.store.Path(name))
	if err != nil {
		return skipped(name, err)
	}

	logger.InfoKV(ctx, "Searching catalog", "name", doc.Metadata.Name, "layout", doc.Shape.String())

	entries, err := r.catalog.Search(ctx, doc.Metadata.Name, r.resolver.GameVersion())
	if err != nil {
		return failed(name, "", err)
	}

	entry, variant, ok := r.resolver.FindMatch(entries, name)
	if !ok {
		return skipped(name, fmt.Errorf("%w: %q among %d results", addon.ErrNoMatch, doc.Metadata.Name, len(entries)))
	}

	logger.DebugKV(ctx, "Matched catalog entry",
		"entry", entry.Name,
		"entry_id", entry.ID,
		"file_id", variant.FileID,
		"file", variant.FileName,
	)

	if variant.FileName == name {
		return Outcome{
			Archive: name,
			Kind:    KindCurrent,
			Target:  name,
		}
	}

	if r.dryRun {
		return Outcome{
			Archive: name,
			Kind:    KindPending,
			Target:  variant.FileName,
		}
	}

	if err = r.replace(ctx, name, entry, variant); err != nil {
		return failed(name, variant.FileName, err)
	}

	return Outcome{
		Archive: name,
		Kind:    KindUpdated,
		Target:  variant.FileName,
	}
}

// resolve turns the selected variant into a download location.
func (r *runner) resolve(ctx context.Context, entry *addon.CatalogEntry, variant addon.FileVariant) (*addon.ResolvedDownload, error) {
	downloadURL, err := r.catalog.ResolveDownloadURL(ctx, entry.ID, variant.FileID)
	if err != nil {
		return nil, err
	}

	return &addon.ResolvedDownload{
		URL:      downloadURL,
		FileName: variant.FileName,
	}, nil
}

// replace installs the selected variant and removes the old archive afterwards,
// so at least one version of the plugin stays installed at all times.
func (r *runner) replace(ctx context.Context, name string, entry *addon.CatalogEntry, variant addon.FileVariant) error {
	download, err := r.resolve(ctx, entry, variant)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Downloading", "url", download.URL)

	body, size, err := r.catalog.Download(ctx, download.URL)
	if err != nil {
		return err
	}

	defer func() {
		_ = body.Close()
	}()

	src, finish := r.trackProgress(body, size, download.FileName)

	written, err := r.store.Install(ctx, download.FileName, src)

	finish()

	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saved", "file", download.FileName, "size", bytesize.New(float64(written)).String())

	logger.InfoKV(ctx, "Deleting old archive", "file", name)

	return r.store.Remove(ctx, name)
}
