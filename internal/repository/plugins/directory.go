package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/rosshadden/emcee/internal/domain/addon"
	"github.com/rosshadden/emcee/internal/logger"
)

// DefaultFileMode is the permission of installed archives.
const DefaultFileMode os.FileMode = 0o644

var (
	// errUnsafeName is returned for names that would escape the directory.
	errUnsafeName = errors.New("unsafe archive name")
	// errNotDirectory is returned when the root exists but is not a directory.
	errNotDirectory = errors.New("not a directory")
)

// Directory is a folder of plugin archives sharing one extension.
type Directory struct {
	// root is the folder holding the archives.
	root string
	// extension selects archive files, including the leading dot.
	extension string
}

// NewDirectory returns a Directory over root for files ending in extension.
func NewDirectory(root, extension string) *Directory {
	return &Directory{
		root:      filepath.Clean(root),
		extension: extension,
	}
}

// Root returns the folder the directory manages.
func (d *Directory) Root() string {
	return d.root
}

// Path returns the full path of the archive called name.
func (d *Directory) Path(name string) string {
	return filepath.Join(d.root, name)
}

// List returns the archive names in directory order. Hidden files and
// sub-directories are never archives. Symlinks count when they resolve to a
// regular file.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("stat plugin directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", d.root, errNotDirectory)
	}

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list plugin directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, d.extension) {
			continue
		}

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			if !d.isLinkedFile(ctx, name) {
				continue
			}
		case !entry.Type().IsRegular():
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

// isLinkedFile reports whether the symlink called name resolves to a regular file.
func (d *Directory) isLinkedFile(ctx context.Context, name string) bool {
	info, err := os.Stat(d.Path(name))
	if err != nil {
		logger.WarnKV(ctx, "Skipping unresolvable symlink", "file", name, "error", err)

		return false
	}

	if !info.Mode().IsRegular() {
		logger.WarnKV(ctx, "Skipping symlink to non-regular file", "file", name)

		return false
	}

	return true
}

// Install writes src to the archive called name and returns the number of
// bytes written. The archive only becomes visible once fully written, and an
// existing archive of that name is replaced atomically.
// Failures while reading src wrap addon.ErrDownloadFailure.
func (d *Directory) Install(ctx context.Context, name string, src io.Reader) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	target := d.Path(name)

	counter := &countingReader{
		ctx: ctx,
		src: src,
	}

	_, err := os.Lstat(target)

	switch {
	case err == nil:
		return replaceFile(name, target, counter)
	case errors.Is(err, os.ErrNotExist):
		return d.create(name, target, counter)
	default:
		return 0, fmt.Errorf("stat %s: %w", name, err)
	}
}

// replaceFile swaps an existing archive for the contents of counter.
func replaceFile(name, target string, counter *countingReader) (int64, error) {
	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
	}

	if err := goupdate.Apply(counter, options); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return 0, fmt.Errorf("install %s: rollback failed: %w", name, rollbackErr)
		}

		if counter.err != nil {
			return 0, fmt.Errorf("%w: %s: %w", addon.ErrDownloadFailure, name, counter.err)
		}

		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	return counter.n, nil
}

// create streams counter into a hidden scratch file and renames it to target.
func (d *Directory) create(name, target string, counter *countingReader) (int64, error) {
	scratch, err := os.CreateTemp(d.root, "."+name+".*.new")
	if err != nil {
		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	scratchPath := scratch.Name()
	committed := false

	defer func() {
		if !committed {
			_ = os.Remove(scratchPath)
		}
	}()

	if _, err = io.Copy(scratch, counter); err != nil {
		_ = scratch.Close()

		if counter.err != nil {
			return 0, fmt.Errorf("%w: %s: %w", addon.ErrDownloadFailure, name, counter.err)
		}

		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	if err = scratch.Chmod(DefaultFileMode); err != nil {
		_ = scratch.Close()

		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	if err = scratch.Sync(); err != nil {
		_ = scratch.Close()

		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	if err = scratch.Close(); err != nil {
		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	if err = os.Rename(scratchPath, target); err != nil {
		return 0, fmt.Errorf("install %s: %w", name, err)
	}

	committed = true

	return counter.n, nil
}

// Remove deletes the archive called name.
func (d *Directory) Remove(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := os.Remove(d.Path(name)); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}

	return nil
}

// checkName rejects names that are not a plain visible file in the directory.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", errUnsafeName, name)
	}

	return nil
}

// countingReader counts bytes read, stops once ctx is done, and keeps the
// first read error so it can be told apart from filesystem errors.
type countingReader struct {
	ctx context.Context //nolint:containedctx // Checked between reads of a single stream.
	src io.Reader
	n   int64
	err error
}

func (r *countingReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		r.err = err

		return 0, err
	}

	n, err := r.src.Read(p)
	r.n += int64(n)

	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
	}

	return n, err
}
