package plugins

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosshadden/emcee/internal/domain/addon"
)

func touch(t *testing.T, dir, name, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600))
}

// TestDirectory_List keeps only visible regular files with the extension.
func TestDirectory_List(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "AE2WT-1.3.9.jar", "a")
	touch(t, dir, "jei_1.12.2-4.16.1.301.jar", "b")
	touch(t, dir, "readme.txt", "c")
	touch(t, dir, ".AE2WT-1.4.0.jar.new", "d")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.jar"), 0o700))

	names, err := NewDirectory(dir, ".jar").List(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"AE2WT-1.3.9.jar", "jei_1.12.2-4.16.1.301.jar"}, names)
}

// TestDirectory_List_Symlinks keeps links to regular files and skips broken ones.
func TestDirectory_List_Symlinks(t *testing.T) {
	t.Parallel()

	shared := t.TempDir()
	touch(t, shared, "jei_1.12.2-4.16.1.301.jar", "b")
	require.NoError(t, os.Mkdir(filepath.Join(shared, "folder"), 0o700))

	dir := t.TempDir()
	touch(t, dir, "AE2WT-1.3.9.jar", "a")
	require.NoError(t, os.Symlink(filepath.Join(shared, "jei_1.12.2-4.16.1.301.jar"), filepath.Join(dir, "jei_1.12.2-4.16.1.301.jar")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "gone.jar"), filepath.Join(dir, "gone.jar")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "folder"), filepath.Join(dir, "folder.jar")))

	names, err := NewDirectory(dir, ".jar").List(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"AE2WT-1.3.9.jar", "jei_1.12.2-4.16.1.301.jar"}, names)
}

// TestDirectory_List_Missing fails for a missing or non-directory root.
func TestDirectory_List_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := NewDirectory(filepath.Join(dir, "missing"), ".jar").List(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	touch(t, dir, "file", "x")

	_, err = NewDirectory(filepath.Join(dir, "file"), ".jar").List(context.Background())
	require.ErrorIs(t, err, errNotDirectory)
}

// TestDirectory_Install_New writes a new archive and leaves no scratch files behind.
func TestDirectory_Install_New(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := NewDirectory(dir, ".jar")

	n, err := d.Install(context.Background(), "AE2WT-1.4.0.jar", strings.NewReader("new-bytes"))
	require.NoError(t, err)
	require.Equal(t, int64(len("new-bytes")), n)

	data, err := os.ReadFile(filepath.Join(dir, "AE2WT-1.4.0.jar"))
	require.NoError(t, err)
	require.Equal(t, "new-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestDirectory_Install_Replaces swaps an existing archive of the same name.
func TestDirectory_Install_Replaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "AE2WT-1.4.0.jar", "old-bytes")

	_, err := NewDirectory(dir, ".jar").Install(context.Background(), "AE2WT-1.4.0.jar", strings.NewReader("new-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "AE2WT-1.4.0.jar"))
	require.NoError(t, err)
	require.Equal(t, "new-bytes", string(data))
}

// observingReader records what the directory looks like while bytes are still arriving.
type observingReader struct {
	t      *testing.T
	dir    *Directory
	target string
	src    io.Reader
	seen   bool
	names  []string
	exists bool
}

func (r *observingReader) Read(p []byte) (int, error) {
	if !r.seen {
		r.seen = true

		_, err := os.Stat(r.target)
		r.exists = err == nil

		names, err := r.dir.List(context.Background())
		require.NoError(r.t, err)

		r.names = names
	}

	return r.src.Read(p)
}

// TestDirectory_Install_HiddenUntilComplete never exposes a partial archive.
func TestDirectory_Install_HiddenUntilComplete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := NewDirectory(dir, ".jar")
	target := filepath.Join(dir, "AE2WT-1.4.0.jar")

	src := &observingReader{
		t:      t,
		dir:    d,
		target: target,
		src:    strings.NewReader("new-bytes"),
	}

	_, err := d.Install(context.Background(), "AE2WT-1.4.0.jar", src)
	require.NoError(t, err)

	require.True(t, src.seen)
	require.False(t, src.exists, "archive visible before the download finished")
	require.Empty(t, src.names)

	info, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, DefaultFileMode, info.Mode().Perm())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

// TestDirectory_Install_StreamFailure keeps the directory as it was.
func TestDirectory_Install_StreamFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := NewDirectory(dir, ".jar")

	_, err := d.Install(context.Background(), "AE2WT-1.4.0.jar", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.ErrorIs(t, err, addon.ErrDownloadFailure)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestDirectory_Install_StreamFailureKeepsExisting leaves the old bytes in place.
func TestDirectory_Install_StreamFailureKeepsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "AE2WT-1.4.0.jar", "old-bytes")

	_, err := NewDirectory(dir, ".jar").Install(context.Background(), "AE2WT-1.4.0.jar", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.ErrorIs(t, err, addon.ErrDownloadFailure)

	data, err := os.ReadFile(filepath.Join(dir, "AE2WT-1.4.0.jar"))
	require.NoError(t, err)
	require.Equal(t, "old-bytes", string(data))
}

// TestDirectory_Install_Canceled stops reading once the context is done.
func TestDirectory_Install_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirectory(t.TempDir(), ".jar").Install(ctx, "a.jar", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)
}

// TestDirectory_RejectsUnsafeNames keeps catalog-supplied names inside the directory.
func TestDirectory_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	d := NewDirectory(t.TempDir(), ".jar")

	for _, name := range []string{"", "../escape.jar", "sub/dir.jar", `sub\dir.jar`, ".hidden.jar", ".."} {
		_, err := d.Install(context.Background(), name, strings.NewReader("x"))
		require.ErrorIs(t, err, errUnsafeName, name)

		require.ErrorIs(t, d.Remove(context.Background(), name), errUnsafeName, name)
	}
}

// TestDirectory_Remove deletes an archive and reports missing ones.
func TestDirectory_Remove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "AE2WT-1.3.9.jar", "a")

	d := NewDirectory(dir, ".jar")
	require.NoError(t, d.Remove(context.Background(), "AE2WT-1.3.9.jar"))
	require.NoFileExists(t, filepath.Join(dir, "AE2WT-1.3.9.jar"))

	require.ErrorIs(t, d.Remove(context.Background(), "AE2WT-1.3.9.jar"), os.ErrNotExist)
}
