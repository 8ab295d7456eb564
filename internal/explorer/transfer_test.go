package explorer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/services/memstore"
)

func TestUploadDownload_RoundTrip(t *testing.T) {
	store := memstore.New()
	store.Seed("b")
	sess := newSession(store)
	e := explorer.New(explorer.Options{})

	node, err := e.Upload(t.Context(), sess, "b", "docs/hello.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", node.Name)
	assert.Equal(t, int64(5), node.Size)

	var buf bytes.Buffer
	n, err := e.Download(t.Context(), sess, "b", "docs/hello.txt", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())
}

func TestUpload_RejectsFolderKey(t *testing.T) {
	store := memstore.New()
	store.Seed("b")
	e := explorer.New(explorer.Options{})

	_, err := e.Upload(t.Context(), newSession(store), "b", "dir/", strings.NewReader(""), 0, "")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestUploadFile_SniffsContentType(t *testing.T) {
	store := memstore.New()
	store.Seed("b")
	e := explorer.New(explorer.Options{})

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0o600))

	node, err := e.UploadFile(t.Context(), newSession(store), "b", "site", path)
	require.NoError(t, err)
	assert.Equal(t, "site/page.html", node.Key)
	assert.True(t, strings.HasPrefix(store.ContentType("b", "site/page.html"), "text/html"))
}

func TestUploadFile_LocalErrors(t *testing.T) {
	store := memstore.New()
	store.Seed("b")
	e := explorer.New(explorer.Options{})

	_, err := e.UploadFile(t.Context(), newSession(store), "b", "", filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errs.IsLocalIO(err))

	_, err = e.UploadFile(t.Context(), newSession(store), "b", "", t.TempDir())
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDownloadFile_IntoDirectory(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "docs/readme.md")
	e := explorer.New(explorer.Options{})
	dir := t.TempDir()

	path, n, err := e.DownloadFile(t.Context(), newSession(store), "b", "docs/readme.md", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "readme.md"), path)
	assert.Equal(t, int64(len("docs/readme.md")), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "docs/readme.md", string(data))
}

func TestDownloadFile_MissingKeyLeavesNoFile(t *testing.T) {
	store := memstore.New()
	store.Seed("b")
	e := explorer.New(explorer.Options{})
	dir := t.TempDir()

	_, _, err := e.DownloadFile(t.Context(), newSession(store), "b", "nope", filepath.Join(dir, "out"))
	assert.True(t, errs.IsNotFound(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRename_CopyThenDelete(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "docs/old.txt")
	e := explorer.New(explorer.Options{})

	to, err := e.RenameInPlace(t.Context(), newSession(store), "b", "docs/old.txt", "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs/new.txt", to)
	assert.Equal(t, []string{"docs/new.txt"}, store.Keys("b"))

	data, ok := store.Object("b", "docs/new.txt")
	require.True(t, ok)
	assert.Equal(t, "docs/old.txt", string(data))
}

func TestRename_FailedCopyNeverDeletes(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "a.txt")
	store.FailOn("CopyObject", "b", "a.txt", denied)
	e := explorer.New(explorer.Options{})

	err := e.Rename(t.Context(), newSession(store), "b", "a.txt", "b.txt")
	assert.ErrorIs(t, err, denied)
	assert.Zero(t, store.Calls("RemoveObject"))
	assert.Equal(t, []string{"a.txt"}, store.Keys("b"))
}

func TestRename_FailedDeleteReportsBothKeys(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "a.txt")
	store.FailOn("RemoveObject", "b", "a.txt", denied)
	e := explorer.New(explorer.Options{})

	err := e.Rename(t.Context(), newSession(store), "b", "a.txt", "b.txt")
	assert.True(t, errs.IsPartialFailure(err))
	assert.Equal(t, []string{"a.txt", "b.txt"}, store.Keys("b"))
}

func TestRename_RejectsFolders(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "dir/")
	e := explorer.New(explorer.Options{})

	assert.True(t, errs.IsInvalidInput(e.Rename(t.Context(), newSession(store), "b", "dir/", "other/")))
	_, err := e.RenameInPlace(t.Context(), newSession(store), "b", "a.txt", "x/y")
	assert.True(t, errs.IsInvalidInput(err))
	assert.Zero(t, store.Calls("CopyObject"))
}
