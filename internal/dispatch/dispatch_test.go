package dispatch_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/services/memstore"
	"github.com/damacus/ironshelf/internal/validate"
)

type fakeFactory struct {
	store *memstore.Store
	conns []services.Connection
}

func (f *fakeFactory) NewClient(_ context.Context, conn services.Connection) (services.StoreClient, error) {
	f.conns = append(f.conns, conn)
	return f.store, nil
}

func (f *fakeFactory) NewAdminClient(services.Connection) (services.AdminClient, error) {
	return nil, errs.New(errs.KindConnectionFailed, "not a MinIO server")
}

type harness struct {
	d       *dispatch.Dispatcher
	store   *memstore.Store
	factory *fakeFactory
	history *services.HistoryStore
}

func newHarness(t *testing.T, withHistory bool) *harness {
	t.Helper()
	catalog, err := i18n.New()
	require.NoError(t, err)
	v, err := validate.New(catalog)
	require.NoError(t, err)

	store := memstore.New()
	factory := &fakeFactory{store: store}
	h := &harness{store: store, factory: factory}

	deps := dispatch.Deps{
		Sessions:  services.NewSessionManager(factory, nil),
		Explorer:  explorer.New(explorer.Options{}),
		Validator: v,
	}
	if withHistory {
		hist, err := services.OpenHistory(services.HistoryOptions{
			Path:            filepath.Join(t.TempDir(), "history.db"),
			Enabled:         true,
			RememberSecrets: true,
		}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = hist.Close() })
		deps.History = hist
		h.history = hist
	}
	h.d = dispatch.New(deps)
	return h
}

func (h *harness) connect(t *testing.T) *services.Session {
	t.Helper()
	res, err := h.d.Connect(t.Context(), dispatch.Connect{
		Endpoint:  "localhost:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		PathStyle: true,
	})
	require.NoError(t, err)
	return res.Session
}

func TestConnect_RecordsProfile(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.d.Connect(t.Context(), dispatch.Connect{Endpoint: "localhost:9000", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "localhost:9000", res.Profile.Endpoint)

	list, err := h.d.History(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, h.d.HistoryEnabled())
}

func TestConnect_FromProfile(t *testing.T) {
	h := newHarness(t, true)
	first := h.connect(t)
	h.d.Disconnect(t.Context())
	assert.Nil(t, h.d.Sessions().Current())

	list, err := h.d.History(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)

	res, err := h.d.Connect(t.Context(), dispatch.Connect{ProfileID: list[0].ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, res.Session.ID)
	assert.Equal(t, "sk", h.factory.conns[len(h.factory.conns)-1].SecretKey)
}

func TestConnect_Validation(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.d.Connect(t.Context(), dispatch.Connect{AccessKey: "ak", SecretKey: "sk"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "endpoint")

	_, err = h.d.Connect(t.Context(), dispatch.Connect{Endpoint: "localhost:9000", AccessKey: "ak"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Empty(t, h.factory.conns)
}

func TestConnect_ProfileWithoutHistory(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.d.Connect(t.Context(), dispatch.Connect{ProfileID: "nope"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestIntents_RequireSession(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.d.ListBuckets(t.Context(), nil, dispatch.ListBuckets{})
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))

	_, err = h.d.Browse(t.Context(), nil, dispatch.Browse{Bucket: "b"})
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestBrowse_FilterAndNavigation(t *testing.T) {
	h := newHarness(t, false)
	h.store.Seed("b", "docs/a/", "docs/a/x.txt", "docs/report.pdf", "docs/notes.txt")
	sess := h.connect(t)

	res, err := h.d.Browse(t.Context(), sess, dispatch.Browse{Bucket: "b", Prefix: "docs", Query: "REP"})
	require.NoError(t, err)

	assert.Equal(t, "docs/", res.Prefix)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "report.pdf", res.Nodes[0].Name)
	assert.Equal(t, "", res.Parent)
	require.Len(t, res.Breadcrumbs, 1)
	assert.Equal(t, "docs/", res.Breadcrumbs[0].Prefix)
}

func TestCreateBucket_InvalidNameTranslated(t *testing.T) {
	h := newHarness(t, false)
	sess := h.connect(t)

	_, err := h.d.ListBuckets(t.Context(), sess, dispatch.ListBuckets{})
	require.NoError(t, err)

	errEn := h.d.CreateBucket(t.Context(), sess, dispatch.CreateBucket{Bucket: "Bad_Name"})
	require.Error(t, errEn)
	assert.True(t, errs.IsInvalidInput(errEn))

	ctx := i18n.WithLanguage(t.Context(), i18n.Persian)
	errFa := h.d.CreateBucket(ctx, sess, dispatch.CreateBucket{Bucket: "Bad_Name"})
	require.Error(t, errFa)
	assert.NotEqual(t, errEn.Error(), errFa.Error())
	assert.Equal(t, 0, h.store.Calls("MakeBucket"))
}

func TestBucketLifecycle(t *testing.T) {
	h := newHarness(t, false)
	sess := h.connect(t)
	ctx := t.Context()

	require.NoError(t, h.d.CreateBucket(ctx, sess, dispatch.CreateBucket{Bucket: "photos", Public: true}))
	assert.Equal(t, services.ACLPublicRead, h.store.BucketACL("photos"))

	vis, err := h.d.SetBucketVisibility(ctx, sess, dispatch.SetBucketVisibility{Bucket: "photos", Public: true})
	require.NoError(t, err)
	assert.Equal(t, explorer.VisibilityPublicRead, vis)

	got, err := h.d.BucketVisibility(ctx, sess, dispatch.BucketVisibility{Bucket: "photos"})
	require.NoError(t, err)
	assert.Equal(t, explorer.VisibilityPublicRead, got)

	key, err := h.d.CreateFolder(ctx, sess, dispatch.CreateFolder{Bucket: "photos", Name: "2026"})
	require.NoError(t, err)
	assert.Equal(t, "2026/", key)

	node, err := h.d.Upload(ctx, sess, dispatch.Upload{
		Bucket: "photos", Key: "2026/cat.txt", Body: strings.NewReader("meow"), Size: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "cat.txt", node.Name)

	res, err := h.d.DeleteBucket(ctx, sess, dispatch.DeleteBucket{Bucket: "photos"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded())

	buckets, err := h.d.ListBuckets(ctx, sess, dispatch.ListBuckets{WithUsage: true})
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestObjectIntents(t *testing.T) {
	h := newHarness(t, false)
	h.store.Seed("b", "a.txt", "dir/", "dir/one", "dir/two")
	sess := h.connect(t)
	ctx := t.Context()

	var buf bytes.Buffer
	n, err := h.d.Download(ctx, sess, dispatch.Download{Bucket: "b", Key: "a.txt", Writer: &buf})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "a.txt", buf.String())

	out := filepath.Join(t.TempDir(), "copy.txt")
	dl, err := h.d.DownloadFile(ctx, sess, dispatch.DownloadFile{Bucket: "b", Key: "a.txt", Path: out})
	require.NoError(t, err)
	assert.Equal(t, out, dl.Path)

	require.NoError(t, h.d.SetObjectVisibility(ctx, sess, dispatch.SetObjectVisibility{Bucket: "b", Key: "a.txt", Public: true}))
	assert.Equal(t, services.ACLPublicRead, h.store.ObjectACL("b", "a.txt"))

	link, err := h.d.Share(ctx, sess, dispatch.Share{Bucket: "b", Key: "a.txt", Expiry: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, link.Expiry)

	newKey, err := h.d.Rename(ctx, sess, dispatch.Rename{Bucket: "b", Key: "a.txt", NewName: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "b.txt", newKey)

	res, err := h.d.DeleteObjects(ctx, sess, dispatch.DeleteObjects{Bucket: "b", Keys: []string{"b.txt", "dir/"}})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Succeeded())
	assert.Empty(t, h.store.Keys("b"))
}

func TestDeleteObjects_EmptySelection(t *testing.T) {
	h := newHarness(t, false)
	sess := h.connect(t)

	_, err := h.d.DeleteObjects(t.Context(), sess, dispatch.DeleteObjects{Bucket: "b"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestPreferences(t *testing.T) {
	h := newHarness(t, true)
	ctx := t.Context()

	prefs, err := h.d.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultPreferences(), prefs)

	require.NoError(t, h.d.SetPreference(ctx, dispatch.SetPreference{Key: services.PrefTheme, Value: services.ThemeDark}))
	require.NoError(t, h.d.SetPreference(ctx, dispatch.SetPreference{Key: services.PrefLanguage, Value: services.LanguagePersian}))

	prefs, err = h.d.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.ThemeDark, prefs.Theme)
	assert.Equal(t, services.LanguagePersian, prefs.Language)

	err = h.d.SetPreference(ctx, dispatch.SetPreference{Key: services.PrefTheme, Value: "neon"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestPreferences_WithoutHistory(t *testing.T) {
	h := newHarness(t, false)

	require.NoError(t, h.d.SetPreference(t.Context(), dispatch.SetPreference{Key: services.PrefTheme, Value: services.ThemeDark}))
	prefs, err := h.d.Preferences(t.Context())
	require.NoError(t, err)
	assert.Equal(t, services.DefaultPreferences(), prefs)

	list, err := h.d.History(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, h.d.HistoryEnabled())
}

func TestForgetConnection(t *testing.T) {
	h := newHarness(t, true)
	h.connect(t)

	list, err := h.d.History(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = h.d.ForgetConnection(t.Context(), dispatch.ForgetConnection{})
	assert.True(t, errs.IsInvalidInput(err))

	require.NoError(t, h.d.ForgetConnection(t.Context(), dispatch.ForgetConnection{ID: list[0].ID}))
	list, err = h.d.History(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}
