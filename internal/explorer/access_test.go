package explorer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
	"github.com/damacus/ironshelf/internal/services/memstore"
)

func testSession(store *memstore.Store) *services.Session {
	return &services.Session{ID: "t", Client: store}
}

func TestPublicReadPolicy_Shape(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(PublicReadPolicy("demo")), &doc))

	assert.Equal(t, "2012-10-17", doc["Version"])
	st := doc["Statement"].([]any)[0].(map[string]any)
	assert.Equal(t, "Allow", st["Effect"])
	assert.Equal(t, "*", st["Principal"])
	assert.Equal(t, []any{"s3:GetObject"}, st["Action"])
	assert.Equal(t, []any{"arn:aws:s3:::demo/*"}, st["Resource"])
}

func TestSetBucketPublic_RoundTripLeavesNoPolicy(t *testing.T) {
	store := memstore.New()
	store.Seed("demo")
	sess := testSession(store)
	e := New(Options{})

	require.NoError(t, e.SetBucketPublic(t.Context(), sess, "demo", true))
	_, ok := store.Policy("demo")
	assert.True(t, ok)
	vis, err := e.BucketVisibility(t.Context(), sess, "demo")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublicRead, vis)

	require.NoError(t, e.SetBucketPublic(t.Context(), sess, "demo", false))
	_, ok = store.Policy("demo")
	assert.False(t, ok, "policy must be absent, not empty")
	vis, err = e.BucketVisibility(t.Context(), sess, "demo")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, vis)
}

func TestSetBucketPrivate_MissingPolicyIsSuccess(t *testing.T) {
	store := memstore.New()
	store.Seed("demo")

	err := New(Options{}).SetBucketPublic(t.Context(), testSession(store), "demo", false)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Calls("DeleteBucketPolicy"))
}

func TestSetBucketPrivate_OtherErrorsSurface(t *testing.T) {
	store := memstore.New()

	err := New(Options{}).SetBucketPublic(t.Context(), testSession(store), "missing", false)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, "NoSuchBucket", errs.CodeOf(err))
}

func TestClassifyPolicy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Visibility
	}{
		{"empty", "", VisibilityPrivate},
		{"ours", PublicReadPolicy("b"), VisibilityPublicRead},
		{"minio normalised", `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::b/*"]}]}`, VisibilityPublicRead},
		{"string fields", `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":"*"},"Action":"s3:GetObject","Resource":"arn:aws:s3:::b/*"}]}`, VisibilityPublicRead},
		{"other bucket", PublicReadPolicy("c"), VisibilityCustom},
		{"extra action", `{"Statement":[{"Effect":"Allow","Principal":"*","Action":["s3:GetObject","s3:ListBucket"],"Resource":["arn:aws:s3:::b/*"]}]}`, VisibilityCustom},
		{"deny", `{"Statement":[{"Effect":"Deny","Principal":"*","Action":["s3:GetObject"],"Resource":["arn:aws:s3:::b/*"]}]}`, VisibilityCustom},
		{"named principal", `{"Statement":[{"Effect":"Allow","Principal":{"AWS":["arn:aws:iam::1:root"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::b/*"]}]}`, VisibilityCustom},
		{"garbage", `{not json`, VisibilityCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyPolicy("b", tt.raw))
		})
	}
}

func TestSetObjectPublic(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "k")
	sess := testSession(store)
	e := New(Options{})

	require.NoError(t, e.SetObjectPublic(t.Context(), sess, "b", "k", true))
	assert.Equal(t, services.ACLPublicRead, store.ObjectACL("b", "k"))

	require.NoError(t, e.SetObjectPublic(t.Context(), sess, "b", "k", false))
	assert.Equal(t, services.ACLPrivate, store.ObjectACL("b", "k"))

	assert.True(t, errs.IsNotFound(e.SetObjectPublic(t.Context(), sess, "b", "missing", true)))
}

func TestClampExpiry(t *testing.T) {
	e := New(Options{ShareExpiry: time.Hour})

	tests := []struct {
		in      time.Duration
		want    time.Duration
		wantErr bool
	}{
		{0, time.Hour, false},
		{30 * time.Minute, 30 * time.Minute, false},
		{time.Millisecond, time.Second, false},
		{MaxShareExpiry, MaxShareExpiry, false},
		{30 * 24 * time.Hour, MaxShareExpiry, false},
		{-time.Second, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := e.ClampExpiry(tt.in)
			if tt.wantErr {
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, MaxShareExpiry, New(Options{}).shareExpiry, "default is one week")
}

func TestShare_DefaultAndRegenerate(t *testing.T) {
	store := memstore.New()
	store.Seed("b", "docs/a.pdf")
	sess := testSession(store)
	e := New(Options{})

	week, err := e.Share(t.Context(), sess, "b", "docs/a.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, MaxShareExpiry, week.Expiry)
	assert.Contains(t, week.URL, "X-Amz-Expires=604800")

	hour, err := e.Share(t.Context(), sess, "b", "docs/a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, hour.URL, "X-Amz-Expires=3600")
	assert.NotEqual(t, week.URL, hour.URL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), hour.ExpiresAt, time.Minute)
}
