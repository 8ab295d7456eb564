package memstore

import (
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

var _ services.StoreClient = (*Store)(nil)

func TestListObjectsPage_Delimiter(t *testing.T) {
	s := New()
	s.Seed("demo", "x.txt", "docs/readme.md", "docs/img/logo.png", "docs/img/icon.png")

	res, err := s.ListObjectsPage(t.Context(), "demo", services.ListObjectsOptions{Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/"}, res.CommonPrefixes)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, "x.txt", res.Objects[0].Key)
	assert.False(t, res.IsTruncated)

	res, err = s.ListObjectsPage(t.Context(), "demo", services.ListObjectsOptions{Prefix: "docs/", Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/img/"}, res.CommonPrefixes)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, "docs/readme.md", res.Objects[0].Key)
}

func TestListObjectsPage_PagesUntilExhausted(t *testing.T) {
	s := New()
	s.PageSize = 2
	s.Seed("b", "a", "b/1", "b/2", "c", "d", "e")

	var (
		token   string
		entries []string
		pages   int
	)
	for {
		res, err := s.ListObjectsPage(t.Context(), "b", services.ListObjectsOptions{Delimiter: "/", ContinuationToken: token})
		require.NoError(t, err)
		pages++
		entries = append(entries, res.CommonPrefixes...)
		for _, o := range res.Objects {
			entries = append(entries, o.Key)
		}
		if !res.IsTruncated {
			break
		}
		token = res.NextContinuationToken
	}

	assert.Equal(t, 3, pages)
	assert.ElementsMatch(t, []string{"a", "b/", "c", "d", "e"}, entries)
}

func TestListObjectsPage_RecursiveWithoutDelimiter(t *testing.T) {
	s := New()
	s.Seed("b", "p/", "p/a", "p/q/b", "other")

	res, err := s.ListObjectsPage(t.Context(), "b", services.ListObjectsOptions{Prefix: "p/"})
	require.NoError(t, err)

	var keys []string
	for _, o := range res.Objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"p/", "p/a", "p/q/b"}, keys)
	assert.Empty(t, res.CommonPrefixes)
}

func TestFailOnAndHeal(t *testing.T) {
	s := New()
	s.Seed("b", "k")
	boom := errs.New(errs.KindPermissionDenied, "denied")
	s.FailOn("RemoveObject", "b", "k", boom)

	err := s.RemoveObject(t.Context(), "b", "k", minio.RemoveObjectOptions{})
	assert.ErrorIs(t, err, boom)

	s.Heal()
	require.NoError(t, s.RemoveObject(t.Context(), "b", "k", minio.RemoveObjectOptions{}))
	assert.Empty(t, s.Keys("b"))
	assert.Equal(t, 2, s.Calls("RemoveObject"))
}

func TestBucketErrors(t *testing.T) {
	s := New()
	require.NoError(t, s.MakeBucket(t.Context(), "b", minio.MakeBucketOptions{}))

	err := s.MakeBucket(t.Context(), "b", minio.MakeBucketOptions{})
	assert.True(t, errs.IsConflict(err))

	s.Seed("b", "k")
	err = s.RemoveBucket(t.Context(), "b")
	assert.Equal(t, "BucketNotEmpty", errs.CodeOf(err))

	_, err = s.ListObjectsPage(t.Context(), "missing", services.ListObjectsOptions{})
	assert.Equal(t, "NoSuchBucket", errs.CodeOf(err))
}

func TestPolicyLifecycle(t *testing.T) {
	s := New()
	s.Seed("b")

	err := s.DeleteBucketPolicy(t.Context(), "b")
	assert.Equal(t, "NoSuchBucketPolicy", errs.CodeOf(err))

	require.NoError(t, s.SetBucketPolicy(t.Context(), "b", `{"Version":"2012-10-17"}`))
	_, ok := s.Policy("b")
	assert.True(t, ok)

	require.NoError(t, s.DeleteBucketPolicy(t.Context(), "b"))
	_, ok = s.Policy("b")
	assert.False(t, ok)
}

func TestPresign(t *testing.T) {
	s := New()
	s.Seed("b", "k")

	u, err := s.PresignedGetObject(t.Context(), "b", "k", time.Hour, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/b/k"))
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}
