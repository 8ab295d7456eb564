package explorer

import (
	"bytes"
	"context"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

// CreateFolder writes the zero-length marker parentPrefix+name+"/" and
// returns its key. Creating an existing folder overwrites the marker.
func (e *Explorer) CreateFolder(ctx context.Context, sess *services.Session, bucket, parentPrefix, name string) (string, error) {
	if err := validSegment("folder", name); err != nil {
		return "", err
	}
	key := NormalizePrefix(parentPrefix) + name + Delimiter

	_, err := sess.Client.PutObject(ctx, bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{
		ContentType: "application/x-directory",
	})
	if err != nil {
		return "", err
	}
	e.log.Info().Str("bucket", bucket).Str("key", key).Msg("folder created")
	return key, nil
}

// DeleteFolder deletes every key under prefix, one request at a time.
// Failures do not stop the sweep. The marker (key == prefix) goes last and
// only when every child was deleted. The returned error is a
// PartialFailure when any item failed; deleted keys are never restored.
func (e *Explorer) DeleteFolder(ctx context.Context, sess *services.Session, bucket, prefix string) (BulkResult, error) {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		return BulkResult{}, errs.New(errs.KindInvalidInput, "refusing to delete the bucket root as a folder")
	}

	keys, err := e.listAll(ctx, sess, bucket, prefix)
	if err != nil {
		return BulkResult{}, err
	}

	var (
		children  []string
		hasMarker bool
	)
	for _, k := range keys {
		if k == prefix {
			hasMarker = true
			continue
		}
		children = append(children, k)
	}

	res := e.removeEach(ctx, sess, bucket, children)
	if hasMarker {
		if res.Failed() == 0 {
			res.merge(e.removeEach(ctx, sess, bucket, []string{prefix}))
		} else {
			res.skip(prefix)
		}
	}

	e.log.Info().Str("bucket", bucket).Str("prefix", prefix).
		Int("deleted", res.Succeeded()).Int("failed", res.Failed()).Msg("folder deleted")
	return res, res.Err()
}

// DeleteObjects deletes the selected keys in order. A key ending in "/"
// is a folder and is deleted with everything under it.
func (e *Explorer) DeleteObjects(ctx context.Context, sess *services.Session, bucket string, keys []string) (BulkResult, error) {
	if len(keys) == 0 {
		return BulkResult{}, errs.New(errs.KindInvalidInput, "nothing selected")
	}

	var res BulkResult
	for _, k := range keys {
		if strings.HasSuffix(k, Delimiter) {
			sub, err := e.DeleteFolder(ctx, sess, bucket, k)
			if err != nil && !errs.IsPartialFailure(err) {
				// The folder could not even be listed.
				res.add(k, err)
				continue
			}
			res.merge(sub)
			continue
		}
		res.merge(e.removeEach(ctx, sess, bucket, []string{k}))
	}
	return res, res.Err()
}

// DeleteBucket empties the bucket across every listing page and removes it
// only when every object was deleted.
func (e *Explorer) DeleteBucket(ctx context.Context, sess *services.Session, bucket string) (BulkResult, error) {
	keys, err := e.listAll(ctx, sess, bucket, "")
	if err != nil {
		return BulkResult{}, err
	}

	res := e.removeEach(ctx, sess, bucket, keys)
	if res.Failed() > 0 {
		e.log.Warn().Str("bucket", bucket).Int("failed", res.Failed()).Msg("bucket not removed, objects remain")
		return res, res.Err()
	}

	if err := sess.Client.RemoveBucket(ctx, bucket); err != nil {
		return res, err
	}
	e.log.Info().Str("bucket", bucket).Int("objects", res.Succeeded()).Msg("bucket deleted")
	return res, nil
}

// CreateBucket makes the bucket. When public is set a public-read bucket ACL
// is applied; stores without bucket ACLs only produce a warning.
func (e *Explorer) CreateBucket(ctx context.Context, sess *services.Session, bucket, region string, public bool) error {
	if region == "" {
		region = sess.Connection.RegionOrDefault()
	}
	if err := sess.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return err
	}
	e.log.Info().Str("bucket", bucket).Str("region", region).Msg("bucket created")

	if public {
		if err := sess.Client.PutBucketACL(ctx, bucket, services.ACLPublicRead); err != nil {
			e.log.Warn().Err(err).Str("bucket", bucket).Msg("could not set bucket ACL")
		}
	}
	return nil
}
