// Package memstore is an in-memory services.StoreClient for tests.
//
// It follows ListObjectsV2 semantics closely enough to exercise the
// projector: delimiter grouping, max-keys paging with continuation tokens
// and the error codes a real store returns.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
	acl         services.ACL
}

type bucket struct {
	created time.Time
	objects map[string]*object
	policy  string
	acl     services.ACL
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	// PageSize caps every listing page regardless of the requested MaxKeys.
	PageSize int
	// BucketACLUnsupported makes PutBucketACL fail like stores without ACLs.
	BucketACLUnsupported bool

	failures map[string]error
	calls    map[string]int
}

func New() *Store {
	return &Store{
		buckets:  map[string]*bucket{},
		now:      time.Now,
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

// FailOn makes op ("RemoveObject", "CopyObject", ...) on bucket/key return
// err until Heal is called. An empty key matches bucket-level calls.
func (s *Store) FailOn(op, bucketName, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failKey(op, bucketName, key)] = err
}

// Heal removes every injected failure.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Seed creates bucketName if needed and writes the given keys with their
// content as data.
func (s *Store) Seed(bucketName string, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucketLocked(bucketName, true)
	for _, k := range keys {
		b.objects[k] = &object{data: []byte(k), modified: s.now(), acl: services.ACLPrivate}
	}
}

// Keys lists every key in the bucket, sorted.
func (s *Store) Keys(bucketName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucketName]
	if !ok {
		return nil
	}
	return sortedKeys(b.objects)
}

// Object returns a stored payload.
func (s *Store) Object(bucketName, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucketName]
	if !ok {
		return nil, false
	}
	o, ok := b.objects[key]
	if !ok {
		return nil, false
	}
	return o.data, true
}

// ContentType returns the content type recorded for key.
func (s *Store) ContentType(bucketName, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[bucketName]; ok {
		if o, ok := b.objects[key]; ok {
			return o.contentType
		}
	}
	return ""
}

// Policy returns the raw policy document and whether one is set.
func (s *Store) Policy(bucketName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucketName]
	if !ok || b.policy == "" {
		return "", false
	}
	return b.policy, true
}

// ObjectACL returns the canned ACL of key.
func (s *Store) ObjectACL(bucketName, key string) services.ACL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[bucketName]; ok {
		if o, ok := b.objects[key]; ok {
			return o.acl
		}
	}
	return ""
}

// BucketACL returns the canned ACL of the bucket.
func (s *Store) BucketACL(bucketName string) services.ACL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[bucketName]; ok {
		return b.acl
	}
	return ""
}

func (s *Store) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListBuckets", "", ""); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(s.buckets))
	for n := range s.buckets {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]minio.BucketInfo, 0, len(names))
	for _, n := range names {
		out = append(out, minio.BucketInfo{Name: n, CreationDate: s.buckets[n].created})
	}
	return out, nil
}

func (s *Store) MakeBucket(ctx context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "MakeBucket", bucketName, ""); err != nil {
		return err
	}
	if _, ok := s.buckets[bucketName]; ok {
		return storeErr(errs.KindConflict, "BucketAlreadyOwnedByYou", "bucket already exists")
	}
	s.bucketLocked(bucketName, true)
	return nil
}

func (s *Store) RemoveBucket(ctx context.Context, bucketName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "RemoveBucket", bucketName, ""); err != nil {
		return err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return err
	}
	if len(b.objects) > 0 {
		return storeErr(errs.KindConflict, "BucketNotEmpty", "the bucket you tried to delete is not empty")
	}
	delete(s.buckets, bucketName)
	return nil
}

func (s *Store) ListObjectsPage(ctx context.Context, bucketName string, opts services.ListObjectsOptions) (services.ListObjectsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListObjectsPage", bucketName, opts.Prefix); err != nil {
		return services.ListObjectsResult{}, err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return services.ListObjectsResult{}, err
	}

	limit := opts.MaxKeys
	if limit <= 0 {
		limit = services.DefaultPageSize
	}
	if s.PageSize > 0 && s.PageSize < limit {
		limit = s.PageSize
	}

	var (
		res      services.ListObjectsResult
		emitted  int
		lastSeen string
	)
	for _, key := range sortedKeys(b.objects) {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if opts.ContinuationToken != "" {
			if key <= opts.ContinuationToken {
				continue
			}
			// Keys folded into a common prefix returned on an earlier page.
			if opts.Delimiter != "" && strings.HasSuffix(opts.ContinuationToken, opts.Delimiter) &&
				strings.HasPrefix(key, opts.ContinuationToken) {
				continue
			}
		}

		entry := key
		isPrefix := false
		if opts.Delimiter != "" {
			rest := key[len(opts.Prefix):]
			if i := strings.Index(rest, opts.Delimiter); i >= 0 {
				entry = opts.Prefix + rest[:i+len(opts.Delimiter)]
				isPrefix = true
			}
		}
		if isPrefix && entry == lastSeen {
			continue
		}

		if emitted == limit {
			res.IsTruncated = true
			res.NextContinuationToken = lastSeen
			break
		}

		if isPrefix {
			res.CommonPrefixes = append(res.CommonPrefixes, entry)
		} else {
			o := b.objects[key]
			res.Objects = append(res.Objects, minio.ObjectInfo{
				Key:          key,
				Size:         int64(len(o.data)),
				LastModified: o.modified,
				ContentType:  o.contentType,
			})
		}
		lastSeen = entry
		emitted++
	}
	return res, nil
}

func (s *Store) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "PutObject", bucketName, objectName); err != nil {
		return minio.UploadInfo{}, err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	b.objects[objectName] = &object{data: data, contentType: opts.ContentType, modified: s.now(), acl: services.ACLPrivate}
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (s *Store) GetObjectReader(ctx context.Context, bucketName, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetObject", bucketName, objectName); err != nil {
		return nil, 0, err
	}
	o, err := s.existingObject(bucketName, objectName)
	if err != nil {
		return nil, 0, err
	}
	data := append([]byte(nil), o.data...)
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *Store) StatObject(ctx context.Context, bucketName, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "StatObject", bucketName, objectName); err != nil {
		return minio.ObjectInfo{}, err
	}
	o, err := s.existingObject(bucketName, objectName)
	if err != nil {
		return minio.ObjectInfo{}, err
	}
	return minio.ObjectInfo{Key: objectName, Size: int64(len(o.data)), LastModified: o.modified, ContentType: o.contentType}, nil
}

// RemoveObject succeeds for missing keys, as S3 DeleteObject does.
func (s *Store) RemoveObject(ctx context.Context, bucketName, objectName string, _ minio.RemoveObjectOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "RemoveObject", bucketName, objectName); err != nil {
		return err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return err
	}
	delete(b.objects, objectName)
	return nil
}

func (s *Store) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CopyObject", src.Bucket, src.Object); err != nil {
		return minio.UploadInfo{}, err
	}
	o, err := s.existingObject(src.Bucket, src.Object)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	b, err := s.existing(dst.Bucket)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	cp := *o
	cp.data = append([]byte(nil), o.data...)
	cp.modified = s.now()
	b.objects[dst.Object] = &cp
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(cp.data))}, nil
}

func (s *Store) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, _ url.Values) (*url.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "PresignedGetObject", bucketName, objectName); err != nil {
		return nil, err
	}
	u := &url.URL{Scheme: "http", Host: "memstore.local", Path: "/" + bucketName + "/" + objectName}
	q := url.Values{}
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int64(expires/time.Second)))
	q.Set("X-Amz-Date", s.now().UTC().Format("20060102T150405Z"))
	u.RawQuery = q.Encode()
	return u, nil
}

func (s *Store) GetBucketPolicy(ctx context.Context, bucketName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "GetBucketPolicy", bucketName, ""); err != nil {
		return "", err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return "", err
	}
	return b.policy, nil
}

func (s *Store) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "SetBucketPolicy", bucketName, ""); err != nil {
		return err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return err
	}
	b.policy = policy
	return nil
}

// DeleteBucketPolicy reports NoSuchBucketPolicy when there is none.
func (s *Store) DeleteBucketPolicy(ctx context.Context, bucketName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "DeleteBucketPolicy", bucketName, ""); err != nil {
		return err
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return err
	}
	if b.policy == "" {
		return storeErr(errs.KindNotFound, "NoSuchBucketPolicy", "the bucket policy does not exist")
	}
	b.policy = ""
	return nil
}

func (s *Store) PutObjectACL(ctx context.Context, bucketName, objectName string, acl services.ACL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "PutObjectACL", bucketName, objectName); err != nil {
		return err
	}
	o, err := s.existingObject(bucketName, objectName)
	if err != nil {
		return err
	}
	o.acl = acl
	return nil
}

func (s *Store) PutBucketACL(ctx context.Context, bucketName string, acl services.ACL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "PutBucketACL", bucketName, ""); err != nil {
		return err
	}
	if s.BucketACLUnsupported {
		return storeErr(errs.KindConnectionFailed, "NotImplemented", "a header you provided implies functionality that is not implemented")
	}
	b, err := s.existing(bucketName)
	if err != nil {
		return err
	}
	b.acl = acl
	return nil
}

// enter counts the call and returns an injected or context error.
// Callers hold s.mu.
func (s *Store) enter(ctx context.Context, op, bucketName, key string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindTimeout, op+" cancelled", err)
	}
	if err, ok := s.failures[failKey(op, bucketName, key)]; ok {
		return err
	}
	return nil
}

func (s *Store) bucketLocked(name string, create bool) *bucket {
	b, ok := s.buckets[name]
	if !ok && create {
		b = &bucket{created: s.now(), objects: map[string]*object{}, acl: services.ACLPrivate}
		s.buckets[name] = b
	}
	return b
}

func (s *Store) existing(name string) (*bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, storeErr(errs.KindNotFound, "NoSuchBucket", "bucket does not exist")
	}
	return b, nil
}

func (s *Store) existingObject(bucketName, key string) (*object, error) {
	b, err := s.existing(bucketName)
	if err != nil {
		return nil, err
	}
	o, ok := b.objects[key]
	if !ok {
		return nil, storeErr(errs.KindNotFound, "NoSuchKey", "key does not exist")
	}
	return o, nil
}

func storeErr(kind errs.Kind, code, msg string) error {
	return errs.New(kind, msg).WithCode(code)
}

func failKey(op, bucketName, key string) string {
	return op + "\x00" + bucketName + "\x00" + key
}

func sortedKeys(m map[string]*object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
