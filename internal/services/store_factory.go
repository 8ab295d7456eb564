package services

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/damacus/ironshelf/internal/errs"
)

// DefaultPageSize is the number of keys requested per listing page when
// callers do not ask for a specific size.
const DefaultPageSize = 1000

// ACL is a canned access control list.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// ListObjectsOptions describes one ListObjectsV2 request.
type ListObjectsOptions struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int
	ContinuationToken string
}

// ListObjectsResult is one page of a ListObjectsV2 response.
type ListObjectsResult struct {
	Objects               []minio.ObjectInfo
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// AdminClient is the MinIO admin surface used to decorate bucket lists.
// Only MinIO servers answer it; callers must treat errors as "no data".
type AdminClient interface {
	DataUsageInfo(ctx context.Context) (madmin.DataUsageInfo, error)
}

// StoreClient is the object-store surface the projector is built on.
// Every method is one request/response call against the store.
type StoreClient interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	RemoveBucket(ctx context.Context, bucketName string) error

	// Object Operations
	ListObjectsPage(ctx context.Context, bucketName string, opts ListObjectsOptions) (ListObjectsResult, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObjectReader(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, int64, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)

	// Presigned URLs
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)

	// Bucket Policy
	GetBucketPolicy(ctx context.Context, bucketName string) (string, error)
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	DeleteBucketPolicy(ctx context.Context, bucketName string) error

	// ACLs
	PutObjectACL(ctx context.Context, bucketName, objectName string, acl ACL) error
	PutBucketACL(ctx context.Context, bucketName string, acl ACL) error
}

// StoreFactory creates authenticated clients
type StoreFactory interface {
	NewClient(ctx context.Context, conn Connection) (StoreClient, error)
	NewAdminClient(conn Connection) (AdminClient, error)
}

// WrappedStoreClient implements StoreClient with minio-go for data and
// policy calls and the AWS SDK for canned ACLs, which minio-go lacks.
type WrappedStoreClient struct {
	core *minio.Core
	acl  *s3.Client
}

func (c *WrappedStoreClient) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	buckets, err := c.core.ListBuckets(ctx)
	if err != nil {
		return nil, mapError(err, "failed to list buckets")
	}
	return buckets, nil
}

func (c *WrappedStoreClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return mapError(c.core.MakeBucket(ctx, bucketName, opts), "failed to create bucket "+bucketName)
}

func (c *WrappedStoreClient) RemoveBucket(ctx context.Context, bucketName string) error {
	return mapError(c.core.RemoveBucket(ctx, bucketName), "failed to delete bucket "+bucketName)
}

// ListObjectsPage issues exactly one ListObjectsV2 request.
func (c *WrappedStoreClient) ListObjectsPage(ctx context.Context, bucketName string, opts ListObjectsOptions) (ListObjectsResult, error) {
	if err := ctx.Err(); err != nil {
		return ListObjectsResult{}, mapError(err, "failed to list objects")
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}

	res, err := c.core.ListObjectsV2(bucketName, opts.Prefix, "", opts.ContinuationToken, opts.Delimiter, maxKeys)
	if err != nil {
		return ListObjectsResult{}, mapError(err, "failed to list objects in "+bucketName)
	}

	result := ListObjectsResult{
		Objects:               res.Contents,
		IsTruncated:           res.IsTruncated,
		NextContinuationToken: res.NextContinuationToken,
	}
	for _, p := range res.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, p.Prefix)
	}
	return result, nil
}

func (c *WrappedStoreClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	info, err := c.core.Client.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
	if err != nil {
		return minio.UploadInfo{}, mapError(err, "failed to upload "+objectName)
	}
	return info, nil
}

func (c *WrappedStoreClient) GetObjectReader(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, int64, error) {
	obj, err := c.core.Client.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, 0, mapError(err, "failed to get "+objectName)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, 0, mapError(err, "failed to get "+objectName)
	}
	return obj, info.Size, nil
}

func (c *WrappedStoreClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	info, err := c.core.Client.StatObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return minio.ObjectInfo{}, mapError(err, "failed to stat "+objectName)
	}
	return info, nil
}

func (c *WrappedStoreClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return mapError(c.core.Client.RemoveObject(ctx, bucketName, objectName, opts), "failed to delete "+objectName)
}

func (c *WrappedStoreClient) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	info, err := c.core.Client.CopyObject(ctx, dst, src)
	if err != nil {
		return minio.UploadInfo{}, mapError(err, "failed to copy "+src.Object+" to "+dst.Object)
	}
	return info, nil
}

func (c *WrappedStoreClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	u, err := c.core.Client.PresignedGetObject(ctx, bucketName, objectName, expires, reqParams)
	if err != nil {
		return nil, mapError(err, "failed to sign share link for "+objectName)
	}
	return u, nil
}

// GetBucketPolicy returns "" when the bucket has no policy.
func (c *WrappedStoreClient) GetBucketPolicy(ctx context.Context, bucketName string) (string, error) {
	policy, err := c.core.Client.GetBucketPolicy(ctx, bucketName)
	if err != nil {
		return "", mapError(err, "failed to read policy of "+bucketName)
	}
	return policy, nil
}

func (c *WrappedStoreClient) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	return mapError(c.core.Client.SetBucketPolicy(ctx, bucketName, policy), "failed to set policy of "+bucketName)
}

// DeleteBucketPolicy removes the policy document; minio-go treats an empty
// policy as a delete request.
func (c *WrappedStoreClient) DeleteBucketPolicy(ctx context.Context, bucketName string) error {
	return mapError(c.core.Client.SetBucketPolicy(ctx, bucketName, ""), "failed to delete policy of "+bucketName)
}

func (c *WrappedStoreClient) PutObjectACL(ctx context.Context, bucketName, objectName string, acl ACL) error {
	_, err := c.acl.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
		ACL:    s3types.ObjectCannedACL(acl),
	})
	return mapError(err, "failed to set ACL of "+objectName)
}

func (c *WrappedStoreClient) PutBucketACL(ctx context.Context, bucketName string, acl ACL) error {
	_, err := c.acl.PutBucketAcl(ctx, &s3.PutBucketAclInput{
		Bucket: aws.String(bucketName),
		ACL:    s3types.BucketCannedACL(acl),
	})
	return mapError(err, "failed to set ACL of "+bucketName)
}

// RealStoreFactory is the production implementation
type RealStoreFactory struct{}

func (f *RealStoreFactory) NewClient(ctx context.Context, conn Connection) (StoreClient, error) {
	ep, err := parseEndpoint(conn.Endpoint)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if conn.PathStyle {
		lookup = minio.BucketLookupPath
	}

	core, err := minio.NewCore(ep.Host, &minio.Options{
		Creds:        credentials.NewStaticV4(conn.AccessKey, conn.SecretKey, ""),
		Secure:       ep.Secure,
		Region:       conn.RegionOrDefault(),
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindConnectionFailed, "failed to create store client", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conn.RegionOrDefault()),
		awsconfig.WithCredentialsProvider(awscredentials.NewStaticCredentialsProvider(conn.AccessKey, conn.SecretKey, "")),
	)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnectionFailed, "failed to create ACL client", err)
	}
	acl := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(ep.URL())
		o.UsePathStyle = conn.PathStyle
	})

	return &WrappedStoreClient{core: core, acl: acl}, nil
}

func (f *RealStoreFactory) NewAdminClient(conn Connection) (AdminClient, error) {
	ep, err := parseEndpoint(conn.Endpoint)
	if err != nil {
		return nil, err
	}
	return madmin.NewWithOptions(ep.Host, &madmin.Options{
		Creds:  credentials.NewStaticV4(conn.AccessKey, conn.SecretKey, ""),
		Secure: ep.Secure,
	})
}
