package dispatch

import (
	"context"

	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/services"
)

func (d *Dispatcher) ListBuckets(ctx context.Context, sess *services.Session, req ListBuckets) ([]explorer.Bucket, error) {
	var out []explorer.Bucket
	err := d.session(ctx, sess, "list_buckets", req, func(ctx context.Context) error {
		var admin services.AdminClient
		if req.WithUsage {
			if a, err := d.sessions.AdminClient(sess); err == nil {
				admin = a
			}
		}
		var err error
		out, err = d.explorer.ListBuckets(ctx, sess, admin)
		return err
	})
	return out, err
}

func (d *Dispatcher) CreateBucket(ctx context.Context, sess *services.Session, req CreateBucket) error {
	return d.session(ctx, sess, "create_bucket", req, func(ctx context.Context) error {
		return d.explorer.CreateBucket(ctx, sess, req.Bucket, req.Region, req.Public)
	})
}

// DeleteBucket empties and removes the bucket. The result is returned
// even when the error is a PartialFailure.
func (d *Dispatcher) DeleteBucket(ctx context.Context, sess *services.Session, req DeleteBucket) (explorer.BulkResult, error) {
	var res explorer.BulkResult
	err := d.session(ctx, sess, "delete_bucket", req, func(ctx context.Context) error {
		var err error
		res, err = d.explorer.DeleteBucket(ctx, sess, req.Bucket)
		return err
	})
	return res, err
}

func (d *Dispatcher) Browse(ctx context.Context, sess *services.Session, req Browse) (BrowseResult, error) {
	var res BrowseResult
	err := d.session(ctx, sess, "browse", req, func(ctx context.Context) error {
		listing, err := d.explorer.Project(ctx, sess, req.Bucket, req.Prefix)
		if err != nil {
			return err
		}
		res = BrowseResult{
			Listing:     listing.Filter(req.Query),
			Breadcrumbs: explorer.Breadcrumbs(listing.Prefix),
			Parent:      explorer.Parent(listing.Prefix),
			Query:       req.Query,
		}
		return nil
	})
	return res, err
}

func (d *Dispatcher) CreateFolder(ctx context.Context, sess *services.Session, req CreateFolder) (string, error) {
	var key string
	err := d.session(ctx, sess, "create_folder", req, func(ctx context.Context) error {
		var err error
		key, err = d.explorer.CreateFolder(ctx, sess, req.Bucket, req.Prefix, req.Name)
		return err
	})
	return key, err
}

func (d *Dispatcher) DeleteFolder(ctx context.Context, sess *services.Session, req DeleteFolder) (explorer.BulkResult, error) {
	var res explorer.BulkResult
	err := d.session(ctx, sess, "delete_folder", req, func(ctx context.Context) error {
		var err error
		res, err = d.explorer.DeleteFolder(ctx, sess, req.Bucket, req.Prefix)
		return err
	})
	return res, err
}

func (d *Dispatcher) DeleteObjects(ctx context.Context, sess *services.Session, req DeleteObjects) (explorer.BulkResult, error) {
	var res explorer.BulkResult
	err := d.session(ctx, sess, "delete_objects", req, func(ctx context.Context) error {
		var err error
		res, err = d.explorer.DeleteObjects(ctx, sess, req.Bucket, req.Keys)
		return err
	})
	return res, err
}

func (d *Dispatcher) Upload(ctx context.Context, sess *services.Session, req Upload) (explorer.Node, error) {
	var node explorer.Node
	err := d.session(ctx, sess, "upload", req, func(ctx context.Context) error {
		var err error
		node, err = d.explorer.Upload(ctx, sess, req.Bucket, req.Key, req.Body, req.Size, req.ContentType)
		return err
	})
	return node, err
}

func (d *Dispatcher) UploadFile(ctx context.Context, sess *services.Session, req UploadFile) (explorer.Node, error) {
	var node explorer.Node
	err := d.session(ctx, sess, "upload_file", req, func(ctx context.Context) error {
		var err error
		node, err = d.explorer.UploadFile(ctx, sess, req.Bucket, req.Prefix, req.Path)
		return err
	})
	return node, err
}

func (d *Dispatcher) Download(ctx context.Context, sess *services.Session, req Download) (int64, error) {
	var n int64
	err := d.session(ctx, sess, "download", req, func(ctx context.Context) error {
		var err error
		n, err = d.explorer.Download(ctx, sess, req.Bucket, req.Key, req.Writer)
		return err
	})
	return n, err
}

func (d *Dispatcher) DownloadFile(ctx context.Context, sess *services.Session, req DownloadFile) (DownloadResult, error) {
	var res DownloadResult
	err := d.session(ctx, sess, "download_file", req, func(ctx context.Context) error {
		path, n, err := d.explorer.DownloadFile(ctx, sess, req.Bucket, req.Key, req.Path)
		res = DownloadResult{Path: path, Bytes: n}
		return err
	})
	return res, err
}

func (d *Dispatcher) SetBucketVisibility(ctx context.Context, sess *services.Session, req SetBucketVisibility) (explorer.Visibility, error) {
	var vis explorer.Visibility
	err := d.session(ctx, sess, "set_bucket_visibility", req, func(ctx context.Context) error {
		if err := d.explorer.SetBucketPublic(ctx, sess, req.Bucket, req.Public); err != nil {
			return err
		}
		vis = explorer.VisibilityPrivate
		if req.Public {
			vis = explorer.VisibilityPublicRead
		}
		return nil
	})
	return vis, err
}

func (d *Dispatcher) BucketVisibility(ctx context.Context, sess *services.Session, req BucketVisibility) (explorer.Visibility, error) {
	var vis explorer.Visibility
	err := d.session(ctx, sess, "bucket_visibility", req, func(ctx context.Context) error {
		var err error
		vis, err = d.explorer.BucketVisibility(ctx, sess, req.Bucket)
		return err
	})
	return vis, err
}

func (d *Dispatcher) SetObjectVisibility(ctx context.Context, sess *services.Session, req SetObjectVisibility) error {
	return d.session(ctx, sess, "set_object_visibility", req, func(ctx context.Context) error {
		return d.explorer.SetObjectPublic(ctx, sess, req.Bucket, req.Key, req.Public)
	})
}

func (d *Dispatcher) Share(ctx context.Context, sess *services.Session, req Share) (explorer.ShareLink, error) {
	var link explorer.ShareLink
	err := d.session(ctx, sess, "share", req, func(ctx context.Context) error {
		var err error
		link, err = d.explorer.Share(ctx, sess, req.Bucket, req.Key, req.Expiry)
		return err
	})
	return link, err
}

// Rename returns the new key.
func (d *Dispatcher) Rename(ctx context.Context, sess *services.Session, req Rename) (string, error) {
	var key string
	err := d.session(ctx, sess, "rename", req, func(ctx context.Context) error {
		var err error
		key, err = d.explorer.RenameInPlace(ctx, sess, req.Bucket, req.Key, req.NewName)
		return err
	})
	return key, err
}
