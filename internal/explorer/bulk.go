package explorer

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

// Status is the outcome of one item in a bulk operation.
type Status string

const (
	StatusDeleted Status = "deleted"
	StatusFailed  Status = "failed"
	// StatusSkipped marks a folder marker left in place because something
	// inside the folder could not be deleted.
	StatusSkipped Status = "skipped"
)

// Outcome is the result for one key of a bulk operation.
type Outcome struct {
	Key    string `json:"key" yaml:"key"`
	Status Status `json:"status" yaml:"status"`
	Err    error  `json:"-" yaml:"-"`
	// Message duplicates Err for serialisation.
	Message string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BulkResult lists one Outcome per key, in the order the keys were handled.
type BulkResult struct {
	Items []Outcome `json:"items" yaml:"items"`
}

func (r *BulkResult) add(key string, err error) {
	o := Outcome{Key: key, Status: StatusDeleted}
	if err != nil {
		o.Status = StatusFailed
		o.Err = err
		o.Message = err.Error()
	}
	r.Items = append(r.Items, o)
}

func (r *BulkResult) skip(key string) {
	r.Items = append(r.Items, Outcome{Key: key, Status: StatusSkipped})
}

func (r *BulkResult) count(s Status) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

func (r BulkResult) Succeeded() int { return r.count(StatusDeleted) }
func (r BulkResult) Failed() int    { return r.count(StatusFailed) }
func (r BulkResult) Skipped() int   { return r.count(StatusSkipped) }

// FirstError returns the error of the first failed item.
func (r BulkResult) FirstError() error {
	for _, it := range r.Items {
		if it.Status == StatusFailed {
			return it.Err
		}
	}
	return nil
}

// Err is nil when nothing failed, otherwise a PartialFailure wrapping the
// first item error.
func (r BulkResult) Err() error {
	first := r.FirstError()
	if first == nil {
		return nil
	}
	return errs.Wrap(errs.KindPartialFailure,
		fmt.Sprintf("%d of %d deletions failed", r.Failed(), r.Failed()+r.Succeeded()), first)
}

func (r *BulkResult) merge(other BulkResult) {
	r.Items = append(r.Items, other.Items...)
}

// listAll walks every page below prefix without a delimiter.
func (e *Explorer) listAll(ctx context.Context, sess *services.Session, bucket, prefix string) ([]string, error) {
	var (
		keys  []string
		token string
	)
	for {
		res, err := sess.Client.ListObjectsPage(ctx, bucket, services.ListObjectsOptions{
			Prefix:            prefix,
			MaxKeys:           e.pageSize,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, o := range res.Objects {
			keys = append(keys, o.Key)
		}
		if !res.IsTruncated {
			return keys, nil
		}
		if res.NextContinuationToken == "" {
			return nil, errs.New(errs.KindConnectionFailed, "store reported a truncated listing without a continuation token")
		}
		token = res.NextContinuationToken
	}
}

// removeEach deletes keys one at a time and keeps going after failures.
func (e *Explorer) removeEach(ctx context.Context, sess *services.Session, bucket string, keys []string) BulkResult {
	var res BulkResult
	for _, k := range keys {
		err := sess.Client.RemoveObject(ctx, bucket, k, minio.RemoveObjectOptions{})
		if err != nil {
			e.log.Warn().Err(err).Str("bucket", bucket).Str("key", k).Msg("delete failed")
		}
		res.add(k, err)
	}
	return res
}
