package explorer

import (
	"context"
	"time"

	"github.com/damacus/ironshelf/internal/services"
)

// Bucket is a bucket as shown in lists.
type Bucket struct {
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
	// Usage is only known on MinIO servers.
	Usage    uint64 `json:"usage,omitempty" yaml:"usage,omitempty"`
	HasUsage bool   `json:"-" yaml:"-"`
}

// ListBuckets lists the buckets visible to the session. When admin is not
// nil the result is decorated with usage figures; admin errors are ignored
// because only MinIO answers them.
func (e *Explorer) ListBuckets(ctx context.Context, sess *services.Session, admin services.AdminClient) ([]Bucket, error) {
	infos, err := sess.Client.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	var sizes map[string]uint64
	if admin != nil {
		if usage, err := admin.DataUsageInfo(ctx); err == nil {
			sizes = usage.BucketSizes
		} else {
			e.log.Debug().Err(err).Msg("bucket usage unavailable")
		}
	}

	out := make([]Bucket, 0, len(infos))
	for _, b := range infos {
		item := Bucket{Name: b.Name, Created: b.CreationDate}
		if size, ok := sizes[b.Name]; ok {
			item.Usage = size
			item.HasUsage = true
		}
		out = append(out, item)
	}
	return out, nil
}
