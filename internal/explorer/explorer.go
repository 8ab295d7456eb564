// Package explorer projects the flat key space of a bucket onto folders and
// files, and turns folder and file operations back into flat-key store calls.
package explorer

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/logger"
	"github.com/damacus/ironshelf/internal/services"
)

// Delimiter separates path segments in keys.
const Delimiter = "/"

// MaxShareExpiry is the longest validity a SigV4 presigned URL can carry.
const MaxShareExpiry = 7 * 24 * time.Hour

// NodeKind tells folders from files in a listing.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
)

// Node is one entry of a projected listing. Folders are synthetic: Key is
// the full prefix ending in "/" and Size is zero.
type Node struct {
	Kind        NodeKind  `json:"kind" yaml:"kind"`
	Name        string    `json:"name" yaml:"name"`
	Key         string    `json:"key" yaml:"key"`
	Size        int64     `json:"size" yaml:"size"`
	Modified    time.Time `json:"modified,omitzero" yaml:"modified,omitempty"`
	ContentType string    `json:"contentType,omitempty" yaml:"contentType,omitempty"`
}

func (n Node) IsFolder() bool { return n.Kind == KindFolder }

// Listing is one level of the hierarchy below Prefix.
type Listing struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Nodes  []Node `json:"nodes" yaml:"nodes"`
	// Truncated means the store had more entries than one page holds.
	// Nothing more is fetched.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Filter keeps nodes whose name contains q, case-insensitively.
func (l Listing) Filter(q string) Listing {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return l
	}
	out := l
	out.Nodes = make([]Node, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		if strings.Contains(strings.ToLower(n.Name), q) {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out
}

// Options configures an Explorer.
type Options struct {
	// ShareExpiry is used when a share link is requested without one.
	ShareExpiry time.Duration
	// PageSize is the MaxKeys sent with every listing request.
	PageSize int
	Logger   *logger.Logger
}

// Explorer is stateless apart from its options; the session is passed to
// every call.
type Explorer struct {
	shareExpiry time.Duration
	pageSize    int
	log         *logger.Logger
}

func New(opts Options) *Explorer {
	if opts.ShareExpiry <= 0 || opts.ShareExpiry > MaxShareExpiry {
		opts.ShareExpiry = MaxShareExpiry
	}
	if opts.PageSize <= 0 {
		opts.PageSize = services.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Explorer{
		shareExpiry: opts.ShareExpiry,
		pageSize:    opts.PageSize,
		log:         opts.Logger.With().Str("component", "explorer").Logger(),
	}
}

type localeKey struct{}

// WithLocale sets the language used to order listings.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

func localeFrom(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return tag
	}
	return language.English
}

// NormalizePrefix makes prefix either empty or end with "/". Leading
// slashes are kept: "/a/" and "a/" are different folders.
func NormalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, Delimiter) {
		return prefix
	}
	return prefix + Delimiter
}

// Project lists one level below prefix with a single delimiter-scoped
// request. Folders come first, then files, each ordered by name for the
// context's locale.
func (e *Explorer) Project(ctx context.Context, sess *services.Session, bucket, prefix string) (Listing, error) {
	prefix = NormalizePrefix(prefix)

	res, err := sess.Client.ListObjectsPage(ctx, bucket, services.ListObjectsOptions{
		Prefix:    prefix,
		Delimiter: Delimiter,
		MaxKeys:   e.pageSize,
	})
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Bucket: bucket, Prefix: prefix, Truncated: res.IsTruncated}

	folders := make([]Node, 0, len(res.CommonPrefixes))
	for _, p := range res.CommonPrefixes {
		folders = append(folders, Node{
			Kind: KindFolder,
			Name: folderName(prefix, p),
			Key:  p,
		})
	}

	files := make([]Node, 0, len(res.Objects))
	for _, o := range res.Objects {
		// The folder's own marker object.
		if o.Key == prefix {
			continue
		}
		files = append(files, Node{
			Kind:        KindFile,
			Name:        fileName(o.Key),
			Key:         o.Key,
			Size:        o.Size,
			Modified:    o.LastModified,
			ContentType: o.ContentType,
		})
	}

	sortNodes(ctx, folders)
	sortNodes(ctx, files)
	listing.Nodes = append(folders, files...)

	e.log.Debug().Str("bucket", bucket).Str("prefix", prefix).
		Int("folders", len(folders)).Int("files", len(files)).Bool("truncated", res.IsTruncated).
		Msg("projected listing")
	return listing, nil
}

// folderName strips the parent prefix and the trailing delimiter:
// "a/b/c/" under "a/b/" is "c".
func folderName(parent, commonPrefix string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(commonPrefix, parent), Delimiter)
	if name == "" {
		// "//" style prefixes have an empty segment.
		return Delimiter
	}
	return name
}

// fileName is the last path segment of key.
func fileName(key string) string {
	if i := strings.LastIndex(key, Delimiter); i >= 0 {
		return key[i+1:]
	}
	return key
}

func sortNodes(ctx context.Context, nodes []Node) {
	// Collators are not safe for concurrent use; one per call.
	col := collate.New(localeFrom(ctx))
	sort.SliceStable(nodes, func(i, j int) bool {
		if c := col.CompareString(nodes[i].Name, nodes[j].Name); c != 0 {
			return c < 0
		}
		return nodes[i].Key < nodes[j].Key
	})
}

// Crumb is one step of the navigation path.
type Crumb struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// Breadcrumbs splits prefix into its ancestors, root excluded:
// "a/b/" gives [{a a/} {b a/b/}]. An empty segment is named "/".
func Breadcrumbs(prefix string) []Crumb {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		return nil
	}
	var (
		crumbs []Crumb
		acc    string
	)
	for _, seg := range strings.Split(strings.TrimSuffix(prefix, Delimiter), Delimiter) {
		acc += seg + Delimiter
		name := seg
		if name == "" {
			name = Delimiter
		}
		crumbs = append(crumbs, Crumb{Name: name, Prefix: acc})
	}
	return crumbs
}

// Parent returns the prefix one level up: "a/b/" gives "a/" and "/a/"
// gives "/".
func Parent(prefix string) string {
	prefix = strings.TrimSuffix(NormalizePrefix(prefix), Delimiter)
	if i := strings.LastIndex(prefix, Delimiter); i >= 0 {
		return prefix[:i+1]
	}
	return ""
}

// validSegment rejects names that would change the hierarchy.
func validSegment(kind, name string) error {
	switch {
	case name == "":
		return errs.Newf(errs.KindInvalidInput, "%s name is required", kind)
	case strings.Contains(name, Delimiter):
		return errs.Newf(errs.KindInvalidInput, "%s name must not contain %q", kind, Delimiter)
	case name == "." || name == "..":
		return errs.Newf(errs.KindInvalidInput, "%s name %q is reserved", kind, name)
	}
	return nil
}
