package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/models"
	"github.com/damacus/ironshelf/internal/utils"
)

type BrowserHandler struct {
	d        *dispatch.Dispatcher
	pageSize int
}

// NewBrowserHandler creates the object browser. pageSize is only used to
// tell the user how many entries a truncated listing holds.
func NewBrowserHandler(d *dispatch.Dispatcher, pageSize int) *BrowserHandler {
	return &BrowserHandler{d: d, pageSize: pageSize}
}

// BrowseBucket renders one level of the bucket
func (h *BrowserHandler) BrowseBucket(c echo.Context) error {
	ctx := c.Request().Context()
	sess := GetSession(c)
	bucket := c.Param("bucketName")

	res, err := h.d.Browse(ctx, sess, dispatch.Browse{
		Bucket: bucket,
		Prefix: c.QueryParam("prefix"),
		Query:  c.QueryParam("q"),
	})
	if err != nil {
		return err
	}

	// The badge is decoration; a store without policy support still browses.
	vis, err := h.d.BucketVisibility(ctx, sess, dispatch.BucketVisibility{Bucket: bucket})
	if err != nil {
		vis = explorer.VisibilityPrivate
	}

	rows := make([]models.ObjectRow, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		row := models.ObjectRow{Node: n}
		if !n.IsFolder() {
			row.FormattedSize = utils.FormatFileSize(n.Size)
		}
		rows = append(rows, row)
	}

	return c.Render(http.StatusOK, "browser", page(c, "buckets", models.BrowserView{
		Bucket:      bucket,
		Prefix:      res.Prefix,
		Parent:      res.Parent,
		Query:       res.Query,
		Breadcrumbs: res.Breadcrumbs,
		Rows:        rows,
		Truncated:   res.Truncated,
		PageSize:    h.pageSize,
		Visibility:  vis,
	}))
}

// UploadObject stores every submitted file under the current prefix
func (h *BrowserHandler) UploadObject(c echo.Context) error {
	bucket := c.Param("bucketName")
	prefix := explorer.NormalizePrefix(c.QueryParam("prefix"))

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}

	for _, fh := range files {
		if err := h.uploadOne(c, bucket, prefix, fh); err != nil {
			return err
		}
	}

	// Redirect back to the current folder
	return HTMXRedirect(c, browseURL(bucket, prefix))
}

func (h *BrowserHandler) uploadOne(c echo.Context, bucket, prefix string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return errs.Wrap(errs.KindLocalIO, "failed to read upload "+fh.Filename, err)
	}
	defer func() { _ = src.Close() }()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		if mt, err := mimetype.DetectReader(src); err == nil {
			contentType = mt.String()
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return errs.Wrap(errs.KindLocalIO, "failed to read upload "+fh.Filename, err)
		}
	}

	_, err = h.d.Upload(c.Request().Context(), GetSession(c), dispatch.Upload{
		Bucket:      bucket,
		Key:         prefix + fh.Filename,
		Body:        src,
		Size:        fh.Size,
		ContentType: contentType,
	})
	return err
}

// DownloadObject streams an object to the browser as an attachment
func (h *BrowserHandler) DownloadObject(c echo.Context) error {
	bucket := c.Param("bucketName")
	key := c.QueryParam("key")

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName(key)))
	resp.Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)

	_, err := h.d.Download(c.Request().Context(), GetSession(c), dispatch.Download{Bucket: bucket, Key: key, Writer: resp})
	if err != nil && !resp.Committed {
		resp.Header().Del(echo.HeaderContentDisposition)
		resp.Header().Del(echo.HeaderContentType)
	}
	return err
}

func fileName(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}

// DeleteObjects deletes the checked files and folders
func (h *BrowserHandler) DeleteObjects(c echo.Context) error {
	bucket := c.Param("bucketName")
	if err := c.Request().ParseForm(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	keys := c.Request().PostForm["keys"]

	res, err := h.d.DeleteObjects(c.Request().Context(), GetSession(c), dispatch.DeleteObjects{Bucket: bucket, Keys: keys})
	return renderBulk(c, bucket, res, err, browseURL(bucket, c.QueryParam("prefix")))
}

// CreateFolderModal shows the folder creation modal
func (h *BrowserHandler) CreateFolderModal(c echo.Context) error {
	return c.Render(http.StatusOK, "folder_create_modal", partial(c, models.FolderModal{
		Bucket: c.Param("bucketName"),
		Prefix: c.QueryParam("prefix"),
	}))
}

// CreateFolder writes the folder marker and opens the new folder
func (h *BrowserHandler) CreateFolder(c echo.Context) error {
	req := dispatch.CreateFolder{
		Bucket: c.Param("bucketName"),
		Prefix: c.QueryParam("prefix"),
		Name:   c.FormValue("name"),
	}

	key, err := h.d.CreateFolder(c.Request().Context(), GetSession(c), req)
	if err != nil {
		return c.Render(StatusFor(err), "folder_create_modal", partial(c, models.FolderModal{
			Bucket: req.Bucket,
			Prefix: req.Prefix,
			Error:  errorMessage(err),
		}))
	}
	return HTMXRedirect(c, browseURL(req.Bucket, key))
}

// DeleteFolder deletes a folder and everything under it
func (h *BrowserHandler) DeleteFolder(c echo.Context) error {
	bucket := c.Param("bucketName")
	prefix := c.FormValue("prefix")

	res, err := h.d.DeleteFolder(c.Request().Context(), GetSession(c), dispatch.DeleteFolder{Bucket: bucket, Prefix: prefix})
	return renderBulk(c, prefix, res, err, browseURL(bucket, explorer.Parent(prefix)))
}

// GenerateShareLink creates a presigned URL for sharing an object
func (h *BrowserHandler) GenerateShareLink(c echo.Context) error {
	req := dispatch.Share{
		Bucket: c.Param("bucketName"),
		Key:    c.FormValue("key"),
	}
	// expires is in seconds; empty means the configured default
	if s := c.FormValue("expires"); s != "" {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil || secs <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "expires must be a positive number of seconds")
		}
		req.Expiry = time.Duration(secs) * time.Second
	}

	link, err := h.d.Share(c.Request().Context(), GetSession(c), req)
	if err != nil {
		return err
	}

	n, days := utils.SplitExpiry(link.Expiry)
	return c.Render(http.StatusOK, "share_link", partial(c, models.ShareView{ShareLink: link, ExpiryN: n, ExpiryDays: days}))
}

// SetObjectVisibility applies the public-read or private canned ACL
func (h *BrowserHandler) SetObjectVisibility(c echo.Context) error {
	public, err := strconv.ParseBool(c.FormValue("public"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "public must be true or false")
	}
	req := dispatch.SetObjectVisibility{Bucket: c.Param("bucketName"), Key: c.FormValue("key"), Public: public}

	if err := h.d.SetObjectVisibility(c.Request().Context(), GetSession(c), req); err != nil {
		return err
	}

	l := localizer(c)
	label := l.Get("visibility.private")
	if public {
		label = l.Get("visibility.public-read")
	}
	return flash(c, http.StatusOK, fileName(req.Key)+": "+label, false)
}

// RenameObject renames a file within its folder. htmx sends the new name in
// the HX-Prompt header.
func (h *BrowserHandler) RenameObject(c echo.Context) error {
	newName := c.FormValue("newName")
	if newName == "" {
		newName = c.Request().Header.Get("HX-Prompt")
	}
	req := dispatch.Rename{Bucket: c.Param("bucketName"), Key: c.FormValue("key"), NewName: newName}

	if _, err := h.d.Rename(c.Request().Context(), GetSession(c), req); err != nil {
		return err
	}
	return HTMXRedirect(c, browseURL(req.Bucket, explorer.Parent(req.Key)))
}
