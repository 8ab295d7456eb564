package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/models"
	"github.com/damacus/ironshelf/internal/utils"
)

type BucketsHandler struct {
	d *dispatch.Dispatcher
}

func NewBucketsHandler(d *dispatch.Dispatcher) *BucketsHandler {
	return &BucketsHandler{d: d}
}

// ListBuckets renders the buckets page
func (h *BucketsHandler) ListBuckets(c echo.Context) error {
	buckets, err := h.d.ListBuckets(c.Request().Context(), GetSession(c), dispatch.ListBuckets{WithUsage: true})
	if err != nil {
		return err
	}

	rows := make([]models.BucketRow, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, models.BucketRow{Bucket: b, FormattedSize: utils.FormatBytes(b.Usage)})
	}
	return c.Render(http.StatusOK, "buckets", page(c, "buckets", models.BucketsView{Buckets: rows}))
}

// CreateBucketModal renders the bucket creation modal
func (h *BucketsHandler) CreateBucketModal(c echo.Context) error {
	return c.Render(http.StatusOK, "bucket_create_modal", partial(c, models.BucketModal{}))
}

// CreateBucket handles the creation of a new bucket
func (h *BucketsHandler) CreateBucket(c echo.Context) error {
	public, _ := strconv.ParseBool(c.FormValue("public"))
	req := dispatch.CreateBucket{
		Bucket: c.FormValue("bucket"),
		Region: c.FormValue("region"),
		Public: public,
	}

	if err := h.d.CreateBucket(c.Request().Context(), GetSession(c), req); err != nil {
		return c.Render(StatusFor(err), "bucket_create_modal", partial(c, models.BucketModal{
			Name:   req.Bucket,
			Region: req.Region,
			Public: req.Public,
			Error:  errorMessage(err),
		}))
	}

	// Success - close modal and refresh page
	return HTMXRedirect(c, "/buckets")
}

// DeleteBucket empties and removes a bucket, then shows what happened to
// each object
func (h *BucketsHandler) DeleteBucket(c echo.Context) error {
	bucket := c.FormValue("bucket")
	res, err := h.d.DeleteBucket(c.Request().Context(), GetSession(c), dispatch.DeleteBucket{Bucket: bucket})
	return renderBulk(c, bucket, res, err, "/buckets")
}

// BucketVisibility renders the access badge of a bucket
func (h *BucketsHandler) BucketVisibility(c echo.Context) error {
	bucket := c.Param("bucketName")
	vis, err := h.d.BucketVisibility(c.Request().Context(), GetSession(c), dispatch.BucketVisibility{Bucket: bucket})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "visibility_badge", partial(c, models.VisibilityBadge{Bucket: bucket, Visibility: vis}))
}

// SetBucketVisibility makes a bucket public-read or private
func (h *BucketsHandler) SetBucketVisibility(c echo.Context) error {
	bucket := c.Param("bucketName")
	public, err := strconv.ParseBool(c.FormValue("public"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "public must be true or false")
	}

	vis, err := h.d.SetBucketVisibility(c.Request().Context(), GetSession(c), dispatch.SetBucketVisibility{Bucket: bucket, Public: public})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "visibility_badge", partial(c, models.VisibilityBadge{Bucket: bucket, Visibility: vis}))
}

// renderBulk shows per-item outcomes. A partial failure is still a result;
// anything else goes to the error handler.
func renderBulk(c echo.Context, title string, res explorer.BulkResult, err error, back string) error {
	if err != nil && !errs.IsPartialFailure(err) {
		return err
	}
	return c.Render(StatusFor(err), "bulk_result", partial(c, models.BulkView{Title: title, Result: res, Back: back}))
}
