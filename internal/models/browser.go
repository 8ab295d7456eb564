// Package models contains the view data handed to templates
package models

import (
	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/services"
)

// Page is the root value of every full page render.
type Page struct {
	ActiveNav string
	I18n      *i18n.Localizer
	Theme     string
	CSRF      string
	// Endpoint is shown in the header while connected.
	Endpoint string
	Error    string
	Data     any
}

// Partial wraps the value of a fragment render with what every fragment needs.
type Partial struct {
	I18n *i18n.Localizer
	CSRF string
	Data any
}

// ConnectView is the connect page.
type ConnectView struct {
	Profiles        []services.Profile
	HistoryEnabled  bool
	RememberSecrets bool
	// Form echoes back what was submitted after a failed attempt.
	Form dispatch.Connect
}

// BucketRow is one line of the bucket list.
type BucketRow struct {
	explorer.Bucket
	FormattedSize string
}

type BucketsView struct {
	Buckets []BucketRow
}

// ObjectRow is one line of the browser.
type ObjectRow struct {
	explorer.Node
	FormattedSize string
}

type BrowserView struct {
	Bucket      string
	Prefix      string
	Parent      string
	Query       string
	Breadcrumbs []explorer.Crumb
	Rows        []ObjectRow
	Truncated   bool
	PageSize    int
	Visibility  explorer.Visibility
}

// ShareView is the share link fragment.
type ShareView struct {
	explorer.ShareLink
	ExpiryN    int
	ExpiryDays bool
}

// BulkView is the per-item result list of a bulk delete.
type BulkView struct {
	Title  string
	Result explorer.BulkResult
	// Back is where the close button leads.
	Back string
}

// FolderModal is the new folder dialog.
type FolderModal struct {
	Bucket string
	Prefix string
	Error  string
}

// BucketModal is the new bucket dialog.
type BucketModal struct {
	Name   string
	Region string
	Public bool
	Error  string
}

// VisibilityBadge is the bucket access toggle fragment.
type VisibilityBadge struct {
	Bucket     string
	Visibility explorer.Visibility
}

// Flash is a one-line message swapped into the page banner.
type Flash struct {
	Message string
	Error   bool
}
