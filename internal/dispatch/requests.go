package dispatch

import (
	"io"
	"time"

	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/services"
)

// Connect opens a session. With ProfileID set, missing fields are taken
// from the saved profile.
type Connect struct {
	ProfileID string `json:"profileId"`
	Endpoint  string `json:"endpoint" validate:"required_without=ProfileID"`
	AccessKey string `json:"accessKey" validate:"required_without=ProfileID"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region" validate:"omitempty,max=64"`
	PathStyle bool   `json:"pathStyle"`
}

type ListBuckets struct {
	// WithUsage asks a MinIO server for bucket sizes.
	WithUsage bool `json:"withUsage"`
}

type CreateBucket struct {
	Bucket string `json:"bucket" validate:"required,bucketname"`
	Region string `json:"region" validate:"omitempty,max=64"`
	Public bool   `json:"public"`
}

type DeleteBucket struct {
	Bucket string `json:"bucket" validate:"required"`
}

type Browse struct {
	Bucket string `json:"bucket" validate:"required"`
	Prefix string `json:"prefix"`
	// Query filters the listing by name.
	Query string `json:"q"`
}

// BrowseResult is a listing plus what the navigation needs.
type BrowseResult struct {
	explorer.Listing
	Breadcrumbs []explorer.Crumb `json:"breadcrumbs"`
	Parent      string           `json:"parent"`
	Query       string           `json:"q,omitempty"`
}

type CreateFolder struct {
	Bucket string `json:"bucket" validate:"required"`
	Prefix string `json:"prefix"`
	Name   string `json:"name" validate:"foldername"`
}

type DeleteFolder struct {
	Bucket string `json:"bucket" validate:"required"`
	Prefix string `json:"prefix" validate:"required"`
}

type Upload struct {
	Bucket      string    `json:"bucket" validate:"required"`
	Key         string    `json:"key" validate:"objectkey"`
	Body        io.Reader `json:"-" validate:"required"`
	Size        int64     `json:"size" validate:"gte=-1"`
	ContentType string    `json:"contentType"`
}

type UploadFile struct {
	Bucket string `json:"bucket" validate:"required"`
	Prefix string `json:"prefix"`
	Path   string `json:"path" validate:"required"`
}

type Download struct {
	Bucket string    `json:"bucket" validate:"required"`
	Key    string    `json:"key" validate:"objectkey"`
	Writer io.Writer `json:"-" validate:"required"`
}

type DownloadFile struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"objectkey"`
	Path   string `json:"path" validate:"required"`
}

// DownloadResult reports where a file went.
type DownloadResult struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

type DeleteObjects struct {
	Bucket string   `json:"bucket" validate:"required"`
	Keys   []string `json:"keys" validate:"required,min=1,dive,objectkey"`
}

type SetBucketVisibility struct {
	Bucket string `json:"bucket" validate:"required"`
	Public bool   `json:"public"`
}

type BucketVisibility struct {
	Bucket string `json:"bucket" validate:"required"`
}

type SetObjectVisibility struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"objectkey"`
	Public bool   `json:"public"`
}

type Share struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"objectkey"`
	// Expiry of zero means the configured default.
	Expiry time.Duration `json:"expiry" validate:"gte=0"`
}

// Rename gives the file at Key a new name in the same folder.
type Rename struct {
	Bucket  string `json:"bucket" validate:"required"`
	Key     string `json:"key" validate:"objectkey"`
	NewName string `json:"newName" validate:"foldername"`
}

type ForgetConnection struct {
	ID  string `json:"id" validate:"required_without=All"`
	All bool   `json:"all"`
}

type SetPreference struct {
	Key   string `json:"key" validate:"required,oneof=theme language"`
	Value string `json:"value" validate:"required"`
}

// ConnectResult is returned by Connect.
type ConnectResult struct {
	Session *services.Session
	Profile *services.Profile
}
