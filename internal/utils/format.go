// Package utils provides shared utility functions
package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes converts bytes to human-readable IEC units (e.g., "1.5 GiB")
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatFileSize converts file size (int64) to human-readable format
func FormatFileSize(size int64) string {
	if size < 0 {
		return "0 B"
	}
	return FormatBytes(uint64(size))
}

// FormatAge renders t relative to now ("3 hours ago"). The zero time is "".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// SplitExpiry breaks d into whole days or whole hours for display, whichever
// fits exactly; anything shorter rounds up to one hour.
func SplitExpiry(d time.Duration) (n int, days bool) {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		return int(d / day), true
	}
	h := int((d + time.Hour - 1) / time.Hour)
	if h < 1 {
		h = 1
	}
	return h, false
}
