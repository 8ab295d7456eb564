package utils

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    uint64
		expected string
	}{
		{"zero bytes", 0, "0 B"},
		{"small bytes", 500, "500 B"},
		{"one KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"one MiB", 1024 * 1024, "1.0 MiB"},
		{"one GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"one TiB", 1024 * 1024 * 1024 * 1024, "1.0 TiB"},
		{"mixed size", 1536 * 1024 * 1024, "1.5 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, result, tt.expected)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"negative", -100, "0 B"},
		{"small", 500, "500 B"},
		{"one KiB", 1024, "1.0 KiB"},
		{"one MiB", 1024 * 1024, "1.0 MiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatFileSize(tt.size)
			if result != tt.expected {
				t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, result, tt.expected)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	if got := FormatAge(time.Time{}); got != "" {
		t.Errorf("FormatAge(zero) = %q, want empty", got)
	}
	if got := FormatAge(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("FormatAge(-3h) = %q, want %q", got, "3 hours ago")
	}
}

func TestSplitExpiry(t *testing.T) {
	tests := []struct {
		in       time.Duration
		wantN    int
		wantDays bool
	}{
		{7 * 24 * time.Hour, 7, true},
		{24 * time.Hour, 1, true},
		{36 * time.Hour, 36, false},
		{time.Hour, 1, false},
		{90 * time.Minute, 2, false},
		{time.Second, 1, false},
	}

	for _, tt := range tests {
		n, days := SplitExpiry(tt.in)
		if n != tt.wantN || days != tt.wantDays {
			t.Errorf("SplitExpiry(%v) = (%d, %v), want (%d, %v)", tt.in, n, days, tt.wantN, tt.wantDays)
		}
	}
}
