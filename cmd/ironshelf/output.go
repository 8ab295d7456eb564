package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"

	"github.com/damacus/ironshelf/internal/explorer"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes v as JSON or YAML, or lets table fill a tab-aligned table.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func row(tw *tabwriter.Writer, cols ...any) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderBuckets(w io.Writer, format string, buckets []explorer.Bucket) error {
	return render(w, format, buckets, func(tw *tabwriter.Writer) {
		row(tw, "NAME", "CREATED", "SIZE")
		for _, b := range buckets {
			size := "-"
			if b.HasUsage {
				size = humanize.IBytes(b.Usage)
			}
			row(tw, b.Name, formatTime(b.Created), size)
		}
	})
}

func renderNodes(w io.Writer, format string, listing explorer.Listing) error {
	return render(w, format, listing, func(tw *tabwriter.Writer) {
		row(tw, "NAME", "SIZE", "MODIFIED")
		for _, n := range listing.Nodes {
			if n.IsFolder() {
				row(tw, n.Name+"/", "-", "-")
				continue
			}
			row(tw, n.Name, humanize.IBytes(uint64(max(n.Size, 0))), formatTime(n.Modified))
		}
		if listing.Truncated {
			row(tw, "...", "", "")
		}
	})
}

// renderBulk prints the per-key outcomes and returns the operation's error
// so that a partial failure still exits non-zero.
func renderBulk(w io.Writer, format string, res explorer.BulkResult, err error) error {
	if len(res.Items) > 0 {
		rerr := render(w, format, res, func(tw *tabwriter.Writer) {
			row(tw, "KEY", "STATUS", "ERROR")
			for _, it := range res.Items {
				row(tw, it.Key, it.Status, it.Message)
			}
		})
		if rerr != nil {
			return rerr
		}
	}
	if err == nil && format == outputTable {
		fmt.Fprintf(w, "%d deleted, %d failed\n", res.Succeeded(), res.Failed())
	}
	return err
}

// message prints a one-line confirmation in table mode, or v otherwise.
func message(w io.Writer, format string, v any, text string) error {
	return render(w, format, v, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, text)
	})
}
