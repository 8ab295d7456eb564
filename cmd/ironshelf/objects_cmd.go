package main

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/explorer"
)

type objectFlags struct {
	filter  string
	expires time.Duration
}

// newObjectCmds returns the top-level commands that work inside a bucket.
func newObjectCmds(app *appContainer) []*cobra.Command {
	cmdFlags := objectFlags{}

	lsCmd := &cobra.Command{
		Use:   "ls [bucket] [prefix]",
		Short: "List one folder level of a bucket",
		Long: `Lists the folders and files directly below prefix. Folders come first.
Use --filter to keep only names containing a string.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			req := dispatch.Browse{Bucket: args[0], Query: cmdFlags.filter}
			if len(args) == 2 {
				req.Prefix = args[1]
			}
			res, err := app.Dispatch.Browse(cmd.Context(), sess, req)
			if err != nil {
				return err
			}
			return renderNodes(cmd.OutOrStdout(), app.output, res.Listing)
		},
	}
	lsCmd.Flags().StringVar(&cmdFlags.filter, "filter", "", "only show names containing this text (case-insensitive)")

	mkdirCmd := &cobra.Command{
		Use:   "mkdir [bucket] [path]",
		Short: "Create a folder",
		Long:  `Creates the folder marker for path, e.g. 'ironshelf mkdir photos 2026/cats'.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			parent, name := path.Split(strings.TrimSuffix(args[1], explorer.Delimiter))
			key, err := app.Dispatch.CreateFolder(cmd.Context(), sess, dispatch.CreateFolder{Bucket: args[0], Prefix: parent, Name: name})
			if err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, map[string]string{"bucket": args[0], "key": key},
				fmt.Sprintf("Folder '%s' created.", key))
		},
	}

	rmdirCmd := &cobra.Command{
		Use:   "rmdir [bucket] [prefix]",
		Short: "Delete a folder and everything below it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Dispatch.DeleteFolder(cmd.Context(), sess, dispatch.DeleteFolder{Bucket: args[0], Prefix: args[1]})
			return renderBulk(cmd.OutOrStdout(), app.output, res, err)
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm [bucket] [key...]",
		Short: "Delete files and folders",
		Long:  `Deletes each key. A key ending in '/' deletes that folder with everything below it.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Dispatch.DeleteObjects(cmd.Context(), sess, dispatch.DeleteObjects{Bucket: args[0], Keys: args[1:]})
			return renderBulk(cmd.OutOrStdout(), app.output, res, err)
		},
	}

	putCmd := &cobra.Command{
		Use:   "put [file] [bucket] [prefix]",
		Short: "Upload a local file",
		Long:  `Uploads file into prefix under its base name. The content type is detected from the file.`,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			req := dispatch.UploadFile{Path: args[0], Bucket: args[1]}
			if len(args) == 3 {
				req.Prefix = args[2]
			}
			node, err := app.Dispatch.UploadFile(cmd.Context(), sess, req)
			if err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, node,
				fmt.Sprintf("Uploaded %s (%s, %s).", node.Key, humanize.IBytes(uint64(max(node.Size, 0))), node.ContentType))
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [bucket] [key] [destination]",
		Short: "Download a file",
		Long:  `Downloads key to destination. A directory destination, or none, keeps the object's name.`,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			req := dispatch.DownloadFile{Bucket: args[0], Key: args[1], Path: "."}
			if len(args) == 3 {
				req.Path = args[2]
			}
			res, err := app.Dispatch.DownloadFile(cmd.Context(), sess, req)
			if err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, res,
				fmt.Sprintf("Downloaded %s to %s (%s).", args[1], res.Path, humanize.IBytes(uint64(max(res.Bytes, 0)))))
		},
	}

	shareCmd := &cobra.Command{
		Use:   "share [bucket] [key]",
		Short: "Print a presigned download URL",
		Long:  `Signs a GET URL for key. Links are valid for at most 7 days and cannot be revoked.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			link, err := app.Dispatch.Share(cmd.Context(), sess, dispatch.Share{Bucket: args[0], Key: args[1], Expiry: cmdFlags.expires})
			if err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, link,
				fmt.Sprintf("%s\nExpires %s (%s).", link.URL, formatTime(link.ExpiresAt), humanize.Time(link.ExpiresAt)))
		},
	}
	shareCmd.Flags().DurationVar(&cmdFlags.expires, "expires", 0, "link validity, e.g. 1h or 72h (default share.defaultExpiry)")

	aclCmd := &cobra.Command{
		Use:       "acl [bucket] [key] [public|private]",
		Short:     "Set the canned ACL of a file",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"public", "private"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var public bool
			switch args[2] {
			case "public":
				public = true
			case "private":
			default:
				return fmt.Errorf("unknown ACL %q (public, private)", args[2])
			}
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			req := dispatch.SetObjectVisibility{Bucket: args[0], Key: args[1], Public: public}
			if err := app.Dispatch.SetObjectVisibility(cmd.Context(), sess, req); err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, req, fmt.Sprintf("%s: %s", args[1], args[2]))
		},
	}

	mvCmd := &cobra.Command{
		Use:   "mv [bucket] [key] [new-name]",
		Short: "Rename a file within its folder",
		Long:  `Copies key to new-name in the same folder, then deletes key. Folders cannot be renamed.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			to, err := app.Dispatch.Rename(cmd.Context(), sess, dispatch.Rename{Bucket: args[0], Key: args[1], NewName: args[2]})
			if err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), app.output, map[string]string{"bucket": args[0], "from": args[1], "to": to},
				fmt.Sprintf("Renamed %s to %s.", args[1], to))
		},
	}

	return []*cobra.Command{lsCmd, mkdirCmd, rmdirCmd, rmCmd, putCmd, getCmd, shareCmd, aclCmd, mvCmd}
}
