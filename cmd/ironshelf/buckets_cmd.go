package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/explorer"
)

type bucketsFlags struct {
	usage  bool
	region string
	public bool
}

func newBucketsCmd(app *appContainer) *cobra.Command {
	cmdFlags := bucketsFlags{}

	bucketsCmd := &cobra.Command{
		Use:   "buckets",
		Short: "Manage buckets",
		Long:  `List, create and delete buckets, and switch them between public-read and private.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		Long:  `Lists every bucket visible to the credentials. With --usage, sizes are added on MinIO servers.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			buckets, err := app.Dispatch.ListBuckets(cmd.Context(), sess, dispatch.ListBuckets{WithUsage: cmdFlags.usage})
			if err != nil {
				return err
			}
			if len(buckets) == 0 && app.output == outputTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No buckets found.")
				return nil
			}
			return renderBuckets(cmd.OutOrStdout(), app.output, buckets)
		},
	}
	listCmd.Flags().BoolVar(&cmdFlags.usage, "usage", false, "show bucket sizes (MinIO only)")

	createCmd := &cobra.Command{
		Use:   "create [bucket-name]",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			req := dispatch.CreateBucket{Bucket: args[0], Region: cmdFlags.region, Public: cmdFlags.public}
			if err := app.Dispatch.CreateBucket(cmd.Context(), sess, req); err != nil {
				return fmt.Errorf("error creating bucket '%s': %w", args[0], err)
			}
			return message(cmd.OutOrStdout(), app.output, req, fmt.Sprintf("Bucket '%s' created.", args[0]))
		},
	}
	createCmd.Flags().StringVar(&cmdFlags.region, "bucket-region", "", "region to create the bucket in (default: the connection's region)")
	createCmd.Flags().BoolVar(&cmdFlags.public, "public", false, "apply the public-read bucket ACL")

	deleteCmd := &cobra.Command{
		Use:   "delete [bucket-name]",
		Short: "Delete a bucket and everything in it",
		Long: `Deletes every object in the bucket, then the bucket. If any object cannot
be deleted the bucket is kept and the failures are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Dispatch.DeleteBucket(cmd.Context(), sess, dispatch.DeleteBucket{Bucket: args[0]})
			return renderBulk(cmd.OutOrStdout(), app.output, res, err)
		},
	}

	publicCmd := &cobra.Command{
		Use:   "public [bucket-name]",
		Short: "Allow anonymous reads of every object in a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setVisibility(cmd, app, args[0], true)
		},
	}

	privateCmd := &cobra.Command{
		Use:   "private [bucket-name]",
		Short: "Remove the bucket policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setVisibility(cmd, app, args[0], false)
		},
	}

	visibilityCmd := &cobra.Command{
		Use:   "visibility [bucket-name]",
		Short: "Show whether a bucket is private, public-read or has a custom policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			vis, err := app.Dispatch.BucketVisibility(cmd.Context(), sess, dispatch.BucketVisibility{Bucket: args[0]})
			if err != nil {
				return err
			}
			return printVisibility(cmd, app, args[0], vis)
		},
	}

	bucketsCmd.AddCommand(listCmd, createCmd, deleteCmd, publicCmd, privateCmd, visibilityCmd)
	return bucketsCmd
}

func setVisibility(cmd *cobra.Command, app *appContainer, bucket string, public bool) error {
	sess, err := app.session(cmd.Context())
	if err != nil {
		return err
	}
	vis, err := app.Dispatch.SetBucketVisibility(cmd.Context(), sess, dispatch.SetBucketVisibility{Bucket: bucket, Public: public})
	if err != nil {
		return err
	}
	return printVisibility(cmd, app, bucket, vis)
}

func printVisibility(cmd *cobra.Command, app *appContainer, bucket string, vis explorer.Visibility) error {
	v := struct {
		Bucket     string              `json:"bucket" yaml:"bucket"`
		Visibility explorer.Visibility `json:"visibility" yaml:"visibility"`
	}{bucket, vis}
	return message(cmd.OutOrStdout(), app.output, v, fmt.Sprintf("%s: %s", bucket, vis))
}
