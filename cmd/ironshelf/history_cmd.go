package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/damacus/ironshelf/internal/dispatch"
	"github.com/damacus/ironshelf/internal/services"
)

func newHistoryCmd(app *appContainer) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved connections",
		Long: `Lists and forgets the connections remembered by the web UI and the CLI.
Use a listed ID with --profile to connect with it.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved connections, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.Dispatch.History(cmd.Context())
			if err != nil {
				return err
			}
			if profiles == nil {
				profiles = []services.Profile{}
			}
			if !app.Dispatch.HistoryEnabled() && app.output == outputTable {
				fmt.Fprintln(cmd.OutOrStdout(), "Connection history is turned off (history.enabled).")
			}
			return render(cmd.OutOrStdout(), app.output, profiles, func(tw *tabwriter.Writer) {
				row(tw, "ID", "ENDPOINT", "ACCESS KEY", "REGION", "SECRET", "LAST USED")
				for _, p := range profiles {
					secret := "no"
					if p.HasSecret() {
						secret = "yes"
					}
					row(tw, p.ID, p.Endpoint, p.AccessKey, p.Region, secret, humanize.Time(p.LastUsed))
				}
			})
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Forget one saved connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Dispatch.ForgetConnection(cmd.Context(), dispatch.ForgetConnection{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connection %s forgotten.\n", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every saved connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Dispatch.ForgetConnection(cmd.Context(), dispatch.ForgetConnection{All: true}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection history cleared.")
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, forgetCmd, clearCmd)
	return historyCmd
}
