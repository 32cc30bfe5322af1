package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/panes/internal/app"
	"github.com/justyntemme/panes/internal/store"
)

func stateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the saved session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved layout, pane paths and window geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			out, err := json.MarshalIndent(app.LoadState(db), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the saved session; profiles are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Delete(store.KeyGeometry, store.KeyLayoutID, store.KeyPanePaths,
				store.KeyPaneProfiles, store.KeyPaneViewModes); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session state cleared")
			return nil
		},
	})
	return cmd
}
