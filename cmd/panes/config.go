package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/panes/internal/config"
)

func configCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage config.json",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Write a fresh default config, backing up the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			backup, err := config.GenerateConfig(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if backup != "" {
				fmt.Fprintf(out, "Backed up existing config to %s\n", backup)
			}
			fmt.Fprintf(out, "Wrote default config to %s\n", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path := opts.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	})
	return cmd
}
