package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justyntemme/panes/internal/profile"
)

func profilesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage field profiles",
	}
	cmd.AddCommand(
		profilesListCmd(opts),
		profilesShowCmd(opts),
		profilesCreateCmd(opts),
		profilesSetCmd(opts),
		profilesRenameCmd(opts),
		profilesDeleteCmd(opts),
		profilesFieldsCmd(),
	)
	return cmd
}

// withProfiles loads the profile store, runs fn and persists the result
// when save is true.
func withProfiles(opts *globalOptions, save bool, fn func(*profile.Store) error) error {
	db, err := opts.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s := profile.NewStore(db)
	if err := s.ReadPersisted(); err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if save {
		return s.Persist()
	}
	return nil
}

func profilesListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(opts, false, func(s *profile.Store) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, profile.DefaultName)
				for _, name := range s.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			})
		},
	}
}

func profilesShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a profile's display and property fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(opts, false, func(s *profile.Store) error {
				p, ok := s.Get(args[0])
				if !ok {
					return fmt.Errorf("%q: %w", args[0], profile.ErrNotFound)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:       %s\n", p.Name)
				fmt.Fprintf(out, "Display:    %s\n", strings.Join(p.Display, ", "))
				fmt.Fprintf(out, "Properties: %s\n", strings.Join(p.Properties, ", "))
				return nil
			})
		},
	}
}

func profilesCreateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(opts, true, func(s *profile.Store) error {
				name, err := s.Create(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
				return nil
			})
		},
	}
}

func profilesSetCmd(opts *globalOptions) *cobra.Command {
	var display, properties []string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Set a profile's fields, creating it if needed",
		Long: `Set replaces the display and property field lists of a profile.
Fields are names from the field catalog (see "panes profiles fields").

Example:
  panes profiles set Music --display Name,Size,Artist --properties Album,Year`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if profile.IsReserved(name) {
				return fmt.Errorf("%q: %w", name, profile.ErrReservedName)
			}
			if strings.TrimSpace(name) == "" {
				return profile.ErrEmptyName
			}
			for _, f := range append(append([]string{}, display...), properties...) {
				if !profile.InCatalog(f) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a catalog field\n", f)
				}
			}
			return withProfiles(opts, true, func(s *profile.Store) error {
				s.SaveEditState(name, display, properties)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&display, "display", nil, "display fields, comma separated")
	cmd.Flags().StringSliceVar(&properties, "properties", nil, "property fields, comma separated")
	return cmd
}

func profilesRenameCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(opts, true, func(s *profile.Store) error {
				return s.Rename(args[0], args[1])
			})
		},
	}
}

func profilesDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfiles(opts, true, func(s *profile.Store) error {
				return s.Delete(args[0])
			})
		},
	}
}

func profilesFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the field catalog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, c := range profile.Catalog() {
				fmt.Fprintf(out, "%s:\n", c.Name)
				for _, f := range c.Fields {
					fmt.Fprintf(out, "  %s\n", f)
				}
			}
		},
	}
}
