package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justyntemme/panes/internal/app"
	"github.com/justyntemme/panes/internal/config"
	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/store"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath      string
	dbPath          string
	debug           bool
	debugCategories []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var layoutID int

	root := &cobra.Command{
		Use:   "panes [path]",
		Short: "Multi-pane file manager",
		Long: `panes shows directories side by side in switchable layouts, with
per-pane view modes, field profiles and drag and drop between panes.

Examples:
  panes                   # restore the last session
  panes ~/Pictures        # open the first pane in ~/Pictures
  panes --layout 42       # start with the 2x2 grid
  panes --db /tmp/s.db    # use a separate settings database`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.debug, opts.debugCategories)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runOpts, err := opts.guiOptions(args, layoutID)
			if err != nil {
				return err
			}
			app.Main(runOpts)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is ~/.config/panes/config.json)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "settings database (default is the per-user settings location)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringSliceVar(&opts.debugCategories, "debug-categories", nil,
		"extra debug categories (SCAN, UI_LAYOUT, ... or all); needs a -tags debug build")
	root.Flags().IntVarP(&layoutID, "layout", "l", 0, "layout id to start with")

	root.AddCommand(profilesCmd(opts))
	root.AddCommand(stateCmd(opts))
	root.AddCommand(configCmd(opts))
	return root
}

func setupLogging(verbose bool, categories []string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: verbose})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	for _, c := range categories {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "ALL" {
			debug.EnableAll()
			continue
		}
		debug.Enable(debug.Category(c))
	}
	if len(categories) > 0 && !debug.Enabled {
		logrus.Warn("--debug-categories has no effect in this build; rebuild with -tags debug")
	}
}

// guiOptions turns the root command's flags and argument into app options.
func (o *globalOptions) guiOptions(args []string, layoutID int) (app.Options, error) {
	runOpts := app.Options{ConfigPath: o.configPath, DBPath: o.dbPath}
	if len(args) == 1 {
		runOpts.Path = args[0]
	}
	if layoutID != 0 {
		id := layout.ID(layoutID)
		if !id.Valid() {
			return app.Options{}, fmt.Errorf("unknown layout %d (valid: %v)", layoutID, layout.IDs())
		}
		runOpts.LayoutID = id
	}
	return runOpts, nil
}

// loadConfig reads the config file the way the GUI does.
func (o *globalOptions) loadConfig() (config.Config, error) {
	m := config.NewManager()
	path := o.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := m.LoadFrom(path); err != nil {
		return config.Config{}, err
	}
	if err := m.ParseError(); err != nil {
		logrus.WithError(err).Warn("config: using defaults")
	}
	return m.Get(), nil
}

// openStore opens the settings database named by --db, or the one the GUI
// would use.
func (o *globalOptions) openStore() (*store.DB, error) {
	path := o.dbPath
	if path == "" {
		cfg, err := o.loadConfig()
		if err != nil {
			return nil, err
		}
		if path, err = store.DefaultPath(cfg.Store.Vendor, cfg.Store.App); err != nil {
			return nil, fmt.Errorf("settings location: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}
