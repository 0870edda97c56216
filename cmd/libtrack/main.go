package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"libtrack/internal/bootstrap"
	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/platform/config"
)

type rootFlags struct {
	dataDir    string
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "libtrack",
		Short:         "Small-library catalogue and loan tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data", ".", "library data directory")
	pf.StringVar(&flags.configFile, "config", "", "config file (default <data>/libtrack.yaml)")
	pf.String("storage-driver", "", "storage driver: sqlite|postgres|mysql|file|memory")
	pf.String("storage-dsn", "", "storage DSN or file path")
	pf.String("log-level", "", "log level: debug|info|warn|error")
	pf.Int("due-days", 0, "default loan length in days")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newSeedCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newCategoryCmd(flags))
	root.AddCommand(newBookCmd(flags))
	root.AddCommand(newMemberCmd(flags))
	root.AddCommand(newLoanCmd(flags))
	root.AddCommand(newPluginCmd(flags))
	root.AddCommand(newRemindCmd(flags))
	root.AddCommand(newBackupCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	return config.Load(flags.dataDir, flags.configFile, cmd.Flags())
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(context.Context, *bootstrap.App) error) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := bootstrap.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

// printOutcome reports an applied mutation, or turns a rejected one into an error.
func printOutcome(cmd *cobra.Command, verb string, out librarydto.MutationOutput) error {
	if !out.Applied {
		return fmt.Errorf("%s rejected: %s", verb, out.Reason)
	}
	if out.ID != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, out.ID)
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), verb)
	return nil
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logFile, err := bootstrap.OpenLogFile(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logFile.Close() }()

			app, err := bootstrap.New(context.Background(), cfg, logFile)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalogue into an empty library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LibraryCLI.Seed(ctx)
				if err != nil {
					return err
				}
				return printOutcome(cmd, "seeded", out)
			})
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.LibraryCLI.Stats(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(w, s.Summary)
				_, _ = fmt.Fprintf(w, "categories=%d books=%d available=%d members=%d open_loans=%d overdue=%d\n",
					s.Categories, s.Books, s.AvailableBooks, s.Members, s.OpenLoans, s.OverdueLoans)
				return nil
			})
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default libtrack.yaml into the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.configFile
			if path == "" {
				path = filepath.Join(flags.dataDir, "libtrack.yaml")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg, err := config.New(flags.dataDir)
			if err != nil {
				return err
			}
			if err := config.WriteFile(path, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "data_dir:         %s\n", cfg.DataDir)
			switch cfg.Storage.Driver {
			case config.DriverPostgres, config.DriverMySQL:
				_, _ = fmt.Fprintf(w, "storage:          %s\n", cfg.Storage.Driver)
			default:
				_, _ = fmt.Fprintf(w, "storage:          %s %s\n", cfg.Storage.Driver, cfg.Storage.DSN)
			}
			_, _ = fmt.Fprintf(w, "default_due_days: %d\n", cfg.Loans.DefaultDueDays)
			_, _ = fmt.Fprintf(w, "log:              %s %s\n", cfg.Log.Level, cfg.Log.File)
			_, _ = fmt.Fprintf(w, "backup:           %s\n", cfg.Backup.Driver)
			_, _ = fmt.Fprintf(w, "plugins:          %s\n", cfg.Plugins.Manifest)
			return nil
		},
	}

	cfgCmd.AddCommand(initCmd, showCmd)
	return cfgCmd
}
