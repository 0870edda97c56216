package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"libtrack/internal/bootstrap"
)

func newPluginCmd(flags *rootFlags) *cobra.Command {
	pluginCmd := &cobra.Command{Use: "plugin", Short: "Reminder plugin management"}

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugins from the manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				plugins, err := app.NotifyCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				for _, p := range plugins {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\t%s\t%s\n",
						p.Name, p.Version, p.Enabled, strings.Join(p.Capabilities, ","), p.Binary)
				}
				return nil
			})
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check plugin binaries, checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.NotifyCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				unhealthy := 0
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tbinary=%t\tchecksum=%t\tlifecycle=%t",
						r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK)
					if r.Error != "" {
						unhealthy++
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\terror=%s", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				if unhealthy > 0 {
					return fmt.Errorf("%d plugin(s) unhealthy", unhealthy)
				}
				return nil
			})
		},
	})
	return pluginCmd
}

func newRemindCmd(flags *rootFlags) *cobra.Command {
	var pluginName string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send overdue-loan reminders through a plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.NotifyCLI.Remind(ctx, pluginName, dryRun)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, r := range out.Reminders {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s <%s>\t%d day(s) overdue\n",
						r.LoanID, r.BookTitle, r.MemberName, r.MemberEmail, r.DaysOverdue)
				}
				if out.DryRun {
					_, _ = fmt.Fprintf(w, "dry run: %d reminder(s) not sent\n", len(out.Reminders))
					return nil
				}
				_, _ = fmt.Fprintf(w, "%s delivered %d of %d reminder(s)\n", out.PluginName, out.Delivered, len(out.Reminders))
				for _, f := range out.Failures {
					_, _ = fmt.Fprintf(w, "failed %s: %s\n", f.LoanID, f.Reason)
				}
				if len(out.Failures) > 0 {
					return fmt.Errorf("%d reminder(s) failed", len(out.Failures))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pluginName, "plugin", "", "plugin name from the manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the reminders without starting the plugin")
	_ = cmd.MarkFlagRequired("plugin")
	return cmd
}
