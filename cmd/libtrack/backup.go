package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libtrack/internal/bootstrap"
)

func newBackupCmd(flags *rootFlags) *cobra.Command {
	backup := &cobra.Command{Use: "backup", Short: "Snapshot the library to the backup store"}

	var label string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BackupCLI.Create(ctx, label)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d bytes)\n", out.Key, out.Size)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&label, "label", "", "short label appended to the key")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				backups, err := app.BackupCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no backups")
					return nil
				}
				for _, b := range backups {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n",
						b.Key, b.Size, b.LastModified.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Summarize a stored backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				d, err := app.BackupCLI.Inspect(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "key:        %s\n", d.Key)
				_, _ = fmt.Fprintf(w, "schema:     v%d\n", d.SchemaVersion)
				if d.Label != "" {
					_, _ = fmt.Fprintf(w, "label:      %s\n", d.Label)
				}
				_, _ = fmt.Fprintf(w, "created:    %s\n", d.CreatedAt.Format(time.RFC3339))
				_, _ = fmt.Fprintf(w, "categories: %d\n", d.Categories)
				_, _ = fmt.Fprintf(w, "books:      %d\n", d.Books)
				_, _ = fmt.Fprintf(w, "members:    %d\n", d.Members)
				_, _ = fmt.Fprintf(w, "loans:      %d\n", d.Loans)
				return nil
			})
		},
	}

	backup.AddCommand(createCmd, listCmd, showCmd)
	return backup
}
