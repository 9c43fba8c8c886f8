package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/storage"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up or restore the ownership database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Write a backup next to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := cfg.DatabasePath()
			if err != nil {
				return err
			}

			dbConfig := storage.DefaultConfig(dbPath)
			dbConfig.AutoMigrate = true
			db, err := storage.Open(dbConfig)
			if err != nil {
				return err
			}
			defer db.Close()

			path, err := db.Backup(cmd.Context(), storage.BackupDir(dbPath))
			if err != nil {
				return err
			}
			logger.Debug("backup written", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := cfg.DatabasePath()
			if err != nil {
				return err
			}

			backups, err := storage.ListBackups(storage.BackupDir(dbPath))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, b := range backups {
				fmt.Fprintf(w, "%s\t%d bytes\t%s\n", b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the database with a backup",
		Long: `Replaces the ownership database with a backup. The current file is kept
next to it with an ".old.<timestamp>" suffix. Stop "binder serve" first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := cfg.DatabasePath()
			if err != nil {
				return err
			}
			if err := storage.Restore(dbPath, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	})

	return cmd
}
