package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marcus/twonote/internal/backup"
	"github.com/marcus/twonote/internal/store"
)

var logLimit int

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Export every notebook and note to a JSON file",
	Long: `Export every notebook and note to a version 1 JSON backup.

Without a file argument the backup is written to
twonote-backup-YYYY-MM-DD.json in the current directory. Use "-" for stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Import a JSON backup",
	Long: `Import a version 1 JSON backup. Notebooks whose name already exists are
reused; every note in the backup is created as a new note.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent changes from the action log",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(backupCmd, restoreCmd, logCmd)
}

// withStore opens the configured store for a one-shot command.
func withStore(fn func(ctx context.Context, st store.Storage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(context.Background(), st)
}

func runBackup(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Storage) error {
		now := time.Now()
		doc, err := backup.Export(ctx, st, now)
		if err != nil {
			return err
		}

		path := backup.FileName(now)
		if len(args) == 1 {
			path = args[0]
		}
		if path == "-" {
			return backup.Write(cmd.OutOrStdout(), doc)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
		if err := backup.Write(f, doc); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close backup: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d notebooks and %d notes to %s\n",
			len(doc.Notebooks), len(doc.Notes), path)
		return nil
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	doc, err := backup.Read(f)
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st store.Storage) error {
		res, err := backup.Restore(ctx, st, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d notes (%d notebooks created, %d reused)\n",
			res.NotesRestored, res.NotebooksCreated, res.NotebooksReused)
		if res.NotesSkipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d notes without a notebook in the backup\n", res.NotesSkipped)
		}
		return nil
	})
}

type actionLogger interface {
	RecentActions(ctx context.Context, limit int) ([]store.Action, error)
}

func runLog(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Storage) error {
		al, ok := st.(actionLogger)
		if !ok {
			return errors.New("the action log is only kept by the sqlite backend")
		}
		actions, err := al.RecentActions(ctx, logLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(actions) == 0 {
			fmt.Fprintln(out, "No changes recorded")
			return nil
		}
		for _, a := range actions {
			fmt.Fprintf(out, "%-14s %-7s %-10s %s\n",
				humanize.Time(a.Timestamp), a.Type, a.EntityType, a.EntityID)
		}
		return nil
	})
}
