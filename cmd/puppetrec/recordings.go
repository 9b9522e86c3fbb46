package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var recordingName string

func newRecordingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Manage stored recordings",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored recordings",
		Args:  cobra.NoArgs,
		RunE:  runListRecordings,
	}

	importCmd := &cobra.Command{
		Use:   "import <events.json|->",
		Short: "Store a recording from an events file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportRecording,
	}
	importCmd.Flags().StringVar(&recordingName, "name", "", "Recording name (default: file name)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored recording",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteRecording,
	}

	cmd.AddCommand(listCmd, importCmd, deleteCmd)
	return cmd
}

func runListRecordings(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEVENTS\tCREATED")
	for _, rec := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rec.ID, rec.Name, rec.EventCount, rec.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runImportRecording(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	events, err := readEvents(args[0], cmd.InOrStdin(), logger.Logger)
	if err != nil {
		return err
	}

	name := recordingName
	if name == "" && args[0] != "-" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.Save(context.Background(), name, events)
	if err != nil {
		return fmt.Errorf("failed to import recording: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
	progress(cmd, "✓ Imported %q (%d events)\n", rec.Name, len(rec.Events))
	return nil
}

func runDeleteRecording(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", args[0], err)
	}
	progress(cmd, "✓ Deleted %s\n", args[0])
	return nil
}
