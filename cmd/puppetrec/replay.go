package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/v0xg/puppetrec/internal/recording"
	"github.com/v0xg/puppetrec/internal/replay"
)

var (
	gifOutput     string
	headful       bool
	replayWidth   int
	replayHeight  int
	replayTimeout time.Duration
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [events.json|-]",
		Short: "Replay a recording in a real browser",
		Long: `replay drives Chrome/Chromium through the recorded events, optionally saving
a GIF with one frame per action.

Example:
  puppetrec replay events.json --gif demo.gif
  puppetrec replay --recording 3f2a... --headful`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReplay,
	}

	def := replay.DefaultOptions()
	cmd.Flags().StringVar(&recordingID, "recording", "", "Replay a stored recording instead of a file")
	cmd.Flags().StringVar(&gifOutput, "gif", "", "Save a GIF of the replay")
	cmd.Flags().BoolVar(&headful, "headful", false, "Show the browser window")
	cmd.Flags().IntVar(&replayWidth, "width", def.Width, "Viewport width")
	cmd.Flags().IntVar(&replayHeight, "height", def.Height, "Viewport height")
	cmd.Flags().DurationVar(&replayTimeout, "timeout", def.Timeout, "Timeout per action")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var events []recording.Event
	if recordingID != "" {
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := db.Get(context.Background(), recordingID)
		if err != nil {
			return fmt.Errorf("failed to load recording %s: %w", recordingID, err)
		}
		events = rec.Events
	} else {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		if events, err = readEvents(path, cmd.InOrStdin(), logger.Logger); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress(cmd, "→ Replaying %d events... ", len(events))
	runner := replay.NewRunner(replay.Options{
		Headless: !headful,
		Timeout:  replayTimeout,
		Width:    replayWidth,
		Height:   replayHeight,
		GIF:      gifOutput,
	}, logger.Logger)

	result, err := runner.Run(ctx, events)
	if err != nil {
		progress(cmd, "failed\n")
		return fmt.Errorf("replay failed: %w", err)
	}
	progress(cmd, "done (%d ok, %d failed)\n", result.Executed, len(result.Failed))

	for _, f := range result.Failed {
		progress(cmd, "  ✗ %v\n", f)
	}
	if gifOutput != "" {
		progress(cmd, "✓ Saved to %s (%.1f MB)\n", gifOutput, float64(result.GIFSize)/(1024*1024))
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d actions failed", len(result.Failed), result.Executed+len(result.Failed))
	}
	return nil
}
