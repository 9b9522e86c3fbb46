package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/v0xg/puppetrec/internal/codegen"
	"github.com/v0xg/puppetrec/internal/jscheck"
	"github.com/v0xg/puppetrec/internal/recording"
	"go.uber.org/zap"
)

var (
	output        string
	recordingID   string
	checkSyntax   bool
	wrapAsync     bool
	headless      bool
	waitForNav    bool
	waitOnClick   bool
	blankLines    bool
	dataAttribute string
	regexDataAttr bool
	customLine    string
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [events.json|-]",
		Short: "Compile recorded events into a Puppeteer script",
		Long: `compile reads a JSON array of recorded events (or {"events": [...]}) from a
file, stdin, or the recordings database and prints the generated script.

Example:
  puppetrec compile events.json --headless=false -o demo.js
  cat events.json | puppetrec compile - --check`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}

	def := codegen.DefaultOptions()
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&recordingID, "recording", "", "Compile a stored recording instead of a file")
	cmd.Flags().BoolVar(&checkSyntax, "check", false, "Syntax-check the generated script")
	cmd.Flags().BoolVar(&wrapAsync, "wrap-async", def.WrapAsync, "Wrap the script in an async IIFE")
	cmd.Flags().BoolVar(&headless, "headless", def.Headless, "Launch the browser headless")
	cmd.Flags().BoolVar(&waitForNav, "wait-for-navigation", def.WaitForNavigation, "Await navigations")
	cmd.Flags().BoolVar(&waitOnClick, "wait-for-selector-on-click", def.WaitForSelectorOnClick, "Wait for selectors before clicking")
	cmd.Flags().BoolVar(&blankLines, "blank-lines", def.BlankLinesBetweenBlocks, "Separate blocks with blank lines")
	cmd.Flags().StringVar(&dataAttribute, "data-attribute", def.DataAttribute, "Preferred data attributes (space-separated)")
	cmd.Flags().BoolVar(&regexDataAttr, "regex-data-attribute", def.UseRegexForDataAttribute, "Treat data attributes as regular expressions")
	cmd.Flags().StringVar(&customLine, "custom-line-after-click", def.CustomLineAfterClick, "Line emitted after every click")
	return cmd
}

// flagOverrides returns the option flags the user set explicitly.
func flagOverrides(cmd *cobra.Command) codegen.Overrides {
	var ov codegen.Overrides
	flags := cmd.Flags()

	if flags.Changed("wrap-async") {
		ov.WrapAsync = &wrapAsync
	}
	if flags.Changed("headless") {
		ov.Headless = &headless
	}
	if flags.Changed("wait-for-navigation") {
		ov.WaitForNavigation = &waitForNav
	}
	if flags.Changed("wait-for-selector-on-click") {
		ov.WaitForSelectorOnClick = &waitOnClick
	}
	if flags.Changed("blank-lines") {
		ov.BlankLinesBetweenBlocks = &blankLines
	}
	if flags.Changed("data-attribute") {
		ov.DataAttribute = &dataAttribute
	}
	if flags.Changed("regex-data-attribute") {
		ov.UseRegexForDataAttribute = &regexDataAttr
	}
	if flags.Changed("custom-line-after-click") {
		ov.CustomLineAfterClick = &customLine
	}
	return ov
}

func runCompile(cmd *cobra.Command, args []string) error {
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
		events, err = readEvents(path, cmd.InOrStdin(), logger.Logger)
		if err != nil {
			return err
		}
	}

	opts := cfg.Options(flagOverrides(cmd))
	logger.Debug("compiling",
		zap.Int("events", len(events)),
		zap.Bool("wrapAsync", opts.WrapAsync),
		zap.Bool("headless", opts.Headless))

	script := codegen.New(opts, logger.Logger).Generate(events)

	if checkSyntax {
		if err := jscheck.Check(script, opts); err != nil {
			return err
		}
	}

	if output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), script)
		return err
	}
	if err := os.WriteFile(output, []byte(script), 0o644); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	progress(cmd, "✓ Saved to %s\n", output)
	return nil
}
