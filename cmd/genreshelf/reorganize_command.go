package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"genreshelf/internal/config"
	"genreshelf/internal/failure"
	"genreshelf/internal/reorganizer"
)

func newReorganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var stagingSuffix string

	cmd := &cobra.Command{
		Use:   "reorganize [dir]",
		Short: "Rebuild a flat subgenre library into genre/subgenre folders",
		Long: "Copies every recognized subgenre folder under its main genre in a staging\n" +
			"directory, sanitizes file names, then replaces the library with the staged tree.\n" +
			"The library is untouched until the final swap.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			source := cfg.Paths.LibraryDir
			if len(args) == 1 {
				if source, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve library path: %w", err)
				}
			}
			suffix := cfg.Paths.StagingSuffix
			if cmd.Flags().Changed("staging-suffix") {
				suffix = stagingSuffix
			}
			if len(cfg.Genres) == 0 {
				return fmt.Errorf("%w: no genres configured in %s; run `genreshelf config init` for a sample taxonomy", failure.ErrConfiguration, ctx.configPath)
			}

			opts := reorganizer.Options{
				Source:        source,
				StagingSuffix: suffix,
				Taxonomy:      cfg.Taxonomy(),
				Logger:        logger,
			}
			if !dryRun {
				store, err := ctx.openJournal(cfg)
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					opts.Recorder = store
				}
			}
			r, err := reorganizer.New(opts)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dryRun {
				plan, err := r.Plan(runCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, plan)
				}
				printPlan(cmd, plan)
				return nil
			}

			report, err := r.Run(runCtx)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show where each folder would go without changing anything")
	cmd.Flags().StringVar(&stagingSuffix, "staging-suffix", "", "Suffix appended to the library path for the staging directory")
	return cmd
}

func printPlan(cmd *cobra.Command, plan *reorganizer.Plan) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		target := e.Destination
		if target == "" {
			target = e.Reason
		}
		rows = append(rows, []string{e.Folder, string(e.Outcome), target})
	}
	fmt.Fprintln(out, renderTable([]string{"Folder", "Action", "Destination"}, rows, nil))

	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader("Dry run", colorize))
	fmt.Fprintln(out, renderStatusLine("Library", statusInfo, plan.Source, colorize))
	fmt.Fprintln(out, renderStatusLine("Staging", statusInfo, plan.Staging, colorize))
	fmt.Fprintln(out, renderStatusLine("To copy", statusOK, strconv.Itoa(len(plan.Copies())), colorize))
	unknown := len(plan.Unrecognized())
	fmt.Fprintln(out, renderStatusLine("Unrecognized", warnIf(unknown > 0), strconv.Itoa(unknown), colorize))
}

func printReport(cmd *cobra.Command, report *reorganizer.Report) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		if e.Outcome == reorganizer.OutcomeSkipped {
			continue
		}
		rows = append(rows, []string{
			e.Folder,
			string(e.Outcome),
			e.Destination,
			strconv.Itoa(e.Files),
			humanize.IBytes(uint64(e.Bytes)),
			strconv.Itoa(e.Renamed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Folder", "Outcome", "Destination", "Files", "Size", "Renamed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))

	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader("Reorganize", colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, report.RunID, colorize))
	promotedKind := statusOK
	if !report.Promoted {
		promotedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Library replaced", promotedKind, yesNo(report.Promoted), colorize))
	fmt.Fprintln(out, renderStatusLine("Copied", statusOK, strconv.Itoa(report.Copied()), colorize))
	unknown := len(report.Unrecognized())
	fmt.Fprintln(out, renderStatusLine("Unrecognized", warnIf(unknown > 0), strconv.Itoa(unknown), colorize))
	failures := len(report.RenameFailures)
	fmt.Fprintln(out, renderStatusLine("Rename failures", warnIf(failures > 0), strconv.Itoa(failures), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, report.Duration().Round(time.Millisecond).String(), colorize))
}

func warnIf(cond bool) statusKind {
	if cond {
		return statusWarn
	}
	return statusOK
}
