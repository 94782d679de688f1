package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"genreshelf/internal/failure"
	"genreshelf/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reorganize runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No reorganize runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.RunID,
						humanize.Time(run.StartedAt),
						run.Status,
						yesNo(run.Promoted),
						strconv.Itoa(run.Copied),
						strconv.Itoa(run.Unrecognized),
						strconv.Itoa(run.RenameFailures),
						run.Source,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Replaced", "Copied", "Unrecognized", "Rename errors", "Library"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-folder outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries, err := store.Entries(cmd.Context(), run.RunID)
				if err != nil {
					return err
				}
				failures, err := store.RenameFailures(cmd.Context(), run.RunID)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"run":             run,
						"entries":         entries,
						"rename_failures": failures,
					})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Run "+run.RunID, colorize))
				fmt.Fprintln(out, renderStatusLine("Library", statusInfo, run.Source, colorize))
				fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
				kind := statusOK
				if run.Error != "" {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("Status", kind, run.Status, colorize))
				if run.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, run.Error, colorize))
				}

				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Folder, string(e.Outcome), e.Destination, strconv.Itoa(e.Files), strconv.Itoa(e.Renamed)})
				}
				if len(rows) > 0 {
					fmt.Fprintln(out, renderTable(
						[]string{"Folder", "Outcome", "Destination", "Files", "Renamed"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
					))
				}
				for _, f := range failures {
					fmt.Fprintln(out, renderStatusLine("Not renamed", statusWarn, fmt.Sprintf("%s (%s)", f.Path, f.Error), colorize))
				}
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete recorded runs older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("%w: --older-than must be positive", failure.ErrValidation)
			}
			return ctx.withJournal(func(store *journal.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) older than %s\n", removed, olderThan)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Age cutoff")
	return cmd
}

func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := c.openJournal(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: journal is disabled ([journal].enabled = false)", failure.ErrConfiguration)
	}
	defer store.Close()
	return fn(store)
}

