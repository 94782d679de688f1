package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"genreshelf/internal/config"
	"genreshelf/internal/dataset"
	"genreshelf/internal/failure"
)

func newColumnsCommand(ctx *commandContext) *cobra.Command {
	var indexColumn string
	var noIndex bool

	cmd := &cobra.Command{
		Use:   "columns <input.csv> <output.csv>",
		Short: "Translate dataset CSV column names using the configured table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if len(cfg.Dataset.Columns) == 0 {
				return fmt.Errorf("%w: no [dataset.columns] configured", failure.ErrConfiguration)
			}

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve input: %w", err)
			}
			output, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve output: %w", err)
			}

			index := cfg.Dataset.IndexColumn
			if cmd.Flags().Changed("index-column") {
				index = strings.TrimSpace(indexColumn)
			}
			if noIndex {
				index = ""
			}

			result, err := dataset.RenameFile(cmd.Context(), input, output, dataset.Options{
				IndexColumn: index,
				Columns:     cfg.Dataset.Columns,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Renamed))
			for _, r := range result.Renamed {
				rows = append(rows, []string{r.From, r.To})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Column", "Renamed to"}, rows, nil))
			}
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Output", statusOK, output, colorize))
			fmt.Fprintln(out, renderStatusLine("Rows", statusInfo, fmt.Sprint(result.Rows), colorize))
			if len(result.Missing) > 0 {
				fmt.Fprintln(out, renderStatusLine("Not in input", statusWarn, strings.Join(result.Missing, ", "), colorize))
			}
			fmt.Fprintln(out, strings.Join(result.Header, ","))
			return nil
		},
	}

	cmd.Flags().StringVar(&indexColumn, "index-column", "", "Column kept first and never renamed (default from [dataset].index_column)")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Treat every column as data")
	return cmd
}
