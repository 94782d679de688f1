package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"genreshelf/internal/inventory"
)

func newCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "count [dir]",
		Short:       "Count directories and files below a directory",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			summary, err := inventory.Count(cmd.Context(), root)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Inventory", colorize))
			fmt.Fprintln(out, renderStatusLine("Path", statusInfo, summary.Root, colorize))
			fmt.Fprintln(out, renderStatusLine("Directories", statusInfo, humanize.Comma(int64(summary.Dirs)), colorize))
			fmt.Fprintln(out, renderStatusLine("Files", statusInfo, humanize.Comma(int64(summary.Files)), colorize))
			fmt.Fprintln(out, renderStatusLine("Total size", statusInfo, humanize.IBytes(uint64(summary.Bytes)), colorize))
			return nil
		},
	}
}
