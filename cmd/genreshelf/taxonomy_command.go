package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"genreshelf/internal/failure"
	"genreshelf/internal/sanitize"
	"genreshelf/internal/taxonomy"
)

type taxonomyView struct {
	Genres   []genreView        `json:"genres"`
	Mappings []taxonomy.Mapping `json:"mappings"`
}

type genreView struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Directory string   `json:"directory"`
	Subgenres []string `json:"subgenres"`
}

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the configured genre taxonomy and check it for collisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tax := cfg.Taxonomy()
			if len(tax) == 0 {
				return fmt.Errorf("%w: no genres configured in %s", failure.ErrConfiguration, ctx.configPath)
			}
			lookup, err := taxonomy.NewLookup(tax)
			if err != nil {
				return err
			}

			view := taxonomyView{Mappings: lookup.Mappings()}
			for _, g := range tax {
				view.Genres = append(view.Genres, genreView{
					ID:        g.ID,
					Name:      g.Name,
					Directory: sanitize.Name(g.Name),
					Subgenres: g.Subgenres,
				})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}

			rows := make([][]string, 0, len(view.Genres))
			for _, g := range view.Genres {
				rows = append(rows, []string{
					strconv.Itoa(g.ID),
					g.Name,
					g.Directory,
					strings.Join(g.Subgenres, ", "),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Genre", "Directory", "Subgenres"},
				rows,
				[]columnAlignment{alignRight},
			))
			fmt.Fprintln(out, renderStatusLine("Lookup", statusOK,
				fmt.Sprintf("%d subgenres, no collisions", lookup.Len()), shouldColorize(out)))
			return nil
		},
	}
}
