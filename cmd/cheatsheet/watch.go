package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cheatsheets/pkg/catalog"
)

func newWatchCmd() *cobra.Command {
	var search, category string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the filtered catalog whenever another process changes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			a.engine.SetSearchQuery(search)
			a.engine.SetActiveCategory(category)

			out := cmd.OutOrStdout()
			render := func(v catalog.View) {
				if v.IsLoading {
					return
				}
				fmt.Fprintf(out, "\n%d of %d cheat sheets\n", len(v.FilteredRecords), len(v.Records))
				if err := printRecords(out, v.FilteredRecords); err != nil {
					log.Warn().Err(err).Msg("Error printing cheat sheets")
				}
			}

			render(a.engine.View())
			cancel := a.engine.Subscribe(render)
			defer cancel()

			if err := a.engine.WatchExternalChanges(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text to search for")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show this category")
	return cmd
}
