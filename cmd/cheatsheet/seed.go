package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"cheatsheets/pkg/models"
	"cheatsheets/pkg/utils"
)

var seedCategories = []string{"shell", "git", "docker", "kubernetes", "go", "sql", "vim"}

// fakeRecord builds a cheat sheet with lorem ipsum text and a fenced snippet
func fakeRecord(f faker.Faker) models.RecordInput {
	lorem := f.Lorem()
	category := seedCategories[f.IntBetween(0, len(seedCategories)-1)]

	var content strings.Builder
	content.WriteString(lorem.Paragraph(2))
	content.WriteString("\n\n```" + category + "\n")
	for _, w := range lorem.Words(f.IntBetween(2, 5)) {
		content.WriteString(w + " --" + lorem.Word() + "\n")
	}
	content.WriteString("```\n")

	return models.RecordInput{
		Title:       strings.TrimSuffix(lorem.Sentence(3), "."),
		Description: lorem.Sentence(8),
		Category:    category,
		Content:     content.String(),
	}
}

func newSeedCmd() *cobra.Command {
	var count int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the catalog with generated cheat sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			f := faker.NewWithSeed(rand.NewSource(seed))

			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			for i := 0; i < count; i++ {
				in := fakeRecord(f)
				if err := a.engine.AddCategory(cmd.Context(), in.Category); err != nil {
					return err
				}
				r, err := a.engine.AddRecord(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s [%s] %s\n", utils.ShortID(r.ID), r.Category, r.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "How many cheat sheets to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible output")
	return cmd
}
