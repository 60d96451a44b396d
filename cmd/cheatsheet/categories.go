package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cheatsheets/pkg/colors"
	"cheatsheets/pkg/errors"
)

func newCategoriesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their cheat sheet counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			names := a.engine.Categories()
			counts := a.engine.CategoryCounts()
			custom := a.engine.CustomCategories()

			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"categories":       names,
					"customCategories": custom,
					"counts":           counts,
				})
			}

			registered := make(map[string]bool, len(custom))
			for _, name := range custom {
				registered[name] = true
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tCOUNT\tCOLOR\tREGISTERED")
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%t\n", name, counts[name], colors.ColorFor(name).Name, registered[name])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Add or remove categories",
	}
	cmd.AddCommand(newCategoryAddCmd())
	cmd.AddCommand(newCategoryRemoveCmd())
	return cmd
}

func newCategoryAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Register a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if result := errors.NewValidator().ValidateCategoryName(args[0]); !result.IsValid {
				return result.Err()
			}

			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.AddCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categories: %v\n", a.engine.CustomCategories())
			return nil
		},
	}
}

func newCategoryRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a category",
		Long: "Remove a category registration. Without --force cheat sheets keep their\n" +
			"category in local mode, and the server refuses while any use it in remote\n" +
			"mode. With --force the category's cheat sheets are deleted too.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			name := args[0]
			var deleted bool
			if force {
				deleted, err = a.engine.ForceDeleteCategory(cmd.Context(), name)
			} else {
				deleted, err = a.engine.DeleteCategory(cmd.Context(), name)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case deleted:
				fmt.Fprintf(out, "Removed category %q\n", name)
			case a.engine.CategoryCounts()[name] > 0 && !force:
				return errors.ErrCategoryInUse.WithContext("category", name).
					WithUserMessage(fmt.Sprintf("Category %q still has cheat sheets; use --force to delete them too", name))
			default:
				return errors.ErrCategoryNotFound.WithContext("category", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Also delete the category's cheat sheets")
	return cmd
}

func newColorCmd() *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "color <category>",
		Short: "Show the palette entry assigned to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			c := colors.ColorFor(name)
			styles := colors.StylesFor(name, active)
			hover := colors.HoverStylesFor(name)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "category:          %s\n", name)
			fmt.Fprintf(out, "palette:           #%d %s\n", colors.Index(name), c.Name)
			fmt.Fprintf(out, "background-color:  %s\n", styles.BackgroundColor)
			fmt.Fprintf(out, "border-color:      %s\n", styles.BorderColor)
			fmt.Fprintf(out, "color:             %s\n", styles.Color)
			fmt.Fprintf(out, "--hover-bg:        %s\n", hover.HoverBg)
			fmt.Fprintf(out, "--hover-border:    %s\n", hover.HoverBorder)
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Show the selected-state styles")
	return cmd
}
