package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/models"
	"cheatsheets/pkg/utils"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []models.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tUPDATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			utils.ShortID(r.ID), r.Category, r.Title, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// readContent returns value, or stdin when value is "-"
func readContent(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read content from stdin: %w", err)
	}
	return string(b), nil
}

func newListCmd() *cobra.Command {
	var search, category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cheat sheets, optionally filtered",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			a.engine.SetSearchQuery(search)
			a.engine.SetActiveCategory(category)
			records := a.engine.FilteredRecords()

			if asJSON {
				return printJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cheat sheets found")
				return nil
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text to search for")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one cheat sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := a.resolveID(args[0])
			if err != nil {
				return err
			}
			r, _ := a.engine.GetByID(id)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, r)
			}
			fmt.Fprintf(out, "%s\n", r.Title)
			fmt.Fprintf(out, "id:       %s\n", r.ID)
			fmt.Fprintf(out, "category: %s\n", r.Category)
			fmt.Fprintf(out, "created:  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "updated:  %s\n", r.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			if r.Description != "" {
				fmt.Fprintf(out, "\n%s\n", r.Description)
			}
			fmt.Fprintf(out, "\n%s\n", strings.TrimRight(r.Content, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newAddCmd() *cobra.Command {
	var in models.RecordInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a cheat sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(in.Content)
			if err != nil {
				return err
			}
			in.Content = content

			if result := errors.NewValidator().ValidateRecordInput(in); !result.IsValid {
				return result.Err()
			}

			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := a.engine.AddRecord(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", utils.ShortID(r.ID), r.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "Title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Short description")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Category")
	cmd.Flags().StringVar(&in.Content, "content", "", "Content, or - to read stdin")
	return cmd
}

func newEditCmd() *cobra.Command {
	var title, description, category, content string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a cheat sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd models.RecordUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = models.StringPtr(title)
			}
			if flags.Changed("description") {
				upd.Description = models.StringPtr(description)
			}
			if flags.Changed("category") {
				upd.Category = models.StringPtr(category)
			}
			if flags.Changed("content") {
				c, err := readContent(content)
				if err != nil {
					return err
				}
				upd.Content = models.StringPtr(c)
			}
			if upd.IsEmpty() {
				return fmt.Errorf("nothing to change; pass at least one of --title, --description, --category, --content")
			}
			if result := errors.NewValidator().ValidateRecordUpdate(upd); !result.IsValid {
				return result.Err()
			}

			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := a.resolveID(args[0])
			if err != nil {
				return err
			}
			r, err := a.engine.UpdateRecord(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			if r == nil {
				return errors.ErrRecordNotFound.WithContext("id", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", utils.ShortID(r.ID), r.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVar(&content, "content", "", "New content, or - to read stdin")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a cheat sheet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := a.resolveID(args[0])
			if err != nil {
				return err
			}
			if err := a.engine.DeleteRecord(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", utils.ShortID(id))
			return nil
		},
	}
}
