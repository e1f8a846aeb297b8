package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/model"
)

// parseCollection accepts a collection name and lists the valid ones when
// it is unknown.
func parseCollection(s string) (model.Collection, error) {
	c := model.Collection(s)
	if c.IsValid() {
		return c, nil
	}
	names := make([]string, len(model.Collections))
	for i, c := range model.Collections {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown collection %q (one of %s)", s, strings.Join(names, ", "))
}

var listCmd = &cobra.Command{
	Use:     "list <collection>",
	Short:   "List a collection, filtered and paginated",
	GroupID: "items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := parseCollection(args[0])
		if err != nil {
			return err
		}
		req := &client.ListItemsRequest{}
		req.Category, _ = cmd.Flags().GetString("category")
		req.Date, _ = cmd.Flags().GetString("date")
		req.Search, _ = cmd.Flags().GetString("search")
		req.Sort, _ = cmd.Flags().GetString("sort")
		req.Page, _ = cmd.Flags().GetInt("page")
		req.PerPage, _ = cmd.Flags().GetInt("per-page")

		page, err := flockClient.ListItems(context.Background(), string(collection), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(page)
			return nil
		}
		printPage(os.Stdout, collection, page)
		return nil
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections the server knows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := flockClient.ListCollections(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(specs)
			return nil
		}
		for _, s := range specs {
			fmt.Printf("%-16s %-20s category: %s\n", s.Name, s.Label, s.CategoryLabel)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("category", "", `filter by category ("all" clears)`)
	listCmd.Flags().String("date", "", "filter by calendar day (YYYY-MM-DD)")
	listCmd.Flags().StringP("search", "q", "", "free-text search")
	listCmd.Flags().String("sort", "", `sort order (e.g. "title", "-date")`)
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("per-page", 0, "items per page (server default when 0)")

	listCmd.AddCommand(collectionsCmd)
}
