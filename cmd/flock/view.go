package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/model"
)

func viewKey(name string) string {
	return model.ViewNamespace + ":" + name
}

// loadView fetches and validates a saved view.
func loadView(ctx context.Context, name string) (*model.SavedView, error) {
	cfg, err := flockClient.GetConfig(ctx, viewKey(name))
	if err != nil {
		return nil, err
	}
	return model.ParseSavedView(cfg.Value)
}

// viewRequest builds the listing request a saved view stands for.
// A positive perPage overrides the view's own page size.
func viewRequest(v *model.SavedView, page, perPage int) (*client.ListItemsRequest, error) {
	st, err := v.State(0)
	if err != nil {
		return nil, err
	}
	if perPage > 0 {
		st.SetPerPage(perPage)
	}
	st.SetPage(page)

	req := &client.ListItemsRequest{
		Category: st.Predicates.Category,
		Search:   st.Predicates.Text,
		Sort:     v.Sort,
		Page:     st.Cursor.Page,
	}
	if d := st.Predicates.Date; d != nil {
		req.Date = formatDay(*d)
	}
	// Leave the page size to the server unless someone chose one.
	if v.PerPage > 0 || perPage > 0 {
		req.PerPage = st.Cursor.PerPage
	}
	return req, nil
}

// formatDay renders a filter date the way the server parses it back.
func formatDay(d time.Time) string {
	if d.Location() == time.UTC && d.Equal(d.Truncate(24*time.Hour)) {
		return d.Format(time.DateOnly)
	}
	return d.Format(time.RFC3339)
}

var viewCmd = &cobra.Command{
	Use:     "view",
	Short:   "Manage and run saved views (named listing queries)",
	GroupID: "views",
}

var viewSaveCmd = &cobra.Command{
	Use:   "save <name> <collection>",
	Short: "Save a listing query under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := parseCollection(args[1])
		if err != nil {
			return err
		}
		v := model.SavedView{Collection: collection}
		v.Category, _ = cmd.Flags().GetString("category")
		v.Date, _ = cmd.Flags().GetString("date")
		v.Query, _ = cmd.Flags().GetString("search")
		v.Sort, _ = cmd.Flags().GetString("sort")
		v.PerPage, _ = cmd.Flags().GetInt("per-page")
		if err := v.Validate(); err != nil {
			return err
		}

		value, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := flockClient.SetConfig(context.Background(), viewKey(args[0]), value); err != nil {
			return err
		}
		fmt.Printf("view %q saved\n", args[0])
		return nil
	},
}

var viewShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Run a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		raw, _ := cmd.Flags().GetBool("raw")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		v, err := loadView(ctx, args[0])
		if err != nil {
			return err
		}
		if raw {
			printJSON(v)
			return nil
		}

		req, err := viewRequest(v, page, perPage)
		if err != nil {
			return err
		}
		result, err := flockClient.ListItems(ctx, string(v.Collection), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(result)
			return nil
		}
		printPage(os.Stdout, v.Collection, result)
		return nil
	},
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := flockClient.ListConfigs(context.Background(), model.ViewNamespace)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(configs)
			return nil
		}
		printConfigs(os.Stdout, configs)
		return nil
	},
}

var viewDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := flockClient.DeleteConfig(context.Background(), viewKey(args[0])); err != nil {
			return err
		}
		fmt.Printf("view %q deleted\n", args[0])
		return nil
	},
}

func init() {
	viewSaveCmd.Flags().String("category", "", "category filter")
	viewSaveCmd.Flags().String("date", "", "calendar day filter (YYYY-MM-DD)")
	viewSaveCmd.Flags().StringP("search", "q", "", "free-text search")
	viewSaveCmd.Flags().String("sort", "", "sort order")
	viewSaveCmd.Flags().Int("per-page", 0, "page size")

	viewShowCmd.Flags().Bool("raw", false, "print the stored definition instead of running it")
	viewShowCmd.Flags().Int("page", 1, "page number")
	viewShowCmd.Flags().Int("per-page", 0, "override the view's page size")

	viewCmd.AddCommand(viewSaveCmd)
	viewCmd.AddCommand(viewShowCmd)
	viewCmd.AddCommand(viewListCmd)
	viewCmd.AddCommand(viewDeleteCmd)
}
