package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show an item with its comments",
	GroupID: "items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		withEvents, _ := cmd.Flags().GetBool("events")

		item, err := flockClient.GetItem(ctx, args[0])
		if err != nil {
			return err
		}
		if len(item.Comments) == 0 {
			// Older servers and the gRPC transport may not embed comments.
			if comments, err := flockClient.GetComments(ctx, item.ID); err == nil {
				item.Comments = comments
			}
		}

		if jsonOutput {
			printJSON(item)
			return nil
		}
		printItem(os.Stdout, item)
		if len(item.Comments) > 0 {
			fmt.Println()
			printComments(os.Stdout, item.Comments)
		}

		if withEvents {
			evts, err := flockClient.GetEvents(ctx, item.ID)
			if err != nil {
				return err
			}
			fmt.Println()
			for _, e := range evts {
				fmt.Printf("%s  %s  %s\n", ui.RenderMuted(e.CreatedAt.Format("2006-01-02 15:04:05")), e.Topic, e.Actor)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("events", false, "also show the item's event history")
}
