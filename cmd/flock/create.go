package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create <collection> <title>",
	Short:   "Create an item in a collection",
	GroupID: "items",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, err := parseCollection(args[0])
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringArray("field")
		fields, err := parseFields(pairs)
		if err != nil {
			return err
		}

		req := &client.CreateItemRequest{
			Title:     args[1],
			CreatedBy: actor,
			Fields:    fields,
		}
		req.Content, _ = cmd.Flags().GetString("content")
		req.Author, _ = cmd.Flags().GetString("author")
		req.Category, _ = cmd.Flags().GetString("category")
		req.Date, _ = cmd.Flags().GetString("date")

		item, err := flockClient.CreateItem(context.Background(), string(collection), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(item)
			return nil
		}
		fmt.Printf("created %s\n", ui.RenderID(item.ID))
		printItem(os.Stdout, item)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update an item's attributes",
	GroupID: "items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateItemRequest{}
		for flag, dst := range map[string]**string{
			"title":    &req.Title,
			"content":  &req.Content,
			"author":   &req.Author,
			"category": &req.Category,
			"date":     &req.Date,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*dst = &v
			}
		}
		pairs, _ := cmd.Flags().GetStringArray("field")
		fields, err := parseFields(pairs)
		if err != nil {
			return err
		}
		req.Fields = fields

		item, err := flockClient.UpdateItem(context.Background(), args[0], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(item)
			return nil
		}
		printItem(os.Stdout, item)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more items",
	GroupID: "items",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := flockClient.DeleteItem(context.Background(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Printf("deleted %s\n", ui.RenderID(id))
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:     "comment <id> [text]",
	Short:   "Add a comment to an item, or list its comments",
	GroupID: "items",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if len(args) == 1 {
			comments, err := flockClient.GetComments(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(comments)
				return nil
			}
			printComments(os.Stdout, comments)
			return nil
		}

		comment, err := flockClient.AddComment(ctx, args[0], actor, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(comment)
			return nil
		}
		fmt.Printf("comment %d added to %s\n", comment.ID, ui.RenderID(args[0]))
		return nil
	},
}

func init() {
	updateCmd.Flags().String("title", "", "title")
	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().String("content", "", "body text")
		cmd.Flags().String("author", "", "author")
		cmd.Flags().String("category", "", "category (choir, committee, family, ...)")
		cmd.Flags().String("date", "", "listing date (YYYY-MM-DD, default today)")
		cmd.Flags().StringArray("field", nil, "collection field as key=value (repeatable)")
	}
}
