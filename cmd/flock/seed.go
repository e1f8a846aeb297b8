package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/fixtures"
)

var seedCmd = &cobra.Command{
	Use:     "seed [file.yaml]",
	Short:   "Load sample or fixture data into the directory",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			doc *fixtures.Document
			err error
		)
		if len(args) == 1 {
			doc, err = fixtures.LoadFile(args[0])
		} else {
			doc, err = fixtures.Default()
		}
		if err != nil {
			return err
		}

		n, err := seed(context.Background(), flockClient, doc, actor)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d items, %d comments, %d configs\n", n.items, n.comments, n.configs)
		return nil
	},
}

type seedCounts struct {
	items, comments, configs int
}

// seed creates every item in doc with its comments, then sets its configs.
// It stops at the first failure and reports what was created so far.
func seed(ctx context.Context, c client.Client, doc *fixtures.Document, createdBy string) (seedCounts, error) {
	var n seedCounts
	for _, e := range doc.Items {
		it, err := e.Item()
		if err != nil {
			return n, fmt.Errorf("item %q: %w", e.Title, err)
		}
		created, err := c.CreateItem(ctx, string(it.Collection), &client.CreateItemRequest{
			Title:     it.Title,
			Content:   it.Content,
			Author:    it.Author,
			Category:  it.Category,
			Date:      it.Date.Format("2006-01-02"),
			CreatedBy: createdBy,
			Fields:    it.Fields,
		})
		if err != nil {
			return n, fmt.Errorf("create %q: %w", e.Title, err)
		}
		n.items++
		for _, cm := range e.Comments {
			if _, err := c.AddComment(ctx, created.ID, cm.Author, cm.Text); err != nil {
				return n, fmt.Errorf("comment on %s: %w", created.ID, err)
			}
			n.comments++
		}
	}
	for _, cfg := range doc.Configs {
		value, err := cfg.JSON()
		if err != nil {
			return n, fmt.Errorf("config %s: %w", cfg.Key, err)
		}
		if _, err := c.SetConfig(ctx, cfg.Key, value); err != nil {
			return n, fmt.Errorf("set config %s: %w", cfg.Key, err)
		}
		n.configs++
	}
	return n, nil
}
