package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printItem(w io.Writer, it *model.Item) {
	spec, _ := model.SpecFor(it.Collection)
	categoryLabel := spec.CategoryLabel
	if categoryLabel == "" {
		categoryLabel = "Category"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", ui.RenderID(it.ID))
	fmt.Fprintf(tw, "Collection:\t%s\n", it.Collection)
	fmt.Fprintf(tw, "Title:\t%s\n", ui.RenderBold(it.Title))
	if it.Category != "" {
		fmt.Fprintf(tw, "%s:\t%s\n", categoryLabel, ui.RenderCategory(it.Category))
	}
	if it.Author != "" {
		fmt.Fprintf(tw, "Author:\t%s\n", it.Author)
	}
	if !it.Date.IsZero() {
		fmt.Fprintf(tw, "Date:\t%s\n", it.Date.Format("2006-01-02"))
	}
	fields := it.FieldMap()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s:\t%s\n", k, formatFieldValue(fields[k]))
	}
	if it.CreatedBy != "" {
		fmt.Fprintf(tw, "Created By:\t%s\n", it.CreatedBy)
	}
	if !it.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created At:\t%s\n", ui.RenderMuted(it.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	if !it.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated At:\t%s\n", ui.RenderMuted(it.UpdatedAt.Format("2006-01-02 15:04:05")))
	}
	tw.Flush()

	if it.Content != "" {
		fmt.Fprintf(w, "\n%s\n", it.Content)
	}
}

func formatFieldValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// printPage renders a listing page as a table followed by a page summary.
func printPage(w io.Writer, collection model.Collection, page *client.ItemPage) {
	spec, _ := model.SpecFor(collection)
	categoryLabel := strings.ToUpper(spec.CategoryLabel)
	if categoryLabel == "" {
		categoryLabel = "CATEGORY"
	}
	titleWidth := max(ui.TerminalWidth(100)-50, 20)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDATE\t%s\tTITLE\n", categoryLabel)
	for _, it := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			ui.RenderID(it.ID),
			it.Date.Format("2006-01-02"),
			ui.RenderCategory(it.Category),
			ui.Truncate(it.Title, titleWidth),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", ui.RenderMuted(ui.PageSummary(page.Page, page.TotalPages, page.TotalItems)))
}

func printComments(w io.Writer, comments []*model.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "no comments")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "%s %s\n  %s\n", ui.RenderBold(c.Author), ui.RenderMuted(c.CreatedAt.Format("2006-01-02 15:04")), c.Text)
	}
}

func printDashboard(w io.Writer, d *dashboard.Dashboard) {
	fmt.Fprintf(w, "Dashboard: %s\n\n", ui.RenderBold(string(d.Role)))
	if len(d.Sections) == 0 {
		fmt.Fprintln(w, "no sections")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tITEMS\tACTIONS")
	for _, s := range d.Sections {
		actions := make([]string, len(s.Actions))
		for i, a := range s.Actions {
			actions[i] = string(a)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Label, s.TotalItems, strings.Join(actions, ", "))
	}
	tw.Flush()
}

func printConfigs(w io.Writer, configs []*model.Config) {
	if len(configs) == 0 {
		fmt.Fprintln(w, "no configs")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, c := range configs {
		fmt.Fprintf(tw, "%s\t%s\n", c.Key, ui.Truncate(string(c.Value), 60))
	}
	tw.Flush()
}
