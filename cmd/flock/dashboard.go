package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/model"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard <role>",
	Short:   "Show the dashboard a church role sees",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := flockClient.GetDashboard(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(d)
			return nil
		}
		printDashboard(os.Stdout, d)
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Short:   "List roles and their capabilities",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := flockClient.ListRoles(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(roles)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tCAPABILITIES\tOVERRIDDEN")
		for _, r := range roles {
			caps := make([]string, len(r.Capabilities))
			for i, c := range r.Capabilities {
				caps[i] = string(c)
			}
			fmt.Fprintf(w, "%s\t%s\t%v\n", r.Role, strings.Join(caps, " "), r.Overridden)
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show item totals per collection",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := flockClient.GetStats(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(st)
			return nil
		}
		names := make([]string, 0, len(st.Collections))
		for c := range st.Collections {
			names = append(names, string(c))
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tITEMS")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, st.Collections[model.Collection(name)])
		}
		fmt.Fprintf(w, "total\t%d\n", st.TotalItems)
		return w.Flush()
	},
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := flockClient.Health(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}
