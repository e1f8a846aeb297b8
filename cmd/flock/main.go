package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/ui"
)

var (
	serverAddr string
	httpURL    string
	transport  string
	jsonOutput bool
	noColor    bool
	actor      string

	flockClient client.Client
)

func defaultActor() string {
	if s := os.Getenv("FLOCK_ACTOR"); s != "" {
		return s
	}
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultHTTPURL() string {
	if s := os.Getenv("FLOCK_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultServer() string {
	if s := os.Getenv("FLOCK_SERVER"); s != "" {
		return s
	}
	if a := activeRemoteGRPCAddr(); a != "" {
		return a
	}
	return "localhost:9090"
}

func authToken() string {
	if s := os.Getenv("FLOCK_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:           "flock <command>",
	Short:         "Church directory: listings, dashboards and saved views",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		switch transport {
		case "http":
			flockClient = client.NewHTTPClient(httpURL, authToken())
		case "grpc":
			c, err := client.NewGRPCClient(serverAddr, authToken())
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			flockClient = c
		default:
			return fmt.Errorf("unknown transport %q (must be http or grpc)", transport)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if flockClient != nil {
			flockClient.Close()
		}
	},
}

// skipClient replaces the root PersistentPreRunE for commands that never
// talk to the server.
func skipClient(cmd *cobra.Command, args []string) error { return nil }

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultServer(), "gRPC server address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "http", "transport protocol (http or grpc)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name for created_by fields")

	rootCmd.AddGroup(
		&cobra.Group{ID: "items", Title: "Items:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Items
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(commentCmd)

	// Views
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(rolesCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError("Error: "+err.Error()))
		os.Exit(1)
	}
}
