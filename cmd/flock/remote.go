package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Manage named server remotes",
	GroupID: "system",
	// All remote subcommands are local file operations.
	PersistentPreRunE: skipClient,
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + strings.Repeat("*", len(token)-8)
}

func addRemote(name string, r Remote) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	cfg.Remotes[name] = r
	if cfg.Active == "" {
		cfg.Active = name
	}
	return saveRemotesConfig(cfg)
}

func removeRemote(name string) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; !ok {
		return fmt.Errorf("remote %q not found", name)
	}
	delete(cfg.Remotes, name)
	if cfg.Active == name {
		cfg.Active = ""
	}
	return saveRemotesConfig(cfg)
}

func useRemote(name string) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; !ok {
		return fmt.Errorf("remote %q not found", name)
	}
	cfg.Active = name
	return saveRemotesConfig(cfg)
}

func listRemotes(w io.Writer) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	if len(cfg.Remotes) == 0 {
		fmt.Fprintln(w, "no remotes configured")
		return nil
	}
	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tURL\tGRPC\tTOKEN")
	for _, name := range names {
		r := cfg.Remotes[name]
		marker := "  "
		if name == cfg.Active {
			marker = "* "
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", marker, name, r.URL, r.GRPCAddr, maskToken(r.Token))
	}
	return tw.Flush()
}

func showRemote(w io.Writer, name string) error {
	cfg, err := loadRemotesConfig()
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Active
	}
	if name == "" {
		return fmt.Errorf("no active remote; specify a name or run 'flock remote use <name>'")
	}
	r, ok := cfg.Remotes[name]
	if !ok {
		return fmt.Errorf("remote %q not found", name)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	active := ""
	if name == cfg.Active {
		active = " (active)"
	}
	fmt.Fprintf(tw, "name:\t%s%s\n", name, active)
	fmt.Fprintf(tw, "url:\t%s\n", r.URL)
	if r.GRPCAddr != "" {
		fmt.Fprintf(tw, "grpc_addr:\t%s\n", r.GRPCAddr)
	}
	if r.Token != "" {
		fmt.Fprintf(tw, "token:\t%s\n", maskToken(r.Token))
	}
	if r.NATSURL != "" {
		fmt.Fprintf(tw, "nats_url:\t%s\n", r.NATSURL)
	}
	return tw.Flush()
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or update a named remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := Remote{URL: args[1]}
		r.GRPCAddr, _ = cmd.Flags().GetString("grpc")
		r.Token, _ = cmd.Flags().GetString("token")
		r.NATSURL, _ = cmd.Flags().GetString("nats")
		if err := addRemote(args[0], r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q added (%s)\n", args[0], args[1])
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := removeRemote(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q removed\n", args[0])
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all remotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRemotes(cmd.OutOrStdout())
	},
}

var remoteUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := useRemote(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active remote set to %q\n", args[0])
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show [<name>]",
	Short: "Show details for a remote (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return showRemote(cmd.OutOrStdout(), name)
	},
}

func init() {
	remoteAddCmd.Flags().String("grpc", "", "gRPC address (host:port)")
	remoteAddCmd.Flags().String("token", "", "bearer token for authentication")
	remoteAddCmd.Flags().String("nats", "", "NATS URL for watch")

	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteRemoveCmd)
	remoteCmd.AddCommand(remoteListCmd)
	remoteCmd.AddCommand(remoteUseCmd)
	remoteCmd.AddCommand(remoteShowCmd)
}
