package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clearhaven/lore/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lore",
		Short: "Lore CLI - Personal knowledge base with semantic search",
		Long: `Lore CLI manages a personal knowledge base served by lored.

Environment variables:
  LORE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")

	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.UpdateCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.ImportCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.ProfileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
