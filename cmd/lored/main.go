package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clearhaven/lore/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lored",
		Short: "Lore daemon",
		Long:  "Lore daemon for running the knowledge base API server",
	}

	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
