package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// StatsResponse represents the stats API response.
type StatsResponse struct {
	Items   int            `json:"items"`
	Chunks  int            `json:"chunks"`
	Tags    map[string]int `json:"tags"`
	Sources map[string]int `json:"sources"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(outputJSON)
		},
	}

	return cmd
}

func runStats(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	var stats StatsResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Items:  %d\n", stats.Items)
	fmt.Printf("Chunks: %d\n", stats.Chunks)
	if len(stats.Tags) > 0 {
		fmt.Printf("Tags:\n")
		for _, tag := range sortedKeys(stats.Tags) {
			fmt.Printf("  %3dx %s\n", stats.Tags[tag], tag)
		}
	}
	if len(stats.Sources) > 0 {
		fmt.Printf("Sources:\n")
		for _, source := range sortedKeys(stats.Sources) {
			fmt.Printf("  %3dx %s\n", stats.Sources[source], source)
		}
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
