package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ItemSummary represents one entry of the list API response.
type ItemSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Source     string   `json:"source"`
	ChunkCount int      `json:"chunk_count"`
	Preview    string   `json:"preview"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		tag   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge items",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(tag, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of items")

	return cmd
}

func runList(tag string, limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/knowledge?limit=%d", limit)
	if tag != "" {
		path += "&tag=" + tag
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list knowledge: %w", err)
	}

	var items []ItemSummary
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No knowledge items found.")
		return nil
	}

	for _, item := range items {
		fmt.Printf("%s  %s (%d chunks)\n", item.ID, item.Title, item.ChunkCount)
		if len(item.Tags) > 0 {
			fmt.Printf("    Tags: %s\n", strings.Join(item.Tags, ", "))
		}
		if item.Preview != "" {
			fmt.Printf("    %s\n", strings.ReplaceAll(item.Preview, "\n", " "))
		}
	}

	return nil
}
