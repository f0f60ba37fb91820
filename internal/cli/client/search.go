package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ChunkID   string   `json:"chunk_id"`
	Content   string   `json:"content"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source"`
	Relevance float64  `json:"relevance"`
	ItemID    string   `json:"item_id"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		topK int
		tag  string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Searches stored knowledge by semantic similarity and prints the matching chunks.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(args[0], topK, tag, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "n", 5, "Maximum number of results")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Filter by tag")

	return cmd
}

func runSearch(query string, topK int, tag string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", SearchRequest{Query: query, TopK: topK, Tag: tag})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var results []SearchResult
	if err := json.Unmarshal(resp.Data, &results); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, result := range results {
		fmt.Printf("%d. %s (%.2f)\n", i+1, result.Title, result.Relevance)
		preview := result.Content
		if len([]rune(preview)) > 100 {
			preview = string([]rune(preview)[:97]) + "..."
		}
		fmt.Printf("   %s\n", strings.ReplaceAll(preview, "\n", " "))
		if len(result.Tags) > 0 {
			fmt.Printf("   Tags: %s\n", strings.Join(result.Tags, ", "))
		}
		fmt.Printf("   Item: %s\n", result.ItemID)
		if i < len(results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
