package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// UpdateItemRequest represents the update knowledge API request.
type UpdateItemRequest struct {
	Content string   `json:"content,omitempty"`
	Title   string   `json:"title,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// ItemUpdated represents the update knowledge API response.
type ItemUpdated struct {
	ID            string `json:"id"`
	ChunkCount    int    `json:"chunk_count"`
	ContentUpdate bool   `json:"content_update"`
}

// UpdateCmd creates the update command.
func UpdateCmd() *cobra.Command {
	var (
		file  string
		title string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a knowledge item",
		Long: `Update a knowledge item's metadata, content, or both.

Content updates re-chunk and re-index the item; metadata-only updates
rewrite chunk metadata in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpdate(args[0], file, title, tags, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Replace content with file contents")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "New comma-separated tags")

	return cmd
}

func runUpdate(id, file, title string, tags []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := UpdateItemRequest{Title: title, Tags: tags}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		req.Content = string(data)
	}

	if req.Content == "" && req.Title == "" && len(req.Tags) == 0 {
		return fmt.Errorf("nothing to update: provide --file, --title or --tags")
	}

	resp, err := api.Put("/knowledge/"+id, req)
	if err != nil {
		return fmt.Errorf("failed to update knowledge: %w", err)
	}

	var updated ItemUpdated
	if err := json.Unmarshal(resp.Data, &updated); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(updated, "", "  ")
		fmt.Println(string(output))
	} else if updated.ContentUpdate {
		fmt.Printf("Updated %s, re-indexed %d chunks\n", updated.ID, updated.ChunkCount)
	} else {
		fmt.Printf("Updated metadata on %s (%d chunks)\n", updated.ID, updated.ChunkCount)
	}

	return nil
}
