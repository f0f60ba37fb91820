package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ImportItemRequest represents the import API request.
type ImportItemRequest struct {
	Source string   `json:"source"`
	Title  string   `json:"title,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// ImportCmd creates the import command.
func ImportCmd() *cobra.Command {
	var (
		title string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "import <path-or-url>",
		Short: "Import a document into the knowledge base",
		Long: `Import a PDF, Word, PowerPoint document or web page.

Examples:
  lore import ./papers/raft.pdf
  lore import https://raft.github.io --tags consensus`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runImport(args[0], title, tags, outputJSON)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title (derived from the document when omitted)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")

	return cmd
}

func runImport(source, title string, tags []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := ImportItemRequest{Source: source, Title: title, Tags: tags}

	resp, err := api.Post("/knowledge/import", req)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	var item ItemCreated
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Imported %s (%d chunks)\n", item.ID, item.ChunkCount)
		fmt.Printf("Title: %s\n", item.Title)
		if len(item.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(item.Tags, ", "))
		}
	}

	return nil
}
