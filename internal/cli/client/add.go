package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// CreateItemRequest represents the create knowledge API request.
type CreateItemRequest struct {
	Content string   `json:"content"`
	Title   string   `json:"title,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// ItemCreated represents the create knowledge API response.
type ItemCreated struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	ChunkCount int      `json:"chunk_count"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var (
		file  string
		title string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add knowledge from an argument, file or stdin",
		Long: `Add a knowledge item. Content comes from the argument, --file, or stdin.

Examples:
  # Add inline text
  lore add "Raft elects a leader per term."

  # Add a file
  lore add --file notes.md --title "Raft notes" --tags consensus,raft

  # Pipe content in
  pbpaste | lore add --title "Meeting notes"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			return runAdd(arg, file, title, tags, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from file")
	cmd.Flags().StringVar(&title, "title", "", "Title (generated when omitted)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags (generated when omitted)")

	return cmd
}

func runAdd(arg, file, title string, tags []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	content, source, err := readContent(arg, file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("no content provided")
	}

	req := CreateItemRequest{
		Content: content,
		Title:   title,
		Tags:    tags,
		Source:  source,
	}

	resp, err := api.Post("/knowledge", req)
	if err != nil {
		return fmt.Errorf("failed to add knowledge: %w", err)
	}

	var item ItemCreated
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Added %s (%d chunks)\n", item.ID, item.ChunkCount)
		fmt.Printf("Title: %s\n", item.Title)
		if len(item.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(item.Tags, ", "))
		}
	}

	return nil
}

// readContent resolves the content source: argument, file, then stdin.
func readContent(arg, file string) (content, source string, err error) {
	if arg != "" {
		return arg, "", nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), file, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), "", nil
}
