package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ItemAttachment represents the original document stored next to an item.
type ItemAttachment struct {
	FileName string `json:"file_name"`
	DocType  string `json:"doc_type"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

// ItemDetail represents the get API response.
type ItemDetail struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Attachment *ItemAttachment `json:"attachment,omitempty"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get the full content of a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/knowledge/" + id)
	if err != nil {
		return fmt.Errorf("failed to get knowledge: %w", err)
	}

	var item ItemDetail
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(item.Content)
	if item.Attachment != nil {
		fmt.Printf("\nAttachment: %s (%.1f KB)\n", item.Attachment.FileName, float64(item.Attachment.Size)/1024)
	}

	return nil
}
