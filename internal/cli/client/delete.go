package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ItemDeleted represents the delete knowledge API response.
type ItemDeleted struct {
	ID            string `json:"id"`
	Found         bool   `json:"found"`
	ChunksRemoved int    `json:"chunks_removed"`
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Delete("/knowledge/" + id)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge: %w", err)
	}

	var deleted ItemDeleted
	if err := json.Unmarshal(resp.Data, &deleted); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(deleted, "", "  ")
		fmt.Println(string(output))
	} else if deleted.Found {
		fmt.Printf("Deleted %s (%d chunks removed)\n", deleted.ID, deleted.ChunksRemoved)
	} else {
		fmt.Printf("Nothing to delete: %s not found\n", deleted.ID)
	}

	return nil
}
