package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string `json:"question"`
}

// AnswerSource represents one source line of an answer.
type AnswerSource struct {
	Title          string  `json:"title"`
	Relevance      float64 `json:"relevance"`
	Tier           string  `json:"tier"`
	RawContentPath string  `json:"raw_content_path,omitempty"`
	ItemID         string  `json:"item_id,omitempty"`
	Snippet        string  `json:"snippet"`
	URL            string  `json:"url,omitempty"`
	FromWeb        bool    `json:"from_web"`
}

// AnswerResponse represents the ask API response.
type AnswerResponse struct {
	Content         string         `json:"content"`
	Sources         []AnswerSource `json:"sources"`
	AIKnowledgeUsed bool           `json:"ai_knowledge_used"`
	Provider        string         `json:"provider,omitempty"`
	Model           string         `json:"model,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the knowledge base",
		Long:  "Retrieves relevant knowledge and synthesizes an answer with the configured completion model.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(strings.Join(args, " "), outputJSON)
		},
	}

	return cmd
}

func runAsk(question string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", AskRequest{Question: question})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer AnswerResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Content)

	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, src := range answer.Sources {
			if src.FromWeb {
				fmt.Printf("  %d. %s (web: %s)\n", i+1, src.Title, src.URL)
			} else {
				fmt.Printf("  %d. %s (relevance: %.2f)\n", i+1, src.Title, src.Relevance)
			}
		}
	}
	if answer.AIKnowledgeUsed {
		fmt.Printf("\nNote: parts of this answer come from the model's own knowledge.\n")
	}

	return nil
}
