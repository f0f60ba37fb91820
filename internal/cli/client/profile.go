package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// ProfileResponse represents the profile API response.
type ProfileResponse struct {
	Interests      []string       `json:"interests"`
	Level          string         `json:"level"`
	Preferences    []string       `json:"preferences"`
	FrequentTopics map[string]int `json:"frequent_topics"`
	UpdatedAt      string         `json:"updated_at"`
}

// UpdateProfileRequest represents a partial profile update.
type UpdateProfileRequest struct {
	Level       *string   `json:"level,omitempty"`
	Interests   *[]string `json:"interests,omitempty"`
	Preferences *[]string `json:"preferences,omitempty"`
}

// ProfileCmd creates the profile command group.
func ProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the user profile used to personalize answers",
	}

	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileSetCmd())

	return cmd
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runProfileShow(outputJSON)
		},
	}
}

func profileSetCmd() *cobra.Command {
	var (
		level       string
		interests   []string
		preferences []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long: `Update one or more profile fields. Unset flags leave fields untouched.

Examples:
  lore profile set --level intermediate
  lore profile set --interests "distributed systems,go" --preferences "show examples"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			req := UpdateProfileRequest{}
			if cmd.Flags().Changed("level") {
				req.Level = &level
			}
			if cmd.Flags().Changed("interests") {
				req.Interests = &interests
			}
			if cmd.Flags().Changed("preferences") {
				req.Preferences = &preferences
			}
			if req.Level == nil && req.Interests == nil && req.Preferences == nil {
				return fmt.Errorf("nothing to set: provide --level, --interests or --preferences")
			}
			return runProfileSet(req, outputJSON)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Expertise level (e.g. beginner, intermediate, expert)")
	cmd.Flags().StringSliceVar(&interests, "interests", nil, "Comma-separated interests")
	cmd.Flags().StringSliceVar(&preferences, "preferences", nil, "Comma-separated answer-style preferences")

	return cmd
}

func runProfileShow(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/profile")
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	var p ProfileResponse
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printProfile(p, outputJSON)
	return nil
}

func runProfileSet(req UpdateProfileRequest, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Put("/profile", req)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	var p ProfileResponse
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printProfile(p, outputJSON)
	return nil
}

func printProfile(p ProfileResponse, outputJSON bool) {
	if outputJSON {
		output, _ := json.MarshalIndent(p, "", "  ")
		fmt.Println(string(output))
		return
	}

	if p.Level != "" {
		fmt.Printf("Level:       %s\n", p.Level)
	}
	if len(p.Interests) > 0 {
		fmt.Printf("Interests:   %s\n", strings.Join(p.Interests, ", "))
	}
	if len(p.Preferences) > 0 {
		fmt.Printf("Preferences: %s\n", strings.Join(p.Preferences, "; "))
	}
	if len(p.FrequentTopics) > 0 {
		topics := make([]string, 0, len(p.FrequentTopics))
		for topic := range p.FrequentTopics {
			topics = append(topics, topic)
		}
		sort.Strings(topics)
		fmt.Printf("Topics asked about:\n")
		for _, topic := range topics {
			fmt.Printf("  %3dx %s\n", p.FrequentTopics[topic], topic)
		}
	}
	if p.Level == "" && len(p.Interests) == 0 && len(p.Preferences) == 0 && len(p.FrequentTopics) == 0 {
		fmt.Println("Empty profile. Set fields with 'lore profile set'.")
	}
}
