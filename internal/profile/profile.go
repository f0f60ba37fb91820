// Package profile persists a small user profile used to personalize answer
// prompts. The profile lives at <dataDir>/memory/profile.json; a missing or
// unreadable file behaves as an empty profile, never an error.
package profile

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	maxShownInterests   = 6
	maxShownPreferences = 4
	maxShownTopics      = 5
)

// Profile is the on-disk document.
type Profile struct {
	Interests      []string       `json:"interests"`
	Level          string         `json:"level"`
	Preferences    []string       `json:"preferences"`
	FrequentTopics map[string]int `json:"frequent_topics"`
	UpdatedAt      string         `json:"updated_at"`
}

// Store reads and writes the profile file.
type Store struct {
	path string
}

// NewStore returns a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "memory", "profile.json")}
}

// Get loads the profile, falling back to an empty one when the file is
// missing or corrupt.
func (s *Store) Get() Profile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Profile{FrequentTopics: map[string]int{}}
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("profile_read_error: %v", err)
		return Profile{FrequentTopics: map[string]int{}}
	}
	if p.FrequentTopics == nil {
		p.FrequentTopics = map[string]int{}
	}
	return p
}

func (s *Store) save(p Profile) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// SetLevel updates the user's self-described expertise level.
func (s *Store) SetLevel(level string) error {
	p := s.Get()
	p.Level = strings.TrimSpace(level)
	return s.save(p)
}

// SetInterests replaces the interests list.
func (s *Store) SetInterests(interests []string) error {
	p := s.Get()
	p.Interests = interests
	return s.save(p)
}

// SetPreferences replaces the answer-style preferences list.
func (s *Store) SetPreferences(preferences []string) error {
	p := s.Get()
	p.Preferences = preferences
	return s.save(p)
}

// RecordTopic bumps the access count for a topic. Errors are logged, not
// returned: topic stats are best effort and must never fail a question.
func (s *Store) RecordTopic(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	p := s.Get()
	p.FrequentTopics[topic]++
	if err := s.save(p); err != nil {
		log.Printf("profile_topic_error: %v", err)
	}
}

// Summary renders a short block suitable for inclusion in a system prompt.
// Returns "" when nothing is known about the user.
func (s *Store) Summary() string {
	p := s.Get()

	var parts []string
	if p.Level != "" {
		parts = append(parts, "Level: "+p.Level)
	}
	if len(p.Interests) > 0 {
		shown := p.Interests
		if len(shown) > maxShownInterests {
			shown = shown[:maxShownInterests]
		}
		parts = append(parts, "Interests: "+strings.Join(shown, ", "))
	}
	if len(p.Preferences) > 0 {
		shown := p.Preferences
		if len(shown) > maxShownPreferences {
			shown = shown[:maxShownPreferences]
		}
		parts = append(parts, "Answer preferences: "+strings.Join(shown, "; "))
	}
	if len(p.FrequentTopics) > 0 {
		parts = append(parts, "Frequent topics: "+strings.Join(topTopics(p.FrequentTopics, maxShownTopics), ", "))
	}

	if len(parts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## About the user\n")
	for _, part := range parts {
		b.WriteString("- ")
		b.WriteString(part)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func topTopics(freq map[string]int, n int) []string {
	type entry struct {
		topic string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for topic, count := range freq {
		entries = append(entries, entry{topic, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].topic < entries[j].topic
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	topics := make([]string, len(entries))
	for i, e := range entries {
		topics[i] = e.topic
	}
	return topics
}
