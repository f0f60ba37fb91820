package service

import (
	"fmt"
	"strings"

	"github.com/clearhaven/lore/internal/domain"
)

// metadataPrompt asks the completion service to label new content. The
// response must be bare JSON so it survives a strict parse.
const metadataPrompt = `You label notes for a personal knowledge base.
Given the note content, respond with JSON only, no prose and no code fences:
{"title": "<concise title, max 10 words>", "tags": ["<up to 4 short lowercase tags>"]}`

// noKnowledgeMessage is returned without consulting the language model when
// there is no context and AI answers are disabled.
const noKnowledgeMessage = "I could not find anything relevant in your knowledge base. " +
	"Add some knowledge first, or rephrase your question."

const assistantIntro = "You are a personal knowledge assistant. Answer the user's question" +
	" clearly and concisely in the language of the question."

// pureKnowledgeTemplate drives the no-context state when AI answers are
// enabled: the model must disclose the gap before answering from general
// understanding.
const pureKnowledgeTemplate = assistantIntro + `
No relevant material was found in the user's knowledge base.
Start your answer by briefly noting that the knowledge base had nothing
relevant, then answer from your general understanding.`

// blendedTemplate drives every state that has context.
const blendedTemplate = assistantIntro + `
Use the reference material below as your primary source. You may blend in
general knowledge where the material is incomplete, but never contradict it.

Reference material:
%s`

const lowConfidenceHint = "Note: only low-confidence matches were found locally. " +
	"Mention this briefly before answering."

const webSupplementHint = "Note: web search results were used to supplement the local " +
	"knowledge base. Mention this briefly before answering."

// promptState names the four context shapes the synthesizer distinguishes.
type promptState int

const (
	stateNoContext promptState = iota
	stateContextWithHigh
	stateContextLowOnly
	stateContextLowPlusWeb
)

// deriveState picks the prompt state purely from tier counts.
func deriveState(high, low, web int) promptState {
	switch {
	case high == 0 && low == 0 && web == 0:
		return stateNoContext
	case high > 0:
		return stateContextWithHigh
	case web > 0:
		return stateContextLowPlusWeb
	default:
		return stateContextLowOnly
	}
}

// buildSystemPrompt renders the system prompt for a state, interpolating the
// assembled context text and an optional user-preference summary.
func buildSystemPrompt(state promptState, contextText, profileSummary string) string {
	var b strings.Builder
	switch state {
	case stateNoContext:
		b.WriteString(pureKnowledgeTemplate)
	case stateContextWithHigh:
		fmt.Fprintf(&b, blendedTemplate, contextText)
	case stateContextLowOnly:
		fmt.Fprintf(&b, blendedTemplate, contextText)
		b.WriteString("\n\n")
		b.WriteString(lowConfidenceHint)
	case stateContextLowPlusWeb:
		fmt.Fprintf(&b, blendedTemplate, contextText)
		b.WriteString("\n\n")
		b.WriteString(webSupplementHint)
	}
	if profileSummary != "" {
		b.WriteString("\n\n")
		b.WriteString(profileSummary)
	}
	return b.String()
}

// renderContext formats the ordered context entries into the prompt's
// reference-material section: a provenance header per block, then the body.
func renderContext(entries []domain.ContextEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.Tier {
		case domain.TierWeb:
			fmt.Fprintf(&b, "[%d] %s (web: %s)\n%s", i+1, e.Result.Title, e.Result.URL, e.Result.Content)
		default:
			fmt.Fprintf(&b, "[%d] %s (relevance: %.2f)", i+1, e.Result.Title, e.Result.Relevance)
			if e.Result.RawContentPath != "" {
				fmt.Fprintf(&b, " [%s]", e.Result.RawContentPath)
			}
			b.WriteString("\n")
			b.WriteString(e.Result.Content)
		}
	}
	return b.String()
}
