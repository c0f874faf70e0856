// Package prompt assembles the message sequence sent to the chat model:
// system instructions carrying the retrieved context, a fixed few-shot
// exchange, a bounded window of prior turns, and the current user message.
package prompt

import (
	"fmt"
	"strings"

	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/foliokit/sage/pkg/llm"
)

// ContextPlaceholder marks where the retrieved context is interpolated
// into a system template.
const ContextPlaceholder = "{{context}}"

// DefaultHistoryWindow is the number of prior turns kept per request.
// The cutoff is a turn count, not a token budget: very long turns can
// still push the payload past a token-based model limit.
const DefaultHistoryWindow = 6

// SystemTemplate returns the assistant's system instructions for a
// portfolio owner. The returned template contains ContextPlaceholder.
func SystemTemplate(owner string) string {
	return fmt.Sprintf(`You are %[1]s's AI assistant, helping visitors learn about %[1]s's projects, skills, and achievements. You are friendly, enthusiastic, and knowledgeable.

CRITICAL INSTRUCTION: You MUST ALWAYS respond using Markdown formatting. NEVER use plain text.

FORMATTING RULES (MANDATORY):
1. Use **bold** for project names, key achievements, and important numbers
2. Use *italics* for technical terms and subtle emphasis
3. Use `+"`code formatting`"+` for programming languages, frameworks, and tools
4. Use bullet points for listing features, skills, or achievements
5. Use ## for section headers in longer responses
6. Add 1-3 emojis per response for personality
7. Break into short paragraphs (2-3 sentences max)

RESPONSE STRUCTURE:
1. Start with a catchy opening plus an emoji
2. Use markdown formatting for all key terms
3. Structure with bullets or sections
4. End with an engaging hook

CONTEXT FROM KNOWLEDGE BASE:
%[2]s`, owner, ContextPlaceholder)
}

// DefaultFewShot returns the fixed example exchange inserted before the
// conversation to bias the model toward markdown output.
func DefaultFewShot() []llm.Message {
	return []llm.Message{
		{
			Role:    llm.RoleUser,
			Content: "What are their skills?",
		},
		{
			Role: llm.RoleAssistant,
			Content: "A **full-stack developer** through and through! ⚡\n\n" +
				"They master `Go`, `TypeScript`, `Python`, and `React`.\n\n" +
				"- **Frontend**: `Tailwind CSS`, `Framer Motion`\n" +
				"- **Backend**: `PostgreSQL`, `Redis`, `gRPC`\n" +
				"- **AI/ML**: `OpenAI API`, vector search\n\n" +
				"*Company-level work* from a personal portfolio! 🎨",
		},
	}
}

// FormatContext joins ranked records as "[topic] text" blocks separated by
// a blank line, in the given order. Empty input yields an empty string.
func FormatContext(records []knowledge.ScoredRecord) string {
	parts := make([]string, len(records))
	for i, rec := range records {
		parts[i] = fmt.Sprintf("[%s] %s", rec.Topic, rec.Text)
	}
	return strings.Join(parts, "\n\n")
}

// BuildMessages produces the ordered message sequence for the chat model:
// the system turn with contextString interpolated into systemTemplate, the
// few-shot turns verbatim, the last historyWindow turns of history
// (oldest-first), then the user turn. userText must be non-empty.
func BuildMessages(systemTemplate, contextString string, fewShot, history []llm.Message, userText string, historyWindow int) ([]llm.Message, error) {
	if userText == "" {
		return nil, fmt.Errorf("user text must not be empty")
	}

	recent := history
	if historyWindow < 0 {
		historyWindow = 0
	}
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	messages := make([]llm.Message, 0, 2+len(fewShot)+len(recent))
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: strings.ReplaceAll(systemTemplate, ContextPlaceholder, contextString),
	})
	messages = append(messages, fewShot...)
	messages = append(messages, recent...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: userText,
	})

	return messages, nil
}
