package chat

import (
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/domain/session"
)

const promptInstruction = `You are a helpful AI assistant.

STRICT RULES:
- Answer ONLY from provided context
- Chat history is only for continuity
- If answer not found -> say 'I don't know'`

const noHistoryPlaceholder = "No prior history."

// BuildPrompt assembles the grounded prompt from four fixed, ordered blocks:
// the grounding instruction, the retrieved context, the chat history, and the
// user question. Size is bounded by the upstream caps (top-k chunks, bounded
// history); no token-counting truncation happens here.
func BuildPrompt(question string, matches []corpus.Match, history []session.Message) string {
	var b strings.Builder
	b.WriteString(promptInstruction)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(formatContext(matches))
	b.WriteString("\n\nCHAT HISTORY:\n")
	b.WriteString(formatHistory(history))
	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nANSWER:")
	return b.String()
}

// formatContext concatenates matched chunk texts in search order.
func formatContext(matches []corpus.Match) string {
	texts := make([]string, len(matches))
	for i := range matches {
		c := matches[i].Entry().Chunk()
		texts[i] = c.Text()
	}
	return strings.Join(texts, "\n\n")
}

// formatHistory renders prior messages oldest-to-newest with role labels.
func formatHistory(history []session.Message) string {
	if len(history) == 0 {
		return noHistoryPlaceholder
	}

	lines := make([]string, 0, len(history))
	for i := range history {
		content := strings.TrimSpace(history[i].Content())
		if content == "" {
			continue
		}
		speaker := "User"
		if history[i].Role() == session.RoleAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, speaker+": "+content)
	}
	if len(lines) == 0 {
		return noHistoryPlaceholder
	}
	return strings.Join(lines, "\n")
}
