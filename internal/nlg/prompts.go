package nlg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/omnichat/orchestrator/internal/domain"
)

// systemPrompt frames every reply request.
const systemPrompt = "You are a helpful retail shopping assistant for an omnichannel fashion store. " +
	"Answer concisely, stay factual to the provided result data, and keep a warm tone."

// BuildReplyPrompt assembles the prompt for composing the user-facing reply
// from a handler result. Recent messages ground the reply in conversation
// history; the result payload is attached verbatim as JSON.
func BuildReplyPrompt(intent domain.Intent, userMessage string, result any, history []domain.Message) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Customer message: %s\n", userMessage)
	fmt.Fprintf(&b, "Detected intent: %s\n", intent)

	if result != nil {
		if data, err := json.Marshal(result); err == nil {
			fmt.Fprintf(&b, "Handler result: %s\n", data)
		}
	}

	b.WriteString("\nWrite the reply to the customer.")
	return b.String()
}
