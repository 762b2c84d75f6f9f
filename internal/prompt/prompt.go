package prompt

import "github.com/ent0n29/genie/internal/history"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultPersona is the fixed system instruction prepended to every
// completion call. It is injected at build time and never varies per request.
const DefaultPersona = "You are a helpful assistant."

// Message is one role-tagged entry of a completion request. Messages are
// ephemeral: they are rebuilt from persisted history for every call.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assemble replays a session as the message sequence the completion backend
// expects: one system message, then a user/assistant pair per interaction in
// arrival order, then the new prompt as the final user message. The backend
// is stateless per call, so the full context is resent every time.
func Assemble(systemPrompt string, interactions []history.Interaction, newPrompt string) []Message {
	messages := make([]Message, 0, 2*len(interactions)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	for _, it := range interactions {
		messages = append(messages,
			Message{Role: RoleUser, Content: it.Prompt},
			Message{Role: RoleAssistant, Content: it.Response},
		)
	}
	messages = append(messages, Message{Role: RoleUser, Content: newPrompt})
	return messages
}
