package services

import (
	"strings"

	types "github.com/yungbote/neurochat-backend/internal/domain"
)

const DefaultSystemInstruction = "You are a helpful assistant. Keep responses concise and friendly. Use markdown when appropriate."

// BuildPrompt renders the system line, a blank line and then the history in order,
// one "Role: content" line per message.
func BuildPrompt(system string, history []*types.Message) string {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemInstruction
	}
	lines := make([]string, 0, len(history)+2)
	lines = append(lines, "System: "+system, "")
	for _, m := range history {
		if m == nil {
			continue
		}
		lines = append(lines, roleLabel(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func roleLabel(role string) string {
	switch role {
	case types.RoleUser:
		return "User"
	case types.RoleAssistant:
		return "Assistant"
	default:
		if role == "" {
			return "Unknown"
		}
		return strings.ToUpper(role[:1]) + role[1:]
	}
}
