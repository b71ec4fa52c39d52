package constant

const (
	ChatTurnRoleUser      = "user"
	ChatTurnRoleAssistant = "assistant"

	SessionStatusActive   = "active"
	SessionStatusArchived = "archived"
)

// FallbackAnswer is shown to the student when generation fails.
// Raw internal errors must never reach the caller.
const FallbackAnswer = "I had trouble understanding your question. Could you try rephrasing it? " +
	"For example: 'What is a matrix?' or 'Explain this concept to me.'"
