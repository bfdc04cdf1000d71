package chat

// Role tags the originator of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn. Values are copied, never mutated in place.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds the per-request instruction turn.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant turn.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// History is the ordered list of stored turns for one session.
type History []Message

// Append returns a new history with msg added at the end. The receiver is left untouched.
func (h History) Append(msg Message) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)
	return append(next, msg)
}

// Tail returns a copy of the last n turns in chronological order.
func (h History) Tail(n int) History {
	if n <= 0 || len(h) == 0 {
		return History{}
	}

	start := 0
	if len(h) > n {
		start = len(h) - n
	}

	tail := make(History, len(h)-start)
	copy(tail, h[start:])
	return tail
}

// Clone returns a copy of the history.
func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	copied := make(History, len(h))
	copy(copied, h)
	return copied
}
