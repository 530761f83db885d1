package livechat

import "time"

const (
	SenderUser  = "user"
	SenderAgent = "agent"

	TypeText        = "text"
	TypeQuickAction = "quick-action"
)

// Message is one line of a chat transcript.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type,omitempty"`
	Topic     string    `json:"topic,omitempty"`
}

// InboundFrame is what the widget sends over the socket.
type InboundFrame struct {
	Type   string `json:"type"` // "message", "quick_action", "ping"
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
}

// OutboundFrame is what the server sends to the widget.
type OutboundFrame struct {
	Type         string        `json:"type"` // "session", "history", "typing", "message", "action", "pong", "error"
	SessionID    string        `json:"session_id,omitempty"`
	Message      *Message      `json:"message,omitempty"`
	Messages     []Message     `json:"messages,omitempty"`
	QuickActions []QuickAction `json:"quick_actions,omitempty"`
	Action       *QuickAction  `json:"action,omitempty"`
	Error        string        `json:"error,omitempty"`
}
