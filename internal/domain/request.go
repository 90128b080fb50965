package domain

import "time"

// ChatRequest is the inbound message contract consumed from the API layer.
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID string  `json:"session_id,omitempty"`
	UserID    string  `json:"user_id,omitempty"`
	Channel   Channel `json:"channel,omitempty"`
}

// ChatResponse is the structured envelope returned for every handled message.
type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Intent    Intent    `json:"intent"`
	Reply     string    `json:"reply"`
	Result    any       `json:"result"`
	Channel   Channel   `json:"channel"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatEvent is published to live listeners of a session when the assistant
// replies.
type ChatEvent struct {
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent"`
	Result    any       `json:"result,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
