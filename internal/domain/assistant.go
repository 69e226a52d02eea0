package domain

// Chat types for the scripted assistant endpoint.

// ChatRequest is the body of POST /v1/assistant.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatReply is one canned response with follow-up suggestion chips.
type ChatReply struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Intent      string   `json:"intent"`
}

// ChatResponse wraps a reply with conversation bookkeeping.
type ChatResponse struct {
	ConversationID string    `json:"conversationId"`
	Reply          ChatReply `json:"reply"`
	Timestamp      string    `json:"timestamp"`
}
