// internal/workers/conversation/chat-relay/models.go
package chatrelay

const MessageTypeUnstructured = "unstructured"

// ChatRequest is the chat frontend's message envelope.
type ChatRequest struct {
	SessionID string        `json:"sessionId,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Type         string           `json:"type"`
	Unstructured UnstructuredText `json:"unstructured"`
}

type UnstructuredText struct {
	Text string `json:"text"`
}

// ChatResponse carries the single reply back to the frontend.
type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
}

func newChatResponse(text string) ChatResponse {
	return ChatResponse{
		Messages: []ChatMessage{{
			Type:         MessageTypeUnstructured,
			Unstructured: UnstructuredText{Text: text},
		}},
	}
}

// text returns the first message's text, or "" when there is none.
func (r *ChatRequest) text() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].Unstructured.Text
}
