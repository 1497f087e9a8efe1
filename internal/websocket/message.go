package websocket

import "encoding/json"

// Actions understood on the chat socket.
const (
	ActionChat         = "chat"
	ActionChatResponse = "chat_response"
	ActionError        = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChatPayload is the payload of an inbound chat message.
type ChatPayload struct {
	Message string `json:"message"`
}

// ChatResponsePayload is the payload of a bot reply.
type ChatResponsePayload struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

// NewChatResponseMessage encodes a bot reply for user.
func NewChatResponseMessage(user, response string) []byte {
	return encode(ActionChatResponse, ChatResponsePayload{User: user, Response: response})
}

// NewErrorMessage encodes an error frame.
func NewErrorMessage(message string) []byte {
	return encode(ActionError, map[string]string{"message": message})
}

func encode(action string, payload interface{}) []byte {
	raw, _ := json.Marshal(payload)
	out, _ := json.Marshal(Message{Action: action, Payload: raw})
	return out
}
