package services

import "fmt"

// ChatServiceProvider defines the interface for the chat responder.
type ChatServiceProvider interface {
	Respond(identity, message string) string
}

// ChatService echoes messages back to their sender.
type ChatService struct{}

// NewChatService creates a new ChatService.
func NewChatService() *ChatService {
	return &ChatService{}
}

// Respond returns the bot reply for message sent by identity.
func (s *ChatService) Respond(identity, message string) string {
	return fmt.Sprintf("Echo from bot to %s: %s", identity, message)
}
