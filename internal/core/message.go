package core

import "time"

// ChatMessage is a broadcast text message. Sender is a snapshot taken when
// the message was built, so later renames do not alter it.
type ChatMessage struct {
	Sender    Identity
	Timestamp time.Time
	Text      string
}

// NewChatMessage stamps a message with the current time.
func NewChatMessage(sender Identity, text string) ChatMessage {
	return ChatMessage{
		Sender:    sender,
		Timestamp: time.Now(),
		Text:      text,
	}
}
