package model

import (
	"fmt"
	"time"
)

// Database key prefixes for community entities.
const (
	PrefixChatMessage = "chat"
	PrefixQuestion    = "question"
)

// ChatMessage is a single entry in the general chat feed.
type ChatMessage struct {
	Key       string    `json:"key"`
	ID        string    `json:"id"`
	Author    string    `json:"author" validate:"required,max=100"`
	Message   string    `json:"message" validate:"required,max=2000"`
	Timestamp time.Time `json:"timestamp"`
}

// SetKey sets the database key for this message.
func (m *ChatMessage) SetKey(key string) {
	m.Key = key
}

// GetKey returns the database key for this message.
func (m *ChatMessage) GetKey() string {
	return m.Key
}

// GenerateChatKey generates a database key for a chat message.
func GenerateChatKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixChatMessage, id)
}

// Question is an attendee question with a reply counter.
type Question struct {
	Key         string    `json:"key"`
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author"`
	Replies     int       `json:"replies"`
	Timestamp   time.Time `json:"timestamp"`
}

// SetKey sets the database key for this question.
func (q *Question) SetKey(key string) {
	q.Key = key
}

// GetKey returns the database key for this question.
func (q *Question) GetKey() string {
	return q.Key
}

// GenerateQuestionKey generates a database key for a question.
func GenerateQuestionKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixQuestion, id)
}
