package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eventlife/eventlife/internal/model"
)

// ChatRepo provides operations for general-chat messages.
type ChatRepo struct {
	db *DB
}

// NewChatRepo creates a new chat repository.
func NewChatRepo(db *DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// Post stores a new chat message.
func (r *ChatRepo) Post(msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Key == "" {
		msg.Key = model.GenerateChatKey(msg.ID)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return r.db.Set(msg)
}

// List returns all messages in chronological order.
func (r *ChatRepo) List() ([]*model.ChatMessage, error) {
	var msgs []*model.ChatMessage
	err := r.db.ForEach(model.PrefixChatMessage+":",
		func() model.Model { return &model.ChatMessage{} },
		func(m model.Model) error {
			msgs = append(msgs, m.(*model.ChatMessage))
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

// Delete removes a message by ID.
func (r *ChatRepo) Delete(id string) error {
	return r.db.Delete(model.GenerateChatKey(id))
}
