package services

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/runtime"
	"context"
	"log/slog"
	"strings"
	"time"
)

type IMessageLog interface {
	ObserveMessages(groupName string) (*runtime.Subscription[chat.Message], error)
	SendMessage(ctx context.Context, text, groupName, senderID string) (chat.Message, error)
}

// MessageLog is the append-only message list of each group.
type MessageLog struct {
	log    *slog.Logger
	engine *runtime.SyncEngine[chat.Message]
	now    func() time.Time
}

func NewMessageLog(log *slog.Logger, engine *runtime.SyncEngine[chat.Message], now func() time.Time) *MessageLog {
	if now == nil {
		now = time.Now
	}
	return &MessageLog{log: log, engine: engine, now: now}
}

// ObserveMessages streams the messages of a group in push key order,
// which is send order. Children that are not messages are skipped.
func (l *MessageLog) ObserveMessages(groupName string) (*runtime.Subscription[chat.Message], error) {
	path, err := chat.GroupPath(groupName)
	if err != nil {
		return nil, err
	}
	return l.engine.Subscribe(path, chat.DecodeMessage)
}

// SendMessage appends a message stamped with the local clock.
func (l *MessageLog) SendMessage(ctx context.Context, text, groupName, senderID string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, errors.ErrEmptyMessage
	}
	if senderID == "" {
		return chat.Message{}, errors.ErrEmptySender
	}
	path, err := chat.GroupPath(groupName)
	if err != nil {
		return chat.Message{}, err
	}

	message := chat.NewMessage(senderID, text, l.now())
	key, err := l.engine.Append(ctx, path, message.Value())
	if err != nil {
		return chat.Message{}, err
	}
	l.log.Debug("Message sent", "group", groupName, "key", key, "sender", senderID)
	return message, nil
}
