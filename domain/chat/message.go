// Package chat contains the core concepts of the group chat.
// Groups and messages are disposable projections of the store: they are
// rebuilt from raw nodes on every sync and never mutated afterwards.
package chat

import (
	"chat-sync/errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	fieldSenderID  = "senderId"
	fieldText      = "text"
	fieldTimestamp = "timestamp"
)

var validate = validator.New()

// Message represents an immutable chat message.
// Timestamp is in milliseconds since epoch, taken on the sender's clock.
type Message struct {
	SenderID  string `validate:"required"`
	Text      string `validate:"required"`
	Timestamp int64  `validate:"gt=0"`
}

func NewMessage(senderID, text string, at time.Time) Message {
	return Message{SenderID: senderID, Text: text, Timestamp: at.UnixMilli()}
}

func (m Message) SentAt() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Value is the shape written to the store.
func (m Message) Value() map[string]any {
	return map[string]any{
		fieldSenderID:  m.SenderID,
		fieldText:      m.Text,
		fieldTimestamp: m.Timestamp,
	}
}

// DecodeMessage turns a child node into a message.
// Any shape other than a complete message record is an ErrDecode.
func DecodeMessage(node Node) (Message, error) {
	fields, ok := node.Value.(map[string]any)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s holds %T, not a record", errors.ErrDecode, node.Key, node.Value)
	}
	senderID, _ := fields[fieldSenderID].(string)
	text, _ := fields[fieldText].(string)
	timestamp, ok := toMillis(fields[fieldTimestamp])
	if !ok {
		return Message{}, fmt.Errorf("%w: %s has no usable timestamp", errors.ErrDecode, node.Key)
	}
	message := Message{SenderID: senderID, Text: text, Timestamp: timestamp}
	if err := validate.Struct(message); err != nil {
		return Message{}, fmt.Errorf("%w: %s: %v", errors.ErrDecode, node.Key, err)
	}
	return message, nil
}

// toMillis accepts the numeric types a store may hand back, JSON-like
// backends only know float64.
func toMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
