// Package projection builds local views from observed snapshots.
// Does not talk to the store or the UI directly.
package projection

import "chat-sync/domain/chat"

// Timeline turns the full message lists of successive snapshots into the
// messages a reader has not seen yet.
type Timeline struct {
	Owner    string
	Messages []chat.Message
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner}
}

// Consume replaces the timeline with messages and returns what is new.
// Messages are only ever appended to a group, so a list sharing the known
// prefix only adds its tail. Anything else is a different history and is
// returned whole.
func (t *Timeline) Consume(messages []chat.Message) []chat.Message {
	fresh := messages
	if len(messages) >= len(t.Messages) && samePrefix(t.Messages, messages) {
		fresh = messages[len(t.Messages):]
	}
	t.Messages = append([]chat.Message(nil), messages...)
	return fresh
}

// Mine tells whether message was sent by the owner of the timeline.
func (t *Timeline) Mine(message chat.Message) bool {
	return t.Owner != "" && message.SenderID == t.Owner
}

func samePrefix(prefix, messages []chat.Message) bool {
	for i := range prefix {
		if prefix[i] != messages[i] {
			return false
		}
	}
	return true
}
