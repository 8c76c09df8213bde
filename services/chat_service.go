package services

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/runtime"
	"context"
	"fmt"
)

type IChatService interface {
	SignIn(ctx context.Context) (string, error)
	CurrentUserID() (string, bool)
	SignOut()
	Groups() (*runtime.Subscription[chat.Group], error)
	CreateGroup(ctx context.Context, name string) (chat.Group, error)
	Messages(groupName string) (*runtime.Subscription[chat.Message], error)
	Send(ctx context.Context, groupName, text string) (chat.Message, error)
}

// ChatService is what a screen talks to: the signed-in user, the groups
// and the messages of one group.
type ChatService struct {
	auth     contract.Authenticator
	groups   IGroupRegistry
	messages IMessageLog
}

func NewChatService(auth contract.Authenticator, groups IGroupRegistry, messages IMessageLog) *ChatService {
	return &ChatService{auth: auth, groups: groups, messages: messages}
}

func (s *ChatService) SignIn(ctx context.Context) (string, error) {
	return s.auth.SignInAnonymously(ctx)
}

func (s *ChatService) CurrentUserID() (string, bool) {
	return s.auth.CurrentUserID()
}

func (s *ChatService) SignOut() {
	s.auth.SignOut()
}

func (s *ChatService) Groups() (*runtime.Subscription[chat.Group], error) {
	return s.groups.ObserveGroups()
}

func (s *ChatService) CreateGroup(ctx context.Context, name string) (chat.Group, error) {
	return s.groups.CreateGroup(ctx, name)
}

func (s *ChatService) Messages(groupName string) (*runtime.Subscription[chat.Message], error) {
	return s.messages.ObserveMessages(groupName)
}

// Send posts text to the group as the signed-in user.
func (s *ChatService) Send(ctx context.Context, groupName, text string) (chat.Message, error) {
	userID, ok := s.auth.CurrentUserID()
	if !ok {
		return chat.Message{}, fmt.Errorf("%w: cannot send to %s", errors.ErrNotSignedIn, groupName)
	}
	return s.messages.SendMessage(ctx, text, groupName, userID)
}
