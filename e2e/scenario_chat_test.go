package e2e

import (
	"chat-sync/domain/chat"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseSyncSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestConversationSurvivesRestart() {
	dir := s.Config.BadgerDir
	if dir == "" {
		dir = s.T().TempDir()
	}
	node := s.OpenNode(dir)
	service := node.Service
	var alice string

	s.Step("Sign in", func(ctx context.Context) {
		var err error
		alice, err = service.SignIn(ctx)
		s.Require().NoError(err)
		s.Require().NotEmpty(alice)
	})

	s.Step("Create a group", func(ctx context.Context) {
		groups, err := service.Groups()
		s.Require().NoError(err)
		defer groups.Close()

		_, err = service.CreateGroup(ctx, "general")
		s.Require().NoError(err)

		got := Await(&s.BaseSyncSuite, ctx, groups, func(items []chat.Group) bool { return len(items) > 0 })
		s.Equal([]chat.Group{{Name: "general"}}, got)
	})

	s.Step("Two observers follow the conversation", func(ctx context.Context) {
		first, err := service.Messages("general")
		s.Require().NoError(err)
		defer first.Close()
		second, err := service.Messages("general")
		s.Require().NoError(err)
		defer second.Close()
		s.Equal(1, node.Store.Listeners())

		_, err = service.Send(ctx, "general", "  hi there  ")
		s.Require().NoError(err)

		nonEmpty := func(items []chat.Message) bool { return len(items) > 0 }
		got := Await(&s.BaseSyncSuite, ctx, first, nonEmpty)
		s.Equal(got, Await(&s.BaseSyncSuite, ctx, second, nonEmpty))
		s.Require().Len(got, 1)
		s.Equal(alice, got[0].SenderID)
		s.Equal("hi there", got[0].Text)
	})

	s.Step("Listeners are released", func(ctx context.Context) {
		s.Zero(node.Store.Listeners())
	})

	node.Close()

	s.Step("History is still there after a restart", func(ctx context.Context) {
		node = s.OpenNode(dir)
		defer node.Close()

		messages, err := node.Service.Messages("general")
		s.Require().NoError(err)
		defer messages.Close()

		got := Await(&s.BaseSyncSuite, ctx, messages, func(items []chat.Message) bool { return len(items) > 0 })
		s.Require().Len(got, 1)
		s.Equal("hi there", got[0].Text)
		s.Equal(alice, got[0].SenderID)
	})
}
