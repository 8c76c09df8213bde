package services

import (
	"chat-sync/domain/chat"
	"chat-sync/runtime"
	"context"
	"log/slog"
)

type IGroupRegistry interface {
	ObserveGroups() (*runtime.Subscription[chat.Group], error)
	CreateGroup(ctx context.Context, name string) (chat.Group, error)
}

// GroupRegistry exposes the list of groups, the children of the root.
type GroupRegistry struct {
	log    *slog.Logger
	engine *runtime.SyncEngine[chat.Group]
}

func NewGroupRegistry(log *slog.Logger, engine *runtime.SyncEngine[chat.Group]) *GroupRegistry {
	return &GroupRegistry{log: log, engine: engine}
}

// ObserveGroups streams the full group list, ordered by name.
func (r *GroupRegistry) ObserveGroups() (*runtime.Subscription[chat.Group], error) {
	return r.engine.Subscribe(chat.Root, chat.DecodeGroup)
}

// CreateGroup writes the group leaf. Creating an existing group again
// changes nothing, its messages are kept.
func (r *GroupRegistry) CreateGroup(ctx context.Context, name string) (chat.Group, error) {
	path, err := chat.GroupPath(name)
	if err != nil {
		return chat.Group{}, err
	}
	if err = r.engine.Write(ctx, path, name); err != nil {
		return chat.Group{}, err
	}
	r.log.Info("Group created", "group", name)
	return chat.Group{Name: name}, nil
}
