package chat

import (
	"chat-sync/errors"
	"fmt"
	"strings"
)

// Group is a chat group. Its name is both the display name and the child key
// under the root namespace.
type Group struct {
	Name string
}

// DecodeGroup derives a group from the child key only, any stored value is ignored.
func DecodeGroup(node Node) (Group, error) {
	if node.Key == "" {
		return Group{}, fmt.Errorf("%w: group without key", errors.ErrDecode)
	}
	return Group{Name: node.Key}, nil
}

// GroupPath validates name and returns where the group lives.
func GroupPath(name string) (Path, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.ErrEmptyGroupName
	}
	return Root.Child(name)
}
