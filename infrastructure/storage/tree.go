package storage

import (
	"chat-sync/domain/chat"
	"sort"
)

// tree is the hierarchical view of the namespace. A node may hold a value
// and children at the same time: writing a group leaf never wipes its
// messages. When children exist they win, as in realtime stores where an
// object replaces a scalar.
type tree struct {
	value    any
	hasValue bool
	children map[string]*tree
}

func newTree() *tree {
	return &tree{children: make(map[string]*tree)}
}

func (t *tree) set(segments []string, value any) {
	node := t
	for _, segment := range segments {
		child, ok := node.children[segment]
		if !ok {
			child = newTree()
			node.children[segment] = child
		}
		node = child
	}
	node.value = cloneValue(value)
	node.hasValue = true
}

func (t *tree) lookup(segments []string) *tree {
	node := t
	for _, segment := range segments {
		child, ok := node.children[segment]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// childNodes lists the direct children ordered by key. Values are copies.
func (t *tree) childNodes() []chat.Node {
	keys := make([]string, 0, len(t.children))
	for key := range t.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	nodes := make([]chat.Node, 0, len(keys))
	for _, key := range keys {
		nodes = append(nodes, chat.Node{Key: key, Value: t.children[key].export()})
	}
	return nodes
}

func (t *tree) export() any {
	if len(t.children) == 0 {
		return cloneValue(t.value)
	}
	res := make(map[string]any, len(t.children))
	for key, child := range t.children {
		res[key] = child.export()
	}
	return res
}

// cloneValue deep copies the containers a value can be made of so that
// neither writers nor readers share memory with the store.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		res := make(map[string]any, len(v))
		for key, item := range v {
			res[key] = cloneValue(item)
		}
		return res
	case map[string]string:
		res := make(map[string]any, len(v))
		for key, item := range v {
			res[key] = item
		}
		return res
	case []any:
		res := make([]any, len(v))
		for i, item := range v {
			res[i] = cloneValue(item)
		}
		return res
	default:
		return v
	}
}
