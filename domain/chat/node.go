package chat

// Node is a raw child as reported by the store: its key and whatever value
// lives there. Leaves carry scalars or maps, inner nodes carry a map of their
// own children.
type Node struct {
	Key   string
	Value any
}
