package chat

import (
	"chat-sync/errors"
	"fmt"
	"strings"
)

// maxKeyBytes mirrors the key length limit of hierarchical realtime stores.
const maxKeyBytes = 768

const reservedKeyChars = "/.#$[]"

// Path addresses a node in the store namespace.
// Segments are joined with "/" and the empty path is the root.
type Path string

// Root is the namespace holding one child per chat group.
const Root Path = ""

// ValidateKey rejects keys that would collide with the namespace structure.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", errors.ErrInvalidKey)
	}
	if len(key) > maxKeyBytes {
		return fmt.Errorf("%w: key longer than %d bytes", errors.ErrInvalidKey, maxKeyBytes)
	}
	if strings.ContainsAny(key, reservedKeyChars) {
		return fmt.Errorf("%w: %q contains one of %q", errors.ErrInvalidKey, key, reservedKeyChars)
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains a control character", errors.ErrInvalidKey, key)
		}
	}
	return nil
}

// Child returns the path of the child named key.
func (p Path) Child(key string) (Path, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if p.IsRoot() {
		return Path(key), nil
	}
	return Path(string(p) + "/" + key), nil
}

// ParsePath accepts "/a/b", "a/b" or "/" and validates every segment.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return Root, nil
	}
	p := Root
	for _, segment := range strings.Split(trimmed, "/") {
		child, err := p.Child(segment)
		if err != nil {
			return "", err
		}
		p = child
	}
	return p, nil
}

func (p Path) IsRoot() bool { return p == Root }

// Segments returns the keys from the root down to p.
func (p Path) Segments() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Key is the last segment, empty for the root.
func (p Path) Key() string {
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return string(p)[i+1:]
	}
	return string(p)
}

// Contains reports whether other is p itself or lies below p.
func (p Path) Contains(other Path) bool {
	if p.IsRoot() || p == other {
		return true
	}
	return strings.HasPrefix(string(other), string(p)+"/")
}

// Related reports whether a write at one path changes the subtree of the other.
func (p Path) Related(other Path) bool {
	return p.Contains(other) || other.Contains(p)
}

func (p Path) String() string {
	return "/" + string(p)
}
