package chat

import (
	"chat-sync/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath_Child_From_Root(t *testing.T) {
	req := require.New(t)

	group, err := Root.Child("general")
	req.NoError(err)
	req.Equal(Path("general"), group)
	req.Equal("/general", group.String())

	message, err := group.Child("01HZX")
	req.NoError(err)
	req.Equal("/general/01HZX", message.String())
	req.Equal("01HZX", message.Key())
	req.Equal([]string{"general", "01HZX"}, message.Segments())
}

func TestPath_Child_Rejects_Reserved_Keys(t *testing.T) {
	req := require.New(t)
	for _, key := range []string{"", "a/b", "a.b", "#x", "$x", "[x]", "tab\tkey", strings.Repeat("k", maxKeyBytes+1)} {
		_, err := Root.Child(key)
		req.ErrorIs(err, errors.ErrInvalidKey, "key %q", key)
	}
}

func TestPath_Contains_And_Related(t *testing.T) {
	req := require.New(t)
	general, _ := Root.Child("general")
	generalMessage, _ := general.Child("k1")
	gen, _ := Root.Child("gen")

	req.True(Root.Contains(general))
	req.True(general.Contains(general))
	req.True(general.Contains(generalMessage))
	req.False(general.Contains(gen))
	req.False(gen.Contains(generalMessage))

	// A write at the group path changes a listener on one of its messages and vice versa
	req.True(generalMessage.Related(general))
	req.True(general.Related(generalMessage))
	req.False(gen.Related(generalMessage))
}

func TestParsePath(t *testing.T) {
	req := require.New(t)

	p, err := ParsePath("/general/k1")
	req.NoError(err)
	req.Equal(Path("general/k1"), p)

	root, err := ParsePath("/")
	req.NoError(err)
	req.True(root.IsRoot())

	_, err = ParsePath("/general//k1")
	req.ErrorIs(err, errors.ErrInvalidKey)
}

func TestGroupPath(t *testing.T) {
	req := require.New(t)

	_, err := GroupPath("   ")
	req.ErrorIs(err, errors.ErrEmptyGroupName)

	_, err = GroupPath("team.dev")
	req.ErrorIs(err, errors.ErrInvalidKey)

	p, err := GroupPath("general")
	req.NoError(err)
	req.Equal("/general", p.String())
}
