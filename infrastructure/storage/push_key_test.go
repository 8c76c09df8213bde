package storage

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushKeyGenerator_Keys_Sort_In_Creation_Order(t *testing.T) {
	req := require.New(t)
	generator := NewPushKeyGenerator()
	fixed := time.UnixMilli(1_700_000_000_000)
	generator.now = func() time.Time { return fixed }

	// When many keys are generated within the same millisecond
	keys := make([]string, 0, 100)
	for range 100 {
		key, err := generator.Next()
		req.NoError(err)
		keys = append(keys, key)
	}

	// Then they are unique and already sorted
	req.True(slices.IsSorted(keys))
	req.Len(slices.Compact(slices.Clone(keys)), len(keys))
}

func TestPushKeyGenerator_Survives_Clock_Going_Backwards(t *testing.T) {
	req := require.New(t)
	generator := NewPushKeyGenerator()
	at := time.UnixMilli(1_700_000_000_000)
	generator.now = func() time.Time { return at }

	first, err := generator.Next()
	req.NoError(err)

	// When the clock jumps one minute back
	at = at.Add(-time.Minute)
	second, err := generator.Next()
	req.NoError(err)

	// Then the order still holds
	req.Less(first, second)
}
