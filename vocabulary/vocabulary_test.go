package vocabulary

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEOSClash(t *testing.T) {
	_, err := New(5, map[string][]TokenID{"x": {5}})
	require.ErrorIs(t, err, ErrEOSTokenClash)
}

func TestNewBuildsBidirectionalMap(t *testing.T) {
	v, err := New(9, map[string][]TokenID{"a": {0}, "b": {1, 2}})
	require.NoError(t, err)
	require.Equal(t, TokenID(9), v.EOSTokenID())
	require.Equal(t, 3, v.Len())

	ids, ok := v.Get("b")
	require.True(t, ok)
	require.Equal(t, []TokenID{1, 2}, ids)

	_, ok = v.Get("missing")
	require.False(t, ok)
}

func TestInsertPreservesOrderAndRejectsEOS(t *testing.T) {
	v, err := New(9, nil)
	require.NoError(t, err)

	require.NoError(t, v.Insert("a", 0))
	require.NoError(t, v.Insert("a", 1))
	ids, _ := v.Get("a")
	require.Equal(t, []TokenID{0, 1}, ids)

	require.ErrorIs(t, v.Insert("a", 9), ErrEOSTokenClash)
}

func TestRemoveIsNoopOnMissing(t *testing.T) {
	v, err := New(9, map[string][]TokenID{"a": {0}})
	require.NoError(t, err)

	v.Remove("does-not-exist")
	_, ok := v.Get("a")
	require.True(t, ok)

	v.Remove("a")
	_, ok = v.Get("a")
	require.False(t, ok)
}

func TestSnapshotIndependentOfMutation(t *testing.T) {
	v, err := New(9, map[string][]TokenID{"a": {0}})
	require.NoError(t, err)

	snap := v.Snapshot()
	require.NoError(t, v.Insert("b", 1))
	v.Remove("a")

	_, ok := snap.Get("a")
	require.True(t, ok, "snapshot must not see later removal")
	_, ok = snap.Get("b")
	require.False(t, ok, "snapshot must not see later insertion")
}

func TestEqualIsStructural(t *testing.T) {
	a, _ := New(9, map[string][]TokenID{"a": {0}, "b": {1}})
	b, _ := New(9, map[string][]TokenID{"b": {1}, "a": {0}})
	c, _ := New(9, map[string][]TokenID{"a": {0}})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestFromPretrainedDecodesVocabAndEOS(t *testing.T) {
	payload := map[string]any{
		"added_tokens": []map[string]any{
			{"id": 99, "content": "<|endoftext|>", "special": true},
		},
		"model": map[string]any{
			"vocab": map[string]any{
				"hello": 0,
				"world": 1,
			},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	v, err := FromPretrained(context.Background(), "some/model", "main",
		WithFetcher(func(ctx context.Context, model, revision string) ([]byte, error) {
			require.Equal(t, "some/model", model)
			require.Equal(t, "main", revision)
			return raw, nil
		}),
	)
	require.NoError(t, err)
	require.Equal(t, TokenID(99), v.EOSTokenID())
	ids, ok := v.Get("hello")
	require.True(t, ok)
	require.Equal(t, []TokenID{0}, ids)
}

func TestFromPretrainedRequiresFetcher(t *testing.T) {
	_, err := FromPretrained(context.Background(), "m", "r")
	require.Error(t, err)
}
