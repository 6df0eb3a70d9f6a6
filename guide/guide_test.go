package guide

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmorganca/outlines/automaton"
	"github.com/jmorganca/outlines/index"
	"github.com/jmorganca/outlines/vocabulary"
)

func buildIndex(t *testing.T, pattern string, tokens map[string][]vocabulary.TokenID, eos vocabulary.TokenID) *index.Index {
	t.Helper()
	d, err := automaton.Compile(pattern)
	require.NoError(t, err)
	v, err := vocabulary.New(eos, tokens)
	require.NoError(t, err)
	idx, err := index.New(context.Background(), d, v)
	require.NoError(t, err)
	return idx
}

func TestGuideWalksToCompletion(t *testing.T) {
	const eos = vocabulary.TokenID(999)
	idx := buildIndex(t, "true|false", map[string][]vocabulary.TokenID{
		"tr": {1}, "ue": {2}, "false": {3},
	}, eos)

	g := New(idx)
	require.False(t, g.IsFinished())
	require.ElementsMatch(t, []index.TokenId{1, 3}, g.AllowedTokens())

	allowed, err := g.Advance(1) // "tr"
	require.NoError(t, err)
	require.ElementsMatch(t, []index.TokenId{2}, allowed)
	require.False(t, g.IsFinished())

	allowed, err = g.Advance(2) // "ue" -> "true", accepting
	require.NoError(t, err)
	require.Contains(t, allowed, eos)
	require.False(t, g.IsFinished())

	allowed, err = g.Advance(eos)
	require.NoError(t, err)
	require.True(t, g.IsFinished())
	// at the terminal state, the only legal continuation is eos itself.
	require.Equal(t, []index.TokenId{eos}, allowed)
	require.Equal(t, []index.TokenId{eos}, g.AllowedTokens())
}

func TestGuideRejectsInvalidTransition(t *testing.T) {
	const eos = vocabulary.TokenID(999)
	idx := buildIndex(t, "true|false", map[string][]vocabulary.TokenID{
		"true": {1}, "false": {2},
	}, eos)

	g := New(idx)
	before := g.CurrentState()
	_, err := g.Advance(999999)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, before, g.CurrentState())
}

func TestGuideEqual(t *testing.T) {
	const eos = vocabulary.TokenID(999)
	idx := buildIndex(t, "true|false", map[string][]vocabulary.TokenID{
		"true": {1}, "false": {2},
	}, eos)

	a := New(idx)
	b := New(idx)
	require.True(t, a.Equal(b))

	_, err := a.Advance(1)
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}
