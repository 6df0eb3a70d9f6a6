// Package guide is the stateful decode-time cursor over an Index: it
// tracks the current automaton state and exposes exactly the tokens
// legal to emit next.
package guide

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmorganca/outlines/index"
	"github.com/jmorganca/outlines/logutil"
)

// ErrInvalidTransition is returned by Advance when tokenID is not
// among the tokens AllowedTokens currently returns. The Guide's state
// is left unchanged.
var ErrInvalidTransition = errors.New("guide: invalid transition")

// Guide walks an Index one vocabulary token at a time, enforcing that
// only legal continuations are ever applied.
type Guide struct {
	idx     *index.Index
	state   index.StateId
	session uuid.UUID
}

// New returns a Guide positioned at idx's initial state.
func New(idx *index.Index) *Guide {
	g := &Guide{idx: idx, state: idx.InitialState(), session: uuid.New()}
	logutil.Trace("guide: started", "session", g.session, "state", g.state)
	return g
}

// CurrentState returns the Guide's current automaton state.
func (g *Guide) CurrentState() index.StateId { return g.state }

// AllowedTokens returns the tokens legal to emit next. At the Index's
// terminal state, decoding is already complete and the only legal
// continuation is EOS itself, so AllowedTokens reports the
// single-element sequence [eos_id] rather than the empty set
// Index.AllowedTokens returns for that same state.
func (g *Guide) AllowedTokens() []index.TokenId {
	if g.idx.IsTerminalState(g.state) {
		return []index.TokenId{g.idx.EOSTokenID()}
	}
	allowed, ok := g.idx.AllowedTokens(g.state)
	if !ok {
		return nil
	}
	return allowed
}

// Advance applies tokenID, moving the Guide to the resulting state and
// returning the new set of allowed tokens. If tokenID is not legal
// from the current state, the Guide's state is left unchanged and
// ErrInvalidTransition is returned.
func (g *Guide) Advance(tokenID index.TokenId) ([]index.TokenId, error) {
	if g.idx.IsTerminalState(g.state) && tokenID == g.idx.EOSTokenID() {
		return g.AllowedTokens(), nil
	}
	next, ok := g.idx.NextState(g.state, tokenID)
	if !ok {
		return nil, fmt.Errorf("%w: token %d from state %d", ErrInvalidTransition, tokenID, g.state)
	}
	g.state = next
	logutil.Trace("guide: advanced", "session", g.session, "token", tokenID, "state", g.state)
	return g.AllowedTokens(), nil
}

// IsFinished reports whether the Guide has consumed EOS and reached
// the Index's terminal state.
func (g *Guide) IsFinished() bool {
	return g.idx.IsTerminalState(g.state)
}

// Equal reports whether g and other are positioned at the same state
// of the same Index.
func (g *Guide) Equal(other *Guide) bool {
	return other != nil && g.idx == other.idx && g.state == other.state
}
