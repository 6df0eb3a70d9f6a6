// Package automaton compiles a regex into a deterministic,
// byte-oriented, total finite-state automaton: parsing into a
// Thompson NFA (nfa.go), subset-constructing a rune-range DFA
// (runedfa.go), then expanding every rune-range edge into its UTF-8
// byte encoding (utf8ranges.go) so the resulting DFA transitions one
// byte at a time, exactly as spec.md §4.3 requires for multi-byte
// vocabulary tokens.
package automaton

import (
	"errors"
	"fmt"
)

// ErrRegexCompile is returned when pattern cannot be parsed into an
// automaton.
var ErrRegexCompile = errors.New("automaton: regex compile error")

// State identifies a DFA state. It fits in 32 bits, matching the
// StateId contract in spec.md §3.
type State = uint32

// DFA is a complete, byte-oriented deterministic finite-state
// automaton: Delta is defined for every (state, byte) pair, returning
// the reserved Dead state when the input drives the DFA outside the
// regular language.
type DFA struct {
	trans     [][256]State
	accepting []bool
	initial   State
	dead      State
}

// Compile parses pattern and builds its byte-oriented DFA.
func Compile(pattern string) (*DFA, error) {
	n, err := buildNFA(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegexCompile, err)
	}
	rd := determinize(n)
	return compileBytes(rd), nil
}

// Delta returns the state reached from state on input byte b. It is
// always defined (total): if the move is illegal, it returns
// d.Dead().
func (d *DFA) Delta(state State, b byte) State {
	return d.trans[state][b]
}

// Initial returns the DFA's start state.
func (d *DFA) Initial() State { return d.initial }

// Dead returns the automaton's sentinel dead state: once entered, it
// is never left (Invariant D in spec.md §3: no transition leads
// anywhere else from it).
func (d *DFA) Dead() State { return d.dead }

// IsDead reports whether state is the dead state.
func (d *DFA) IsDead(state State) bool { return state == d.dead }

// IsAccepting reports whether state is one from which the regex's
// language has been fully matched (EOS would be legal there).
func (d *DFA) IsAccepting(state State) bool {
	return state != d.dead && d.accepting[state]
}

// NumStates returns the number of states in the compiled automaton,
// including the dead state.
func (d *DFA) NumStates() int { return len(d.trans) }

// compileBytes expands a rune-range DFA into a total byte-level DFA.
// Every rune-DFA state becomes a byte-level "codepoint boundary"
// state; every rune-range edge becomes a chain of fresh continuation
// states carrying the UTF-8 byte-range sequences that encode it
// (utf8Sequences). The chains are not shared across edges, trading a
// larger state count for a simple, obviously-correct construction —
// acceptable since schema-derived regexes are small.
func compileBytes(rd *runeDFA) *DFA {
	d := &DFA{}
	// index 0 is reserved for the dead state so every unset [256]State
	// entry (the Go zero value) already points at it.
	d.trans = append(d.trans, [256]State{})
	d.accepting = append(d.accepting, false)
	d.dead = 0

	boundary := make([]State, len(rd.states))
	newState := func(accepting bool) State {
		id := State(len(d.trans))
		d.trans = append(d.trans, [256]State{})
		d.accepting = append(d.accepting, accepting)
		for b := 0; b < 256; b++ {
			d.trans[id][b] = d.dead
		}
		return id
	}
	for i, s := range rd.states {
		boundary[i] = newState(s.accepting)
	}
	d.initial = boundary[0]

	for i, s := range rd.states {
		from := boundary[i]
		for _, e := range s.edges {
			to := boundary[e.target]
			for _, seq := range utf8Sequences(e.lower, e.upper) {
				wireSequence(d, from, seq, to)
			}
		}
	}
	return d
}

// wireSequence builds a fresh chain of continuation states realizing
// seq (one byteRange per UTF-8 byte position) from `from` to `to`.
func wireSequence(d *DFA, from State, seq []byteRange, to State) {
	cur := from
	for i, br := range seq {
		var next State
		if i == len(seq)-1 {
			next = to
		} else {
			next = State(len(d.trans))
			d.trans = append(d.trans, [256]State{})
			d.accepting = append(d.accepting, false)
			for b := 0; b < 256; b++ {
				d.trans[next][b] = d.dead
			}
		}
		for b := int(br.lo); b <= int(br.hi); b++ {
			d.trans[cur][b] = next
		}
		cur = next
	}
}
