// Package index builds and serves the token-aware transition table
// that lets a decoder walk a compiled automaton one vocabulary token
// at a time instead of one byte at a time.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/emirpasic/gods/v2/maps/treemap"
	"github.com/emirpasic/gods/v2/sets/hashset"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/jmorganca/outlines/automaton"
	"github.com/jmorganca/outlines/envconfig"
	"github.com/jmorganca/outlines/logutil"
	"github.com/jmorganca/outlines/vocabulary"
)

// StateId and TokenId alias the underlying automaton/vocabulary id
// types, named the way this package's own operations talk about them.
type (
	StateId = automaton.State
	TokenId = vocabulary.TokenID
)

// ErrEmptyIndex is returned when the vocabulary has no tokens to scan,
// or when no token reaches a non-dead state from the automaton's
// initial state and that state is not itself accepting.
var ErrEmptyIndex = errors.New("index: empty vocabulary/automaton intersection")

// ErrCancelled is returned when the context passed to New is done
// before construction finishes.
var ErrCancelled = errors.New("index: construction cancelled")

// Index is the token-aware transition table: from any reachable
// state, the set of vocabulary token ids that can be taken, and the
// state each one lands on.
type Index struct {
	trans    map[StateId]*treemap.Map[TokenId, StateId]
	final    map[StateId]bool
	initial  StateId
	terminal StateId
	eos      TokenId
}

type config struct {
	workers   int
	maxTokLen int
}

// Option configures Index construction.
type Option func(*config)

// WithWorkers overrides envconfig.IndexWorkers for a single call.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithMaxTokenLen overrides envconfig.MaxVocabularyScan for a single
// call. Zero means unbounded.
func WithMaxTokenLen(n int) Option {
	return func(c *config) { c.maxTokLen = n }
}

func defaultConfig() config {
	return config{
		workers:   envconfig.IndexWorkers,
		maxTokLen: envconfig.MaxVocabularyScan,
	}
}

// New builds the token-aware Index for dfa against vocab. Construction
// performs a breadth-first sweep of the automaton's reachable states;
// each wave of newly discovered states is scanned concurrently, bounded
// by envconfig.IndexWorkers workers (or WithWorkers).
func New(ctx context.Context, dfa *automaton.DFA, vocab *vocabulary.Vocabulary, opts ...Option) (*Index, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	vocab = vocab.Snapshot()
	entries := vocab.Entries()
	if cfg.maxTokLen > 0 {
		filtered := entries[:0]
		for _, e := range entries {
			if len(e.Token) <= cfg.maxTokLen {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}

	idx := &Index{
		trans:    make(map[StateId]*treemap.Map[TokenId, StateId]),
		final:    make(map[StateId]bool),
		initial:  dfa.Initial(),
		terminal: StateId(dfa.NumStates()),
		eos:      vocab.EOSTokenID(),
	}

	visited := hashset.New[StateId]()
	visited.Add(idx.initial)
	frontier := []StateId{idx.initial}

	var mu sync.Mutex
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		logutil.Trace("index: processing frontier wave", "states", len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.workers)
		next := hashset.New[StateId]()

		for _, s := range frontier {
			s := s
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				row := treemap.New[TokenId, StateId]()
				accepting := dfa.IsAccepting(s)
				var discovered []StateId

				for _, e := range entries {
					state := s
					dead := false
					for i := 0; i < len(e.Token); i++ {
						state = dfa.Delta(state, e.Token[i])
						if dfa.IsDead(state) {
							dead = true
							break
						}
					}
					if dead {
						continue
					}
					row.Put(e.ID, state)
					discovered = append(discovered, state)
				}
				if accepting {
					row.Put(idx.eos, idx.terminal)
				}

				mu.Lock()
				idx.trans[s] = row
				if accepting {
					idx.final[s] = true
				}
				for _, state := range discovered {
					if !visited.Contains(state) {
						visited.Add(state)
						next.Add(state)
					}
				}
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		frontier = next.Values()
		sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })
	}

	idx.trans[idx.terminal] = treemap.New[TokenId, StateId]()
	idx.final[idx.terminal] = true

	if initialRow := idx.trans[idx.initial]; initialRow.Size() == 0 && !idx.final[idx.initial] {
		return nil, ErrEmptyIndex
	}
	return idx, nil
}

// InitialState returns the Index's start state.
func (idx *Index) InitialState() StateId { return idx.initial }

// EOSTokenID returns the vocabulary's distinguished EOS id, as given
// to New via vocab.
func (idx *Index) EOSTokenID() TokenId { return idx.eos }

// IsFinalState reports whether state accepts EOS: either it was an
// accepting automaton state, or it is the synthetic terminal state
// every EOS transition leads to.
func (idx *Index) IsFinalState(state StateId) bool { return idx.final[state] }

// IsTerminalState reports whether state is the single synthetic sink
// every EOS transition leads to, as distinct from an accepting
// automaton state that has merely not yet consumed EOS.
func (idx *Index) IsTerminalState(state StateId) bool { return state == idx.terminal }

// FinalStates returns every final state, sorted ascending.
func (idx *Index) FinalStates() []StateId {
	states := make([]StateId, 0, len(idx.final))
	for s, ok := range idx.final {
		if ok {
			states = append(states, s)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// AllowedTokens returns, in ascending token-id order, every token id
// legal from state, and whether state is known to the Index at all.
func (idx *Index) AllowedTokens(state StateId) ([]TokenId, bool) {
	row, ok := idx.trans[state]
	if !ok {
		return nil, false
	}
	return row.Keys(), true
}

// NextState returns the state reached from state by taking tokenID,
// and whether that transition exists.
func (idx *Index) NextState(state StateId, tokenID TokenId) (StateId, bool) {
	row, ok := idx.trans[state]
	if !ok {
		return 0, false
	}
	return row.Get(tokenID)
}

// TransitionsView returns a read-only snapshot of the full transition
// table, keyed by source state then token id.
func (idx *Index) TransitionsView() map[StateId]map[TokenId]StateId {
	view := make(map[StateId]map[TokenId]StateId, len(idx.trans))
	for s, row := range idx.trans {
		inner := make(map[TokenId]StateId, row.Size())
		for _, k := range row.Keys() {
			v, _ := row.Get(k)
			inner[k] = v
		}
		view[s] = inner
	}
	return view
}

// WriteTable dumps the Index's transition table to w as a debug aid,
// one row per (state, token_id) pair (a state with no outgoing
// transitions gets a single "-"/"-" placeholder row); it is never used
// as a parse-time code path.
func (idx *Index) WriteTable(w io.Writer) {
	states := make([]StateId, 0, len(idx.trans))
	for s := range idx.trans {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"state", "final", "token", "next"})
	for _, s := range states {
		row := idx.trans[s]
		keys := row.Keys()
		if len(keys) == 0 {
			table.Append([]string{fmt.Sprint(s), fmt.Sprint(idx.final[s]), "-", "-"})
			continue
		}
		for _, k := range keys {
			next, _ := row.Get(k)
			table.Append([]string{fmt.Sprint(s), fmt.Sprint(idx.final[s]), fmt.Sprint(k), fmt.Sprint(next)})
		}
	}
	table.Render()
}
