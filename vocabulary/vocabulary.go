// Package vocabulary holds the immutable bidirectional map between
// tokenizer token strings and vocabulary ids that the Index is built
// against.
package vocabulary

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// TokenID is a vocabulary token id. Real tokenizers stay well within
// 32 bits, so we use that instead of a wider or signed type.
type TokenID = uint32

// ErrEOSTokenClash is returned when a caller attempts to place the
// EOS id into the token map, or to insert a token under the EOS id.
var ErrEOSTokenClash = errors.New("vocabulary: eos token id clash")

// Vocabulary is a bidirectional map from token bytes to one or more
// token ids, plus a distinguished EOS id that never appears as a
// value in the map.
//
// A Vocabulary may continue to be mutated after it has been given to
// an Index; the Index snapshots what it needs at construction time
// and is independent of later mutation (spec.md §3, "Lifecycle").
type Vocabulary struct {
	eos    TokenID
	tokens map[string][]TokenID
}

// New builds a Vocabulary from an eos id and a map of token bytes to
// their (possibly duplicated) ids. It fails with ErrEOSTokenClash if
// eos appears anywhere in tokens.
func New(eos TokenID, tokens map[string][]TokenID) (*Vocabulary, error) {
	v := &Vocabulary{
		eos:    eos,
		tokens: make(map[string][]TokenID, len(tokens)),
	}
	for tok, ids := range tokens {
		for _, id := range ids {
			if id == eos {
				return nil, fmt.Errorf("%w: token %q maps to eos id %d", ErrEOSTokenClash, tok, eos)
			}
		}
		v.tokens[tok] = slices.Clone(ids)
	}
	return v, nil
}

// Insert appends id to the id list for token, preserving insertion
// order. It fails with ErrEOSTokenClash if id is the vocabulary's EOS
// id.
func (v *Vocabulary) Insert(token string, id TokenID) error {
	if id == v.eos {
		return fmt.Errorf("%w: cannot insert token %q under eos id %d", ErrEOSTokenClash, token, id)
	}
	v.tokens[token] = append(v.tokens[token], id)
	return nil
}

// Remove deletes all ids registered for token. It is a no-op if token
// is absent.
func (v *Vocabulary) Remove(token string) {
	delete(v.tokens, token)
}

// Get returns the ordered list of ids registered for token, and
// whether token is present at all.
func (v *Vocabulary) Get(token string) ([]TokenID, bool) {
	ids, ok := v.tokens[token]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// EOSTokenID returns the vocabulary's distinguished EOS id.
func (v *Vocabulary) EOSTokenID() TokenID {
	return v.eos
}

// Len returns the count of distinct non-EOS token ids in the
// vocabulary (a token mapped to two ids counts twice).
func (v *Vocabulary) Len() int {
	n := 0
	for _, ids := range v.tokens {
		n += len(ids)
	}
	return n
}

// Equal reports whether v and other have the same eos id and the same
// token-to-ids mapping.
func (v *Vocabulary) Equal(other *Vocabulary) bool {
	if other == nil {
		return false
	}
	if v.eos != other.eos {
		return false
	}
	if len(v.tokens) != len(other.tokens) {
		return false
	}
	for tok, ids := range v.tokens {
		oids, ok := other.tokens[tok]
		if !ok || !slices.Equal(ids, oids) {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of v. index.New calls this so that an
// Index is unaffected by mutations made to the Vocabulary it was
// built from (spec.md §8, "Vocabulary independence post-build").
func (v *Vocabulary) Snapshot() *Vocabulary {
	cp := &Vocabulary{
		eos:    v.eos,
		tokens: make(map[string][]TokenID, len(v.tokens)),
	}
	for tok, ids := range v.tokens {
		cp.tokens[tok] = slices.Clone(ids)
	}
	return cp
}

// Entries returns every (token bytes, id) pair in the vocabulary,
// excluding the EOS id, in an unspecified order. This is the "token
// table" the Index builder scans (spec.md §4.4, "Preparation").
func (v *Vocabulary) Entries() []Entry {
	entries := make([]Entry, 0, v.Len())
	for tok, ids := range v.tokens {
		for _, id := range ids {
			entries = append(entries, Entry{Token: tok, ID: id})
		}
	}
	return entries
}

// Entry is a single (token bytes, token id) pair.
type Entry struct {
	Token string
	ID    TokenID
}

// Clone returns a shallow-independent copy suitable for tests that
// mutate the returned vocabulary without affecting v.
func (v *Vocabulary) Clone() *Vocabulary {
	return &Vocabulary{eos: v.eos, tokens: maps.Clone(v.tokens)}
}
