package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Fetcher retrieves the raw bytes of a pretrained tokenizer file for
// model at the given revision. Callers inject their own model-hub
// client; this package has no network client of its own (spec.md §1,
// "Out of scope: model-hub download of tokenizer files").
type Fetcher func(ctx context.Context, model, revision string) ([]byte, error)

// PretrainedOption configures FromPretrained.
type PretrainedOption func(*pretrainedConfig)

type pretrainedConfig struct {
	revision string
	auth     string
	fetch    Fetcher
}

// WithRevision selects a specific tokenizer revision instead of the
// default branch.
func WithRevision(revision string) PretrainedOption {
	return func(c *pretrainedConfig) { c.revision = revision }
}

// WithAuth records an auth token on the FromPretrained call. The token
// is not passed to the Fetcher, which receives only the model and
// revision.
func WithAuth(token string) PretrainedOption {
	return func(c *pretrainedConfig) { c.auth = token }
}

// WithFetcher overrides how the raw tokenizer file is retrieved,
// primarily for testing.
func WithFetcher(f Fetcher) PretrainedOption {
	return func(c *pretrainedConfig) { c.fetch = f }
}

// pretrainedFile is the subset of a HuggingFace-style tokenizer.json
// this package understands: an "added_tokens" list and a
// "model.vocab" map from token string to id. The full file has many
// more fields we do not need, which is exactly the shape
// mapstructure.Decode is for: decode the untyped JSON blob loosely,
// ignoring unknown keys, into a small typed struct.
type pretrainedFile struct {
	AddedTokens []struct {
		ID      TokenID `mapstructure:"id"`
		Content string  `mapstructure:"content"`
		Special bool    `mapstructure:"special"`
	} `mapstructure:"added_tokens"`
	Model struct {
		Vocab map[string]TokenID `mapstructure:"vocab"`
	} `mapstructure:"model"`
}

// FromPretrained builds a Vocabulary from a pretrained tokenizer file
// fetched for model at revision. The EOS id is taken from the first
// added token marked special whose content matches one of the common
// EOS spellings; callers with a different tokenizer layout should
// build their Vocabulary with New directly instead.
func FromPretrained(ctx context.Context, model, revision string, opts ...PretrainedOption) (*Vocabulary, error) {
	cfg := pretrainedConfig{revision: revision}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fetch == nil {
		return nil, fmt.Errorf("vocabulary: FromPretrained requires a Fetcher (see WithFetcher)")
	}

	raw, err := cfg.fetch(ctx, model, cfg.revision)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: fetching %q@%q: %w", model, cfg.revision, err)
	}

	var untyped map[string]any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		return nil, fmt.Errorf("vocabulary: decoding tokenizer file: %w", err)
	}

	var file pretrainedFile
	if err := mapstructure.Decode(untyped, &file); err != nil {
		return nil, fmt.Errorf("vocabulary: mapping tokenizer file: %w", err)
	}

	tokens := make(map[string][]TokenID, len(file.Model.Vocab))
	for tok, id := range file.Model.Vocab {
		tokens[tok] = append(tokens[tok], id)
	}

	var eos TokenID
	var eosFound bool
	for _, t := range file.AddedTokens {
		if t.Special && isEOSSpelling(t.Content) {
			eos = t.ID
			eosFound = true
			delete(tokens, t.Content)
			break
		}
	}
	if !eosFound {
		return nil, fmt.Errorf("vocabulary: could not identify an eos token among added_tokens for %q", model)
	}

	return New(eos, tokens)
}

func isEOSSpelling(s string) bool {
	switch s {
	case "</s>", "<|endoftext|>", "<eos>", "<|eos|>":
		return true
	default:
		return false
	}
}
