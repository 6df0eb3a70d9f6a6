package envconfig

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	Debug = false
	IndexWorkers = runtime.NumCPU()
	DefaultWhitespace = defaultWhitespacePattern
	MaxVocabularyScan = 0

	t.Setenv("OUTLINES_DEBUG", "")
	t.Setenv("OUTLINES_INDEX_WORKERS", "")
	t.Setenv("OUTLINES_WHITESPACE_PATTERN", "")
	t.Setenv("OUTLINES_MAX_TOKEN_LEN", "")
	LoadConfig()

	require.False(t, Debug)
	require.Equal(t, runtime.NumCPU(), IndexWorkers)
	require.Equal(t, defaultWhitespacePattern, DefaultWhitespace)
	require.Equal(t, 0, MaxVocabularyScan)
}

func TestConfigOverrides(t *testing.T) {
	t.Setenv("OUTLINES_DEBUG", "1")
	t.Setenv("OUTLINES_INDEX_WORKERS", "4")
	t.Setenv("OUTLINES_WHITESPACE_PATTERN", " *")
	t.Setenv("OUTLINES_MAX_TOKEN_LEN", "64")
	LoadConfig()

	require.True(t, Debug)
	require.Equal(t, 4, IndexWorkers)
	require.Equal(t, " *", DefaultWhitespace)
	require.Equal(t, 64, MaxVocabularyScan)
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	IndexWorkers = 8
	MaxVocabularyScan = 16

	t.Setenv("OUTLINES_INDEX_WORKERS", "not-a-number")
	t.Setenv("OUTLINES_MAX_TOKEN_LEN", "-1")
	LoadConfig()

	require.Equal(t, 8, IndexWorkers)
	require.Equal(t, 16, MaxVocabularyScan)
}
