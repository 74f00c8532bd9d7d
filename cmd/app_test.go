package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/metra/core/config"
)

func TestParseFieldArgs(t *testing.T) {
	values, err := parseFieldArgs([]string{"measurementKind=37", "uom = 38"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"measurementKind": 37, "uom": 38}, values)

	_, err = parseFieldArgs([]string{"noequals"})
	assert.Error(t, err)

	_, err = parseFieldArgs([]string{"uom=abc"})
	assert.Error(t, err)
}

func TestParserThresholdsMapping(t *testing.T) {
	cfg := config.DefaultConfig()
	th := parserThresholds(cfg)

	assert.Equal(t, cfg.Parser.MaxConfidence, th.MaxConfidence)
	assert.Equal(t, cfg.Parser.DependencyThreshold, th.DependencyThreshold)
	assert.Equal(t, cfg.Parser.WeightNorm, th.WeightNorm)
}

func TestCacheTTLParsing(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Positive(t, cacheTTL(cfg))

	cfg.Search.CacheTTL = "not a duration"
	assert.Zero(t, cacheTTL(cfg))
}

func TestBuildProviderWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.DefaultConfig()
	provider, err := buildProvider(cfg)
	require.NoError(t, err)
	assert.Nil(t, provider, "missing key degrades to no provider")

	cfg.LLM.DefaultProvider = "mystery"
	_, err = buildProvider(cfg)
	assert.Error(t, err)
}
