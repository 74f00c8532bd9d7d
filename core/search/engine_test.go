package search

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/metra/core/dictionary"
)

func newTestStore(t *testing.T) *dictionary.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "field_dictionaries.csv")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := csv.NewWriter(f)
	rows := [][]string{
		{"field_name", "field_chinese_name", "field_value", "display_name", "description", "is_custom"},
		{"measurementKind", "测量类型", "37", "有功功率", "三相有功功率测量", "false"},
		{"measurementKind", "测量类型", "54", "电压", "电压测量", "false"},
		{"measurementKind", "测量类型", "12", "电能", "电能测量", "false"},
		{"uom", "单位", "38", "瓦特", "有功功率的单位", "false"},
		{"uom", "单位", "72", "瓦时", "电能单位", "false"},
		{"uom", "单位", "29", "伏特", "电压单位", "false"},
	}
	require.NoError(t, w.WriteAll(rows))
	w.Flush()
	require.NoError(t, f.Close())

	store, err := dictionary.Load(path)
	require.NoError(t, err)
	return store
}

func newTestEngine(t *testing.T, config EngineConfig) (*dictionary.Store, *Engine) {
	t.Helper()
	store := newTestStore(t)
	engine, err := NewEngine(store, config)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return store, engine
}

func TestSearchValueExact(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{})

	matches := engine.Search("38", "uom", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "38", matches[0].Entry.Value)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestSearchDisplayNameToken(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{})

	matches := engine.Search("瓦特", "", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "uom", matches[0].Field)
	assert.Equal(t, "38", matches[0].Entry.Value)
	assert.InDelta(t, 0.9, matches[0].Score, 1e-9)
}

func TestSearchOrderingStrongestFirst(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{})

	matches := engine.Search("电压", "", 10)
	require.GreaterOrEqual(t, len(matches), 2)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	// The display-name match outranks the description match.
	assert.Equal(t, "measurementKind", matches[0].Field)
	assert.Equal(t, "54", matches[0].Entry.Value)
}

func TestSearchFieldFilter(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{})

	matches := engine.Search("电压", "uom", 10)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, "uom", m.Field)
	}
}

func TestSearchThresholdFiltersNoise(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{Threshold: 0.5})

	assert.Empty(t, engine.Search("不存在的词汇啊", "", 10))
}

func TestSearchLimit(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{Threshold: 0.1})

	matches := engine.Search("电压", "", 1)
	assert.Len(t, matches, 1)
}

func TestSearchEmptyTerm(t *testing.T) {
	_, engine := newTestEngine(t, EngineConfig{})

	assert.Empty(t, engine.Search("   ", "", 10))
}

type staticExpander struct {
	variants map[string][]string
}

func (s staticExpander) Expand(term string) []string {
	if v, ok := s.variants[term]; ok {
		return v
	}
	return []string{term}
}

func TestSearchExpanderVariants(t *testing.T) {
	expander := staticExpander{variants: map[string][]string{
		"电量": {"电量", "电能"},
	}}
	_, plain := newTestEngine(t, EngineConfig{})
	_, expanded := newTestEngine(t, EngineConfig{Expander: expander})

	withVariants := expanded.Search("电量", "uom", 10)
	require.NotEmpty(t, withVariants, "synonym variant should reach the description")
	assert.Equal(t, "72", withVariants[0].Entry.Value)

	assert.Empty(t, plain.Search("电量", "uom", 10))
}

func TestMutationRefreshesResults(t *testing.T) {
	store, engine := newTestEngine(t, EngineConfig{})

	require.Empty(t, engine.Search("测试单位", "uom", 10))

	require.NoError(t, store.AddCustomValue("uom", "170", "测试单位", "自定义单位"))

	matches := engine.Search("测试单位", "uom", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "170", matches[0].Entry.Value)
}
