package assistant

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/metra/core/dictionary"
	"github.com/adalundhe/metra/core/providers"
	"github.com/adalundhe/metra/core/records"
	"github.com/adalundhe/metra/core/search"
	"github.com/adalundhe/metra/core/semantic"
)

func newTestAssistant(t *testing.T) *Assistant {
	t.Helper()
	dir := t.TempDir()

	dictPath := filepath.Join(dir, "field_dictionaries.csv")
	f, err := os.Create(dictPath)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll([][]string{
		{"field_name", "field_chinese_name", "field_value", "display_name", "description", "is_custom"},
		{"measurementKind", "测量类型", "37", "有功功率", "三相有功功率测量", "false"},
		{"uom", "单位", "38", "瓦特", "有功功率的单位", "false"},
	}))
	w.Flush()
	require.NoError(t, f.Close())

	dict, err := dictionary.Load(dictPath)
	require.NoError(t, err)

	engine, err := search.NewEngine(dict, search.EngineConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	recs, err := records.Open(filepath.Join(dir, "reading_type_codes.csv"))
	require.NoError(t, err)

	return New(Config{
		Dictionary: dict,
		Engine:     engine,
		Parser:     semantic.NewParser(),
		Records:    recs,
		ExportDir:  dir,
	})
}

func TestGenerate(t *testing.T) {
	a := newTestAssistant(t)

	result := a.Generate(context.Background(), "储能PCS三相有功功率15分钟间隔数据")
	assert.Equal(t, 37, result.Analysis.Vector.MustGet("measurementKind"))
	assert.Contains(t, result.ID, "-")

	rendered := a.RenderGenerate("储能PCS三相有功功率15分钟间隔数据", result)
	assert.Contains(t, rendered, result.ID)
	assert.Contains(t, rendered, "识别要素")
}

func TestValidate(t *testing.T) {
	a := newTestAssistant(t)

	valid := a.Validate(context.Background(), "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0")
	assert.True(t, valid.Valid)
	assert.Equal(t, 37, valid.Vector.MustGet("measurementKind"))

	invalid := a.Validate(context.Background(), "1-2-3")
	assert.False(t, invalid.Valid)
	assert.Error(t, invalid.Err)
	assert.Contains(t, a.RenderValidate("1-2-3", invalid), "格式不正确")
}

func TestGenerateFromFields(t *testing.T) {
	a := newTestAssistant(t)

	result, err := a.GenerateFromFields(context.Background(), map[string]int{
		"measurementKind": 37,
		"uom":             38,
	})
	require.NoError(t, err)
	assert.Equal(t, "0-0-0-0-0-0-37-0-0-0-0-0-0-0-38-0", result.ID)

	_, err = a.GenerateFromFields(context.Background(), map[string]int{"nope": 1})
	assert.Error(t, err)
}

func TestAddToLibraryAndSearch(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	record, err := a.AddToLibrary(ctx, "储能有功功率", "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0", "储能PCS", "储能")
	require.NoError(t, err)
	assert.Equal(t, 1, record.ID)

	exact, _ := a.SearchCodes(ctx, "储能有功功率")
	require.Len(t, exact, 1)
	assert.Equal(t, record.ReadingTypeID, exact[0].ReadingTypeID)
}

func TestDispatchToolGenerate(t *testing.T) {
	a := newTestAssistant(t)

	out := a.DispatchTool(context.Background(), providers.ToolCall{
		ID:        "call_1",
		Name:      "generate_reading_type",
		Arguments: `{"description": "三相有功功率"}`,
	})
	assert.Contains(t, out, "建议编码")
	assert.Contains(t, out, "-37-")
}

func TestDispatchToolValidation(t *testing.T) {
	a := newTestAssistant(t)

	out := a.DispatchTool(context.Background(), providers.ToolCall{
		Name:      "validate_reading_type",
		Arguments: `{"reading_type_id": "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0"}`,
	})
	assert.Contains(t, out, "格式有效")
}

func TestDispatchToolQueryDictionary(t *testing.T) {
	a := newTestAssistant(t)

	fieldList := a.DispatchTool(context.Background(), providers.ToolCall{Name: "query_dictionary", Arguments: `{}`})
	assert.Contains(t, fieldList, "measurementKind")

	options := a.DispatchTool(context.Background(), providers.ToolCall{
		Name:      "query_dictionary",
		Arguments: `{"field_name": "uom"}`,
	})
	assert.Contains(t, options, "瓦特")

	missing := a.DispatchTool(context.Background(), providers.ToolCall{
		Name:      "query_dictionary",
		Arguments: `{"field_name": "nope"}`,
	})
	assert.Contains(t, missing, "未找到字段")
}

func TestDispatchToolAddAndExport(t *testing.T) {
	a := newTestAssistant(t)

	added := a.DispatchTool(context.Background(), providers.ToolCall{
		Name:      "add_to_library",
		Arguments: `{"name": "储能有功功率", "reading_type_id": "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0"}`,
	})
	assert.Contains(t, added, "成功添加编码")

	exported := a.DispatchTool(context.Background(), providers.ToolCall{
		Name:      "export_data",
		Arguments: `{"format": "json"}`,
	})
	assert.Contains(t, exported, "数据已导出")
	assert.Contains(t, exported, ".json")
}

func TestDispatchToolMissingArguments(t *testing.T) {
	a := newTestAssistant(t)

	out := a.DispatchTool(context.Background(), providers.ToolCall{Name: "search_reading_type", Arguments: `{}`})
	assert.Contains(t, out, "请提供")
}

func TestDispatchToolUnknown(t *testing.T) {
	a := newTestAssistant(t)

	out := a.DispatchTool(context.Background(), providers.ToolCall{Name: "no_such_tool"})
	assert.Contains(t, out, "未知工具")
}

func TestRenderSearchNotFound(t *testing.T) {
	out := RenderSearch("光伏逆变器", nil, nil)
	assert.Contains(t, out, "未找到")
	assert.Contains(t, out, "光伏逆变器")
}

func TestNewChatSessionWithoutProvider(t *testing.T) {
	a := newTestAssistant(t)

	_, err := a.NewChatSession()
	assert.ErrorIs(t, err, ErrNoProvider)
}
