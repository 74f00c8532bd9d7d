package dictionary

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metraerrors "github.com/adalundhe/metra/core/errors"
)

func writeTestCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "field_dictionaries.csv")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := csv.NewWriter(f)
	header := [][]string{{"field_name", "field_chinese_name", "field_value", "display_name", "description", "is_custom"}}
	require.NoError(t, w.WriteAll(append(header, rows...)))
	w.Flush()
	require.NoError(t, f.Close())
	return path
}

func testRows() [][]string {
	return [][]string{
		{"uom", "单位", "38", "瓦特", "有功功率的单位", "false"},
		{"uom", "单位", "72", "瓦时", "电能单位", "false"},
		{"uom", "单位", "5", "安培", "电流单位", "false"},
		{"multiplier", "乘数", "3", "千", "kilo", "false"},
		{"multiplier", "乘数", "–3", "毫", "milli", "false"},
		{"multiplier", "乘数", "0", "无", "", "false"},
	}
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, store.FieldNames())
}

func TestLoadAndLookup(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	assert.Equal(t, []string{"multiplier", "uom"}, store.FieldNames())
	assert.True(t, store.HasField("uom"))
	assert.False(t, store.HasField("phase"))

	entry, ok := store.Lookup("uom", "38")
	require.True(t, ok)
	assert.Equal(t, "瓦特", entry.DisplayName)
	assert.Equal(t, "有功功率的单位", entry.Description)
	assert.False(t, entry.IsCustom)

	assert.Equal(t, "瓦特", store.DescriptionInt("uom", 38))
	assert.Equal(t, "value: 99", store.DescriptionInt("uom", 99))
}

func TestOptionsNumericSort(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	options := store.Options("multiplier", 0)
	require.Len(t, options, 3)
	// The typographic minus in the source data sorts as a negative number.
	assert.Equal(t, "–3", options[0].Value)
	assert.Equal(t, "0", options[1].Value)
	assert.Equal(t, "3", options[2].Value)
}

func TestOptionsLimit(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	options := store.Options("uom", 2)
	require.Len(t, options, 2)
	assert.Equal(t, "5", options[0].Value)
	assert.Equal(t, "38", options[1].Value)
}

func TestValidateValue(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	assert.True(t, store.ValidateValue("uom", "38"))
	assert.False(t, store.ValidateValue("uom", "999"))
	assert.False(t, store.ValidateValue("phase", "128"))
}

func TestAddCustomValuePersists(t *testing.T) {
	path := writeTestCSV(t, testRows())
	store, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, store.AddCustomValue("uom", "170", "测试单位", "自定义"))

	entry, ok := store.Lookup("uom", "170")
	require.True(t, ok)
	assert.True(t, entry.IsCustom)

	// The write-through survives a fresh load.
	reloaded, err := Load(path)
	require.NoError(t, err)
	entry, ok = reloaded.Lookup("uom", "170")
	require.True(t, ok)
	assert.Equal(t, "测试单位", entry.DisplayName)
	assert.True(t, entry.IsCustom)
}

func TestAddCustomValueDuplicate(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	err = store.AddCustomValue("uom", "38", "重复", "")
	require.Error(t, err)
	assert.True(t, metraerrors.IsDuplicate(err))
	assert.Len(t, store.Entries("uom"), 3)
}

func TestAddCustomValueUnknownField(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	err = store.AddCustomValue("nope", "1", "x", "")
	assert.ErrorIs(t, err, metraerrors.ErrUnknownField)
}

func TestOnMutateFires(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)

	var fired int
	store.OnMutate(func() { fired++ })

	require.NoError(t, store.AddCustomValue("uom", "171", "另一个", ""))
	assert.Equal(t, 1, fired)

	require.NoError(t, store.Reload())
	assert.Equal(t, 2, fired)
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	path := writeTestCSV(t, testRows())
	store, err := Load(path)
	require.NoError(t, err)
	require.False(t, store.HasField("phase"))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("phase,相位,128,A相,A相测量,false\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, store.Reload())
	assert.True(t, store.HasField("phase"))
}

func TestExportNaming(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)
	dir := t.TempDir()

	path, err := store.Export(dir, "uom", "csv")
	require.NoError(t, err)
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "dictionary_uom_"), base)
	assert.True(t, strings.HasSuffix(base, ".csv"), base)
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = store.Export(dir, "", "json")
	require.NoError(t, err)
	base = filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "dictionary_all_"), base)
	assert.True(t, strings.HasSuffix(base, ".json"), base)
}

func TestExportUnknownFieldAndFormat(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = store.Export(dir, "nope", "csv")
	assert.ErrorIs(t, err, metraerrors.ErrUnknownField)

	_, err = store.Export(dir, "uom", "xml")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	store, err := Load(writeTestCSV(t, testRows()))
	require.NoError(t, err)
	require.NoError(t, store.AddCustomValue("uom", "170", "测试单位", ""))

	stats := store.Stats()
	require.Len(t, stats, 2)

	var uom FieldStats
	for _, fs := range stats {
		if fs.Field == "uom" {
			uom = fs
		}
	}
	assert.Equal(t, 4, uom.TotalValues)
	assert.Equal(t, 3, uom.StandardValues)
	assert.Equal(t, 1, uom.CustomValues)
}
