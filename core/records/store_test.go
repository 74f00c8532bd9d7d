package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metraerrors "github.com/adalundhe/metra/core/errors"
)

const testID = "0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0"
const otherID = "0-0-0-3-1-1-12-0-0-0-0-0-0-0-72-0"

func newTestRecords(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "reading_type_codes.csv"))
	require.NoError(t, err)
	return store
}

func TestOpenMissingFile(t *testing.T) {
	store := newTestRecords(t)
	assert.Equal(t, 0, store.Len())
}

func TestAddAndReload(t *testing.T) {
	store := newTestRecords(t)
	store.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 30, 0, 0, time.Local)
	}

	record, err := store.Add("储能有功功率", testID, "储能PCS三相有功功率", "储能")
	require.NoError(t, err)
	assert.Equal(t, 1, record.ID)
	assert.Equal(t, "2026-09-01 10:30:00", record.CreatedAt)
	assert.Equal(t, SourceUser, record.Source)
	assert.Equal(t, 37, record.FieldValues.MustGet("measurementKind"))

	// Persisted rows survive a fresh open.
	reloaded, err := Open(store.Path())
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())
	got, ok := reloaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "储能有功功率", got.Name)
	assert.Equal(t, testID, got.ReadingTypeID)
	assert.Equal(t, record.FieldValues, got.FieldValues)
}

func TestAddSequentialIDs(t *testing.T) {
	store := newTestRecords(t)

	first, err := store.Add("编码一", testID, "", "")
	require.NoError(t, err)
	second, err := store.Add("编码二", otherID, "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestAddDefaultsCategory(t *testing.T) {
	store := newTestRecords(t)

	record, err := store.Add("编码", testID, "", "")
	require.NoError(t, err)
	assert.Equal(t, SourceUser, record.Category)
}

func TestAddRejectsMalformedID(t *testing.T) {
	store := newTestRecords(t)

	_, err := store.Add("坏编码", "1-2-3", "", "")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestAddRejectsDuplicates(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "", "")
	require.NoError(t, err)

	_, err = store.Add("储能有功功率", otherID, "", "")
	require.Error(t, err)
	assert.True(t, metraerrors.IsDuplicate(err), "duplicate name")

	_, err = store.Add("另一个名字", testID, "", "")
	require.Error(t, err)
	assert.True(t, metraerrors.IsDuplicate(err), "duplicate identifier")

	assert.Equal(t, 1, store.Len(), "failed adds leave the library unchanged")
}

func TestSearchExactAndFuzzy(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "储能PCS三相有功功率", "储能")
	require.NoError(t, err)
	_, err = store.Add("电表正向电能", otherID, "正向有功电能累计", "电表")
	require.NoError(t, err)

	exact, fuzzy := store.Search("储能有功功率", 0)
	require.Len(t, exact, 1)
	assert.Equal(t, "储能有功功率", exact[0].Name)
	assert.Empty(t, fuzzy)

	exact, fuzzy = store.Search("有功", 0)
	assert.Empty(t, exact)
	require.Len(t, fuzzy, 2, "substring hits on name and description")

	exact, fuzzy = store.Search("光伏逆变器", 0)
	assert.Empty(t, exact)
	assert.Empty(t, fuzzy)
}

func TestSearchFuzzyOrdering(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "", "")
	require.NoError(t, err)
	_, err = store.Add("储能无功功率", "0-0-2-6-1-1-53-0-0-0-0-0-0-0-38-0", "", "")
	require.NoError(t, err)

	_, fuzzy := store.Search("储能有功", 0)
	require.NotEmpty(t, fuzzy)
	for i := 1; i < len(fuzzy); i++ {
		assert.GreaterOrEqual(t, fuzzy[i-1].Score, fuzzy[i].Score)
	}
	assert.Equal(t, "储能有功功率", fuzzy[0].Record.Name)
}

func TestFilterGlobAndSubstring(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "", "储能电站")
	require.NoError(t, err)
	_, err = store.Add("电表正向电能", otherID, "", "电表")
	require.NoError(t, err)

	matched := store.Filter("储能*", "")
	require.Len(t, matched, 1)
	assert.Equal(t, "储能有功功率", matched[0].Name)

	matched = store.Filter("电", "")
	assert.Len(t, matched, 2, "plain text falls back to substring matching")

	matched = store.Filter("", "电能")
	require.Len(t, matched, 1)
	assert.Equal(t, "电表正向电能", matched[0].Name)

	assert.Len(t, store.Filter("", ""), 2)
}

func TestExportNaming(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "", "储能")
	require.NoError(t, err)
	dir := t.TempDir()

	path, err := store.Export(dir, "", "csv")
	require.NoError(t, err)
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "reading_type_export_"), base)
	assert.True(t, strings.HasSuffix(base, ".csv"), base)
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = store.Export(dir, "储能", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.Base(path), ".json"))

	_, err = store.Export(dir, "", "xml")
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	store := newTestRecords(t)
	_, err := store.Add("储能有功功率", testID, "", "储能")
	require.NoError(t, err)
	_, err = store.Add("电表正向电能", otherID, "", "电表")
	require.NoError(t, err)

	stats := store.Statistics()
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 1, stats.CategoryStats["储能"])
	assert.Equal(t, 1, stats.CategoryStats["电表"])
	assert.Equal(t, 2, stats.SourceStats[SourceUser])
}
