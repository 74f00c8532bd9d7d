package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/metra/core/dictionary"
)

// DefaultEntryCacheSize bounds the number of dictionary entries kept hot
// alongside the index.
const DefaultEntryCacheSize = 4096

// indexedEntry is the document shape stored in the index. Keywords come
// from the entry's display name and description; the keyword analyzer keeps
// each one a whole token, so Chinese phrases are matched exactly rather
// than shredded by a latin tokenizer.
type indexedEntry struct {
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Keywords []string `json:"keywords"`
}

// Index is the keyword inverted index over dictionary entries. It answers
// "which entries mention this term" so the scoring engine can reward
// keyword membership without scanning every entry.
type Index struct {
	mu      sync.RWMutex
	index   bleve.Index
	entries *lru.Cache[string, dictionary.Entry]
}

// NewIndex creates an empty in-memory index. cacheSize <= 0 selects the
// default entry cache size.
func NewIndex(cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultEntryCacheSize
	}
	cache, err := lru.New[string, dictionary.Entry](cacheSize)
	if err != nil {
		return nil, err
	}

	idx, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}

	return &Index{index: idx, entries: cache}, nil
}

func indexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("field", exact)
	doc.AddFieldMappingsAt("value", exact)
	doc.AddFieldMappingsAt("keywords", exact)

	m.DefaultMapping = doc
	return m
}

// Rebuild replaces the index contents with the given store's entries. The
// old index is discarded wholesale; incremental deletes are not worth the
// bookkeeping at dictionary scale.
func (ix *Index) Rebuild(store *dictionary.Store) error {
	fresh, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return fmt.Errorf("rebuild keyword index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, field := range store.FieldNames() {
		for _, entry := range store.Entries(field) {
			id := docID(field, entry.Value)
			doc := indexedEntry{
				Field:    field,
				Value:    entry.Value,
				Keywords: entryKeywords(entry),
			}
			if err := batch.Index(id, doc); err != nil {
				return fmt.Errorf("index entry %s: %w", id, err)
			}
		}
	}
	if err := fresh.Batch(batch); err != nil {
		return fmt.Errorf("commit keyword index batch: %w", err)
	}

	ix.mu.Lock()
	old := ix.index
	ix.index = fresh
	ix.entries.Purge()
	for _, field := range store.FieldNames() {
		for _, entry := range store.Entries(field) {
			ix.entries.Add(docID(field, entry.Value), entry)
		}
	}
	ix.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// entryKeywords derives the index terms for one entry.
func entryKeywords(entry dictionary.Entry) []string {
	kws := ExtractKeywords(entry.DisplayName + " " + entry.Description)
	kws = append(kws, strings.ToLower(entry.Value))
	return kws
}

// docID is "field|value"; values are unique within a field.
func docID(field, value string) string {
	return field + "|" + value
}

// Hit is one keyword index match.
type Hit struct {
	Field string
	Value string
	Entry dictionary.Entry
}

// Lookup returns the entries whose keyword set contains term exactly,
// optionally restricted to one field.
func (ix *Index) Lookup(term, field string, limit int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	termQuery := bleve.NewTermQuery(strings.ToLower(term))
	termQuery.SetField("keywords")

	var searchQuery = bleve.NewBooleanQuery()
	searchQuery.AddMust(termQuery)
	if field != "" {
		fieldQuery := bleve.NewTermQuery(field)
		fieldQuery.SetField("field")
		searchQuery.AddMust(fieldQuery)
	}

	req := bleve.NewSearchRequest(searchQuery)
	req.Size = limit

	result, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword lookup %q: %w", term, err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		f, v, ok := splitDocID(hit.ID)
		if !ok {
			continue
		}
		entry, ok := ix.entries.Get(hit.ID)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Field: f, Value: v, Entry: entry})
	}
	return hits, nil
}

// Contains reports whether the entry for (field, value) has term in its
// keyword set.
func (ix *Index) Contains(term, field, value string) bool {
	hits, err := ix.Lookup(term, field, 0)
	if err != nil {
		return false
	}
	for _, h := range hits {
		if h.Value == value {
			return true
		}
	}
	return false
}

func splitDocID(id string) (field, value string, ok bool) {
	field, value, ok = strings.Cut(id, "|")
	return field, value, ok
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.index == nil {
		return nil
	}
	err := ix.index.Close()
	ix.index = nil
	return err
}
