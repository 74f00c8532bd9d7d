package semantic

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// SynonymTable maps canonical domain terms to their surface forms
// (Chinese variants, English terms, unit spellings). Canonicalization
// rewrites surface forms to the canonical term so the rule tables only
// need canonical keywords; expansion widens a search term to all
// equivalent forms.
type SynonymTable struct {
	canonical map[string][]string

	// replacers is ordered longest-surface-form-first so "蓄电池" wins
	// over "电池" during substitution.
	replacers []synonymPair
}

type synonymPair struct {
	surface   string
	canonical string
}

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() *SynonymTable {
	return NewSynonymTable(map[string][]string{
		"电能": {"电量", "电度"},
		"电压": {"voltage", "电位"},
		"电流": {"current"},
		"频率": {"frequency", "赫兹"},
		"温度": {"temperature"},
		"瞬时": {"实时", "当前", "即时", "现时", "instantaneous"},
		"累积": {"累计", "总计", "cumulative"},
		"三相": {"三相制", "三相系统", "three phase"},
		"储能": {"电池", "蓄电池", "储电", "battery", "energy storage"},
		"充电": {"进电", "forward"},
		"放电": {"出电", "reverse"},
	})
}

// NewSynonymTable builds a table from canonical term -> surface forms.
func NewSynonymTable(entries map[string][]string) *SynonymTable {
	t := &SynonymTable{canonical: make(map[string][]string, len(entries))}

	for canon, surfaces := range entries {
		t.canonical[canon] = append([]string(nil), surfaces...)
		for _, s := range surfaces {
			t.replacers = append(t.replacers, synonymPair{surface: s, canonical: canon})
		}
	}

	// Longer surface forms substitute first; ties break lexicographically
	// for determinism.
	sort.Slice(t.replacers, func(i, j int) bool {
		a, b := t.replacers[i].surface, t.replacers[j].surface
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return t
}

// asciiWord matches a surface form that is plain ASCII letters, which must
// only be substituted on word boundaries. Substituting short Latin forms as
// raw substrings would corrupt unit tokens ("a相" is phase A, not current).
var asciiWord = regexp.MustCompile(`^[a-z]+$`)

// Canonicalize rewrites every synonym occurrence in text (already
// lower-cased) to its canonical term. Single-rune surface forms are never
// substituted; they participate in Expand only.
func (t *SynonymTable) Canonicalize(text string) string {
	for _, pair := range t.replacers {
		if utf8.RuneCountInString(pair.surface) < 2 {
			continue
		}
		if asciiWord.MatchString(pair.surface) {
			text = replaceWord(text, pair.surface, pair.canonical)
			continue
		}
		text = strings.ReplaceAll(text, pair.surface, pair.canonical)
	}
	return text
}

// replaceWord substitutes whole-word occurrences of an ASCII surface form.
func replaceWord(text, word, repl string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(text, repl)
}

// Expand returns the term plus every equivalent surface form: if the term
// is canonical, its surfaces; if it is a surface form, its canonical term
// and that term's other surfaces. Results are sorted for determinism.
func (t *SynonymTable) Expand(term string) []string {
	set := map[string]struct{}{term: {}}

	if surfaces, ok := t.canonical[term]; ok {
		for _, s := range surfaces {
			set[s] = struct{}{}
		}
	}
	for canon, surfaces := range t.canonical {
		for _, s := range surfaces {
			if s != term {
				continue
			}
			set[canon] = struct{}{}
			for _, other := range surfaces {
				set[other] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
