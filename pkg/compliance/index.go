package compliance

import (
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

// minPartialLen is the shortest candidate allowed to match part of a
// company name.
const minPartialLen = 4

// Index answers blacklist lookups over an in-memory dataset.
type Index struct {
	entries []indexed
}

type indexed struct {
	entry domain.BlacklistEntry
	id    string
	name  []string
}

// NewIndex indexes entries. Lookups honor the dataset order.
func NewIndex(entries []domain.BlacklistEntry) *Index {
	idx := &Index{entries: make([]indexed, 0, len(entries))}
	for _, e := range entries {
		idx.entries = append(idx.entries, indexed{
			entry: e,
			id:    strings.ToLower(strings.TrimSpace(e.SupplierID)),
			name:  words(e.CompanyName),
		})
	}
	return idx
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Lookup finds the first entry whose supplier id equals the candidate, or
// whose company name and the candidate contain one another as a whole-word
// sequence. Word boundaries keep "acme" from matching "Pacmen Ltd".
func (idx *Index) Lookup(candidate string) (domain.BlacklistEntry, bool) {
	id := strings.ToLower(strings.TrimSpace(candidate))
	if id == "" {
		return domain.BlacklistEntry{}, false
	}
	cand := words(candidate)
	partial := len(strings.Join(cand, " ")) >= minPartialLen

	for _, e := range idx.entries {
		if e.id != "" && e.id == id {
			return e.entry, true
		}
		if len(e.name) == 0 || len(cand) == 0 {
			continue
		}
		if containsSeq(cand, e.name) || (partial && containsSeq(e.name, cand)) {
			return e.entry, true
		}
	}
	return domain.BlacklistEntry{}, false
}

// containsSeq reports whether needle occurs in haystack as a contiguous run.
func containsSeq(haystack, needle []string) bool {
	if len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
