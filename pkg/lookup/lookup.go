// Package lookup holds the fixed tables that translate coarse codes
// (channel, market, origin, volume, timeline, priority, trade term) into
// the descriptive strings used by the estimation prompt.
//
// Every table is total: codes, labels and known aliases resolve to their
// bucket, anything else resolves to the Unspecified bucket.
package lookup

import (
	"regexp"
	"strings"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Bucket is a resolved table entry.
type Bucket struct {
	Code        string
	Label       string
	Description string
	// Region is only set for markets.
	Region string
}

// Known reports whether the bucket is not the fallback.
func (b Bucket) Known() bool {
	return b.Code != domain.Unspecified
}

type table struct {
	byKey    map[string]Bucket
	fallback Bucket
}

func newTable(fallback Bucket, buckets []Bucket, aliases map[string]string) table {
	t := table{byKey: make(map[string]Bucket), fallback: fallback}
	byCode := make(map[string]Bucket, len(buckets))
	for _, b := range buckets {
		byCode[b.Code] = b
		t.byKey[Normalize(b.Code)] = b
		t.byKey[Normalize(b.Label)] = b
	}
	for alias, code := range aliases {
		if b, ok := byCode[code]; ok {
			t.byKey[Normalize(alias)] = b
		}
	}
	return t
}

func (t table) resolve(raw string) Bucket {
	if b, ok := t.byKey[Normalize(raw)]; ok {
		return b
	}
	return t.fallback
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	separators    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize folds a code or label into a lookup key: lower case,
// parenthetical notes dropped, separators collapsed to underscores.
// "Shopify / DTC" and "shopify_dtc" share a key, as do "Europe (EU)" and "europe".
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if stripped := strings.TrimSpace(parenthetical.ReplaceAllString(s, "")); stripped != "" {
		s = stripped
	}
	return strings.Trim(separators.ReplaceAllString(s, "_"), "_")
}
