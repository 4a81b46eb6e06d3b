package compliance

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	alibabaCompany = regexp.MustCompile(`(?i)alibaba\.com/company/([^/?#]+)`)
	nonWord        = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// genericSubdomains never identify a storefront.
var genericSubdomains = map[string]bool{"www": true, "m": true, "en": true}

// stopwords are path segments and words that appear in marketplace URLs
// without naming a company.
var stopwords = map[string]bool{
	"http": true, "https": true, "www": true, "com": true, "html": true,
	"product": true, "products": true, "product detail": true, "supplier": true, "suppliers": true,
	"company": true, "store": true, "shop": true, "item": true, "items": true,
	"detail": true, "details": true, "offer": true, "search": true,
}

// Candidates expands a reference identifier into the strings looked up in
// the blacklist, most specific first:
//
//   - the company slug of an alibaba.com/company/<slug> URL
//   - URL path segments longer than 3 characters, hyphens read as spaces
//   - the storefront subdomain (acme in acme.en.alibaba.com)
//   - the identifier itself
//
// Plain company names yield only themselves.
func Candidates(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] || stopwords[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	if u, ok := parseURL(ref); ok {
		if m := alibabaCompany.FindStringSubmatch(ref); m != nil {
			add(readable(m[1]))
		}
		for _, part := range strings.Split(u.Path, "/") {
			if len(part) > 3 {
				add(readable(strings.TrimSuffix(part, ".html")))
			}
		}
		host := strings.ToLower(u.Hostname())
		if labels := strings.Split(host, "."); len(labels) > 2 && !genericSubdomains[labels[0]] {
			add(labels[0])
		}
	}
	add(ref)
	return out
}

func parseURL(ref string) (*url.URL, bool) {
	if !strings.Contains(ref, "://") {
		if !strings.Contains(ref, ".") || strings.Contains(ref, " ") {
			return nil, false
		}
		ref = "https://" + ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

func readable(segment string) string {
	if dec, err := url.PathUnescape(segment); err == nil {
		segment = dec
	}
	return strings.ReplaceAll(segment, "-", " ")
}

// words folds s into lower-case alphanumeric words.
func words(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}
