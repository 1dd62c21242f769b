// Package urlnorm normalizes URLs into canonical comparison keys.
//
// Every deduplication step in the import pipeline keys on the output of
// Normalize, so two spellings of the same address collapse to one entry.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// Normalize converts a URL string into its canonical comparison form:
// the host is lowercased, default ports (80 for http, 443 for https) and
// the fragment are stripped, repeated path slashes are collapsed, a
// trailing slash is dropped except for the root path, and query
// parameters are sorted lexicographically by key with values preserved
// verbatim. A scheme-less address such as "a.com:443" is keyed as if it
// were https, so bookmark exports that omit the scheme still dedup
// against their fully qualified spellings.
//
// A malformed URL is returned trimmed but otherwise unchanged. Dedup then
// degrades to exact-string matching for that item instead of failing the
// whole import, so Normalize never returns an error.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		// Retry with an assumed scheme. The output is a comparison key,
		// not a fetchable address, so defaulting to https is safe.
		u, err = url.Parse("https://" + trimmed)
		if err != nil || u.Host == "" || strings.Contains(u.Host, " ") {
			return trimmed
		}
	}

	u.Host = strings.ToLower(u.Host)
	if host, port, ok := strings.Cut(u.Host, ":"); ok {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		}
	}

	u.Fragment = ""
	u.RawFragment = ""

	u.Path = collapseSlashes(u.Path)
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	if u.RawQuery != "" {
		u.RawQuery = sortQuery(u.RawQuery)
	}

	return u.String()
}

// IsHTTPURL reports whether raw looks like a web URL. It is a pure
// syntactic prefix check; collectors silently drop items that fail it.
func IsHTTPURL(raw string) bool {
	s := strings.TrimSpace(raw)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func collapseSlashes(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// sortQuery reorders query parameters lexicographically by key. Values are
// kept verbatim, including their original encoding, so sorting never
// changes what a server would receive.
func sortQuery(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	sort.SliceStable(pairs, func(i, j int) bool {
		ki, _, _ := strings.Cut(pairs[i], "=")
		kj, _, _ := strings.Cut(pairs[j], "=")
		if ki != kj {
			return ki < kj
		}
		return pairs[i] < pairs[j]
	})
	return strings.Join(pairs, "&")
}
