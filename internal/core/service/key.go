package service

import "net/url"

// NormalizeKey derives the cache key of a source URL from its scheme, host, path and
// query, as "scheme://host/path?query" with an empty query when absent.
// The key is deterministic but not canonical: sources differing only in scheme or in
// the order of their query parameters get different keys.
func NormalizeKey(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.EscapedPath() + "?" + u.RawQuery
}
