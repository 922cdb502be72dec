package cache

// Key prefixes shared with any tooling that inspects the store directly.
const (
	PagePrefix  = "cache:"
	CountPrefix = "count:"
)

// PageKey returns the key holding the cached body of url.
//
// Example:
//
//	cache:https://example.com/index.html
func PageKey(url string) string {
	return PagePrefix + url
}

// CountKey returns the key holding the access counter of url.
//
// Example:
//
//	count:https://example.com/index.html
func CountKey(url string) string {
	return CountPrefix + url
}
