package anthropic

// CachedSystem builds a system prompt block with a cache breakpoint. The
// analysis prompt is identical for every business, so batch runs after the
// first read it from cache.
func CachedSystem(text, ttl string) []SystemBlock {
	return []SystemBlock{{Text: text, CacheControl: &CacheControl{TTL: ttl}}}
}
