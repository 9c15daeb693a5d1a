package registry

// hashSize mirrors the original tool's fixed 1024-bucket cache (§4.7).
const hashSize = 1024

// hash computes a djb2 hash of s, matching the original tool's bucket
// function, reduced to the cache's bucket count.
func hash(s string) int {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return int(h % hashSize)
}

// cacheEntry memoizes the outcome of a previous (tag, path) lookup: either a
// matching rule, or a confirmed miss.
type cacheEntry struct {
	key   string
	rule  *TLVRule // nil on a confirmed miss
	found bool
}

// lookupCache is a Structure's own tag->rule cache (§4.7), bucketed by hash
// of "tag|path" the same way the original tool buckets by tag alone; adding
// the path to the key preserves the documented determinism property ("same
// (tag, path) returns the same rule") without requiring the cache to be
// flushed whenever the path changes.
type lookupCache struct {
	buckets [hashSize][]cacheEntry
}

func (c *lookupCache) get(key string) (cacheEntry, bool) {
	b := c.buckets[hash(key)]
	for _, e := range b {
		if e.key == key {
			return e, true
		}
	}
	return cacheEntry{}, false
}

func (c *lookupCache) put(key string, rule *TLVRule) {
	idx := hash(key)
	c.buckets[idx] = append(c.buckets[idx], cacheEntry{key: key, rule: rule, found: true})
}

// MatchTag looks up the TLV rule in st matching tag at the given path,
// consulting (and populating) the structure-local cache on miss. numeric and
// num are used for range comparisons when the owning TL schema's tag
// encoding is an integer type; otherwise tag is compared byte-string-wise.
func (st *Structure) MatchTag(tag string, numeric bool, num uint64, path string) *TLVRule {
	if st.cache == nil {
		st.cache = &lookupCache{}
	}
	key := tag + "|" + path
	if e, ok := st.cache.get(key); ok {
		return e.rule
	}
	rule := scanRules(st.Rules, tag, numeric, num, path)
	st.cache.put(key, rule)
	return rule
}

func scanRules(rules []*TLVRule, tag string, numeric bool, num uint64, path string) *TLVRule {
	for _, rule := range rules {
		if !tagMatches(rule, tag, numeric, num) {
			continue
		}
		if !pathMatches(rule, path) {
			continue
		}
		return rule
	}
	return nil
}

func tagMatches(rule *TLVRule, tag string, numeric bool, num uint64) bool {
	if numeric && rule.Numeric {
		return num >= rule.StartNum && num <= rule.EndNum
	}
	// byte-string-wise range/equality comparison.
	if rule.StartTag == rule.EndTag {
		return tag == rule.StartTag
	}
	return tag >= rule.StartTag && tag <= rule.EndTag
}

func pathMatches(rule *TLVRule, path string) bool {
	if rule.Path == "" {
		return true
	}
	if rule.PathSuffix {
		suffix := rule.Path[1:] // strip the leading '*'
		return hasSuffix(path, suffix)
	}
	return path == rule.Path
}

func hasSuffix(s, suffix string) bool {
	if len(suffix) > len(s) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}
