package tally

import (
	"sort"
	"strings"
)

const (
	prefixSplitter  = "+"
	keyPairSplitter = ","
	keyNameSplitter = "="
)

// KeyForStringMap generates the canonical key for a tag map alone.
func KeyForStringMap(stringMap map[string]string) string {
	return KeyForPrefixedStringMap("", stringMap)
}

// KeyForPrefixedStringMap generates the canonical identity key for a prefix
// and tag map combination: the prefix, a "+" splitter, then "key=value"
// pairs joined by "," in ascending key order. The result is stable across
// calls and collision-free for distinct (prefix, tags) pairs.
func KeyForPrefixedStringMap(prefix string, stringMap map[string]string) string {
	return keyForPrefixedStringMaps(prefix, stringMap)
}

// keyForPrefixedStringMaps generates the canonical key for a prefix and a
// series of tag maps. If a key occurs in multiple maps, maps on the right
// take precedence.
func keyForPrefixedStringMaps(prefix string, maps ...map[string]string) string {
	n := 0
	for _, m := range maps {
		n += len(m)
	}
	keys := make([]string, 0, n)
	for _, m := range maps {
		for k := range m {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.Grow(len(prefix) + 1 + n*16)
	b.WriteString(prefix)
	b.WriteString(prefixSplitter)

	last := ""
	for i, k := range keys {
		if i > 0 {
			if k == last {
				// duplicate across maps, already written
				continue
			}
			b.WriteString(keyPairSplitter)
		}
		last = k

		b.WriteString(k)
		b.WriteString(keyNameSplitter)
		for j := len(maps) - 1; j >= 0; j-- {
			if v, ok := maps[j][k]; ok {
				b.WriteString(v)
				break
			}
		}
	}

	return b.String()
}
