package poller

import (
	"strconv"
	"strings"
)

// ExtractField walks a dot-separated path through a decoded JSON document.
// Objects are indexed by key and arrays by numeric position. A missing step
// yields (nil, false) rather than an error; an empty path returns doc.
func ExtractField(doc any, path string) (any, bool) {
	if path == "" {
		return doc, true
	}
	current := doc
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
