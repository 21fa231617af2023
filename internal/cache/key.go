package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key derives the deterministic cache key for a query execution.
//
// text must already be normalized (lowercase, trimmed, collapsed
// whitespace) and filters normalized the same way the matcher sees them,
// so two semantically identical queries hash identically regardless of
// whitespace, case, or filter key ordering.
func Key(text string, filters map[string]string, limit, offset int) string {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(text)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, filters[k])
	}
	fmt.Fprintf(&b, "|limit=%d|offset=%d", limit, offset)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
