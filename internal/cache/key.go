package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// SearchKey derives the cache key for an acquisition request. Keywords are
// sorted first so that two searches differing only in keyword order share an
// entry.
func SearchKey(source, category string, keywords []string) string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)

	return hashKey("search:" + source + ":" + category + ":" + strings.Join(sorted, ":"))
}

// MatchKey derives the cache key for a match result between one candidate
// (identified by the content hash of the résumé) and one posting identity.
func MatchKey(candidateHash, postingID string) string {
	return hashKey("match:" + candidateHash + ":" + postingID)
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
