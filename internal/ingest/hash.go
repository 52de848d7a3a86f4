package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash derives the stable identity of an event from its source,
// title, and normalized publication time. Two fetches of the same item
// always collide here, which is what drives deduplication.
func ContentHash(source, title, publishedAt string) string {
	sum := sha256.Sum256([]byte(source + "|" + title + "|" + publishedAt))
	return hex.EncodeToString(sum[:16])
}
