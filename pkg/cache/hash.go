package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"
)

// Hash returns the hex SHA-256 of data. Documents, built graphs and
// projections are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns kind + ":" + the Hash of parts encoded as JSON, e.g.
// "layout:9f86d0...". Key option structs hold only strings, numbers and
// bools, so encoding does not fail.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
