package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HTTPKey builds the key under which a response from namespace is stored,
// e.g. HTTPKey("npm", "express") == "http:npm:express".
func HTTPKey(namespace, key string) string {
	return "http:" + strings.TrimSuffix(namespace, ":") + ":" + key
}
