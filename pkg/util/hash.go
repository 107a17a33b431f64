package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HashCacheKey derives a stable document/row identifier for a cached worker
// response from its operation and normalized URL key.
func HashCacheKey(op, key string) string {
	return hashString(op + "|" + key)
}

// HashString returns the MD5 hash of an arbitrary string.
func HashString(input string) string {
	return hashString(strings.TrimSpace(strings.ToLower(input)))
}

func hashString(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
