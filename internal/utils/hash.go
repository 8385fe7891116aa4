// Package utils holds small helpers shared by the sink and its ingest server.
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CalculateHash returns the hex HMAC-SHA256 of body keyed with key.
func CalculateHash(body []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidHash reports whether got is the hash of body under key, in constant time.
func ValidHash(body []byte, key, got string) bool {
	want := CalculateHash(body, key)
	return hmac.Equal([]byte(want), []byte(got))
}
