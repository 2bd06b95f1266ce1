package utils

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sign returns the hex keyed BLAKE2b-256 MAC of payload.
func Sign(key, payload []byte) string {
	if len(key) > blake2b.Size {
		k := blake2b.Sum256(key)
		key = k[:]
	}
	h, _ := blake2b.New256(key)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature compares in constant time. An empty key verifies nothing.
func VerifySignature(key, payload []byte, signature string) bool {
	if len(key) == 0 {
		return false
	}
	want := Sign(key, payload)
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}
