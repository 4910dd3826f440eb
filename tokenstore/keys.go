package tokenstore

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// storeKey derives the store key for a session ID. Raw session IDs never
// touch the store: a dump of store keys cannot be replayed as cookies.
// When secret is set the hash is keyed, so keys are unlinkable without it.
func storeKey(secret, sessionID string) string {
	var key []byte
	if secret != "" {
		sum := sha256.Sum256([]byte(secret))
		key = sum[:]
	}

	h, err := blake2b.New256(key)
	if err != nil {
		// blake2b.New256 only fails on oversized keys; sha256 output never is.
		panic("tokenstore: blake2b key derivation: " + err.Error())
	}
	h.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
