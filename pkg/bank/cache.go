package bank

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"strconv"
)

// Fingerprint computes the cache key spec.md §6 describes: the SHA-256 of
// the source word list plus the registry cap, hex-encoded. internal/db
// uses this as the Redis key under which an encoded Bank is cached.
func Fingerprint(words []string, registryCap int) string {
	h := sha256.New()
	for _, w := range words {
		h.Write([]byte(w))
		h.Write([]byte{0})
	}
	h.Write([]byte(strconv.Itoa(registryCap)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// cacheEnvelope is the self-describing binary blob persisted by Encode:
// the registry cap plus the deduplicated item list. Rebuilding the
// sub-pattern index from this is cheaper than re-parsing the source word
// list, and is deterministic (spec.md §5 "Ordering guarantees").
type cacheEnvelope struct {
	RegistryCap int
	Items       []Item
}

// Encode serializes a Bank to a self-describing binary blob.
// Cross-implementation compatibility is not required (spec.md §6).
func Encode(b *Bank) ([]byte, error) {
	var buf bytes.Buffer
	env := cacheEnvelope{RegistryCap: b.registryCap, Items: b.items}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("bank: encode cache blob: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode rebuilds a Bank from a blob produced by Encode.
func Decode(blob []byte) (*Bank, error) {
	var env cacheEnvelope
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&env); err != nil {
		return nil, fmt.Errorf("bank: decode cache blob: %w", err)
	}
	return New(env.Items, env.RegistryCap)
}
