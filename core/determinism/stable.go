// Package determinism provides primitives for reproducible results:
// content hashes of rule documents and requests and sorted iteration
// over maps.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// CanonicalJSON encodes v with sorted map keys and no indentation.
// Two values that compare equal field by field encode identically.
func CanonicalJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}
	return data, nil
}

// HashJSON returns the content hash of v's canonical encoding
func HashJSON(v interface{}) (ContentHash, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return ContentHash{}, err
	}
	return ComputeHash(data), nil
}

// SortedKeys returns the map keys in ascending order
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}
