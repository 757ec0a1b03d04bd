package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ConfigHash fingerprints the set of configurations that entered a batch run.
type ConfigHash Hash

// NewConfigHash creates a ConfigHash from data
func NewConfigHash(data []byte) ConfigHash { return ConfigHash(NewHash(data)) }

// String conversion
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash produces a deterministic fingerprint over group names and
// their observation counts, independent of map iteration order.
func ComputeConfigHash(groupSizes map[string]int) ConfigHash {
	keys := make([]string, 0, len(groupSizes))
	for k := range groupSizes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%d|", groupSizes[key]))
	}

	return NewConfigHash([]byte(data.String()))
}
