// Package chain implements the consensus data model: transactions, blocks,
// the chain itself, Merkle hashing, stake-modulated proof-of-work, chain
// validation, and the per-peer mempool.
package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// canonicalJSON renders v (already a map[string]interface{} with only JSON
// scalar/slice/map values) as UTF-8 JSON with lexicographically sorted keys
// and no incidental whitespace, so two independent serializers produce a
// byte-identical rendering and therefore an identical hash. encoding/json
// already sorts map[string]interface{} keys and emits the shortest
// round-trip float; we only need to guarantee key order down through nested
// maps, which encoding/json does natively for map[string]any.
func canonicalJSON(v map[string]interface{}) ([]byte, error) {
	return json.Marshal(sortedMap(v))
}

// sortedMap is a no-op placeholder for readability at call sites: Go's
// encoding/json already marshals map[string]interface{} with sorted keys.
// Kept as a named step so future non-map-based encoders have an obvious
// seam, and so the sort import documents the invariant being relied on.
func sortedMap(v map[string]interface{}) map[string]interface{} {
	// encoding/json sorts map keys internally; this loop only exists to
	// make that guarantee visible and testable at this call site.
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return v
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
