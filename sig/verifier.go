// Package sig provides the injected signature-verification capability the
// chain core admits transactions through (§9: "the core admits transactions
// through a callable that, given (tx_hash, signature, voter_id), returns a
// boolean... model this as an interface with at least two variants").
package sig

// Verifier checks a transaction's signature against its hash and claimed
// voter (public key). Cryptographic strength is explicitly out of scope
// (§1) — these variants exist to exercise the admission path, not to
// secure it.
type Verifier interface {
	Verify(txHash, signature, voterID string) bool
}

// DemoAlwaysTrue accepts every signature unconditionally, matching
// original_source/src/client.py's _verify_signature, which "just return[s]
// True" for the demo.
type DemoAlwaysTrue struct{}

func (DemoAlwaysTrue) Verify(string, string, string) bool { return true }
