package chain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a single vote. VoteData only recognizes the "choice" key
// for tallying (see Chain.Results), but carries arbitrary scalar values so
// callers may attach other short string-keyed fields without the core
// needing to know about them.
type Transaction struct {
	TransactionID string                 `json:"transaction_id"`
	VoterID       string                 `json:"voter_id"`
	VoteData      map[string]interface{} `json:"vote_data"`
	Signature     *string                `json:"signature"`
	Timestamp     float64                `json:"timestamp"`
}

// NewTransaction always assigns a fresh transaction_id and the current
// wall-clock timestamp; it takes neither as an argument. A Transaction with
// fixed id and timestamp is built as a struct literal instead.
func NewTransaction(voterID string, voteData map[string]interface{}) *Transaction {
	return &Transaction{
		TransactionID: uuid.NewString(),
		VoterID:       voterID,
		VoteData:      voteData,
		Timestamp:     float64(time.Now().UnixNano()) / 1e9,
	}
}

// canonicalDict excludes Signature per §4.1.
func (t *Transaction) canonicalDict() map[string]interface{} {
	return map[string]interface{}{
		"transaction_id": t.TransactionID,
		"voter_id":       t.VoterID,
		"vote_data":      t.VoteData,
		"timestamp":      t.Timestamp,
	}
}

// toDict is the full field set, signature included, used when a
// transaction is embedded inside a block's canonical form.
func (t *Transaction) toDict() map[string]interface{} {
	d := t.canonicalDict()
	if t.Signature != nil {
		d["signature"] = *t.Signature
	} else {
		d["signature"] = nil
	}
	return d
}

// Hash computes the SHA-256 hex digest of the canonical, signature-excluded
// serialization. Two independent callers given the same field values always
// agree on this value — see invariant 1 in §8.
func (t *Transaction) Hash() (string, error) {
	b, err := canonicalJSON(t.canonicalDict())
	if err != nil {
		return "", err
	}
	return sha256Hex(b), nil
}
