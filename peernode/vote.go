package peernode

import (
	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/errors"
	"github.com/cowboyphilip/votechain/events"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/sig"
	"github.com/cowboyphilip/votechain/wire"
)

// SubmitVote implements submit_vote(choice) (§4.4): synthesizes a
// Transaction under this peer's own voter_id, signs it, and admits it
// through add_transaction. Returns false if this voter_id has already
// voted.
func (n *Node) SubmitVote(choice string) bool {
	tx := chain.NewTransaction(n.voterID, map[string]interface{}{"choice": choice})

	hash, err := tx.Hash()
	if err != nil {
		n.warnf("hash transaction for vote: %v", err)
		return false
	}
	signature, err := n.keys.Sign(hash)
	if err != nil {
		n.warnf("sign vote: %v", err)
		return false
	}
	tx.Signature = &signature

	ok, rejectErr := n.AddTransaction(tx, n.verifier)
	if !ok {
		n.warnf("submit_vote rejected: %v", rejectErr)
		return false
	}

	n.sink.OnEvent(events.TransactionCreated, tx)
	n.broadcast(wire.TypeNewTransaction, tx)
	return true
}

// AddTransaction implements add_transaction(tx, verify_sig) (§4.4). verifier
// may be nil to skip signature verification; both callers in this package
// (SubmitVote and the NEW_TRANSACTION handler) pass the node's configured
// verifier.
func (n *Node) AddTransaction(tx *chain.Transaction, verifier sig.Verifier) (bool, error) {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	if n.chain.HasVoterVoted(tx.VoterID) || n.pool.HasVoted(tx.VoterID) {
		metrics.TransactionsRejected.Inc()
		return false, errors.New(errors.ERR_DOUBLE_VOTE, "voter_id has already voted")
	}

	if verifier != nil {
		hash, err := tx.Hash()
		if err != nil {
			metrics.TransactionsRejected.Inc()
			return false, errors.New(errors.ERR_MALFORMED_MESSAGE, "hash transaction", err)
		}
		signature := ""
		if tx.Signature != nil {
			signature = *tx.Signature
		}
		if !verifier.Verify(hash, signature, tx.VoterID) {
			metrics.TransactionsRejected.Inc()
			return false, errors.New(errors.ERR_BAD_SIGNATURE, "signature verification failed")
		}
	}

	n.pool.Add(tx)
	metrics.TransactionsAdmitted.Inc()
	metrics.MempoolSize.Set(float64(n.pool.Len()))
	n.sink.OnEvent(events.TransactionAdded, tx)
	return true, nil
}
