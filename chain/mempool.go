package chain

// Mempool is the ordered, per-peer multiset of pending transactions,
// deduplicated by transaction_id on admission. It is not concurrency-safe
// on its own — the owning peernode.Node serializes access under its chain
// lock (§5).
type Mempool struct {
	order []string
	byID  map[string]*Transaction
}

// NewMempool returns an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{byID: make(map[string]*Transaction)}
}

// Contains reports whether a transaction with this id is already pending.
func (m *Mempool) Contains(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// HasVoted reports whether voterID already has a pending transaction.
func (m *Mempool) HasVoted(voterID string) bool {
	for _, tx := range m.byID {
		if tx.VoterID == voterID {
			return true
		}
	}
	return false
}

// Add appends tx, deduplicated by transaction_id.
func (m *Mempool) Add(tx *Transaction) {
	if m.Contains(tx.TransactionID) {
		return
	}
	m.order = append(m.order, tx.TransactionID)
	m.byID[tx.TransactionID] = tx
}

// Transactions returns the pending transactions in admission order.
func (m *Mempool) Transactions() []*Transaction {
	out := make([]*Transaction, 0, len(m.order))
	for _, id := range m.order {
		if tx, ok := m.byID[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// Len reports the number of pending transactions.
func (m *Mempool) Len() int {
	return len(m.order)
}

// Purge removes every transaction whose id appears in committed, the set
// returned by Chain.TransactionIDs (§3: "cleared from the mempool when
// observed in an accepted block").
func (m *Mempool) Purge(committed map[string]struct{}) {
	if len(committed) == 0 {
		return
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, done := committed[id]; done {
			delete(m.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// Clear empties the mempool. The mining and chain-replacement paths do not
// call it; they remove committed transactions with Purge instead.
func (m *Mempool) Clear() {
	m.order = nil
	m.byID = make(map[string]*Transaction)
}
