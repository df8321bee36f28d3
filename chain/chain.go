package chain

// Chain is an ordered sequence of blocks starting at genesis. It carries no
// locking of its own — §5 assigns one mutex per aggregate to the node that
// owns the chain (peernode.Node, tracker.Tracker), not to this type.
type Chain struct {
	Blocks []*Block
}

// NewChain returns a fresh chain containing only the deterministic genesis
// block.
func NewChain() (*Chain, error) {
	g, err := Genesis()
	if err != nil {
		return nil, err
	}
	return &Chain{Blocks: []*Block{g}}, nil
}

// Last returns the chain tip.
func (c *Chain) Last() *Block {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[len(c.Blocks)-1]
}

// Length is the number of blocks, genesis included.
func (c *Chain) Length() int {
	return len(c.Blocks)
}

// Append adds b to the tip without validation; callers must validate with
// IsValidNext first.
func (c *Chain) Append(b *Block) {
	c.Blocks = append(c.Blocks, b)
}

// Score sums the stake snapshot of every block (genesis contributes 0),
// matching the chain_score field of the wire <Blockchain> shape (§6).
func (c *Chain) Score() int {
	total := 0
	for _, b := range c.Blocks {
		if b.StakeValue != nil {
			total += *b.StakeValue
		}
	}
	return total
}

// Results tallies the "choice" key of vote_data over every transaction in
// the committed chain only (mempool transactions are not counted).
func (c *Chain) Results() map[string]int {
	results := make(map[string]int)
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			choice, ok := tx.VoteData["choice"]
			if !ok {
				continue
			}
			choiceStr, ok := choice.(string)
			if !ok {
				continue
			}
			results[choiceStr]++
		}
	}
	return results
}

// HasVoterVoted reports whether voterID already has a committed transaction
// anywhere in the chain (the mempool is checked separately by the owner —
// see peernode.Node.AddTransaction).
func (c *Chain) HasVoterVoted(voterID string) bool {
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			if tx.VoterID == voterID {
				return true
			}
		}
	}
	return false
}

// TransactionIDs returns the set of every committed transaction_id, used to
// purge a peer's mempool after a block is accepted.
func (c *Chain) TransactionIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			ids[tx.TransactionID] = struct{}{}
		}
	}
	return ids
}

// Clone returns a shallow copy of the block slice (blocks are never
// mutated after mining, so sharing *Block pointers across the copy and the
// original is safe).
func (c *Chain) Clone() *Chain {
	blocks := make([]*Block, len(c.Blocks))
	copy(blocks, c.Blocks)
	return &Chain{Blocks: blocks}
}
