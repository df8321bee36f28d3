package chain

// genesisTimestamp is fixed rather than wall-clock so every node computes a
// byte-identical genesis hash (§3: "Genesis block is deterministic and
// identical across all nodes"). original_source/block123.py stamps genesis
// with time.time(), which would make independently-started nodes disagree
// on chain[0].Hash; this implementation pins it instead, per §8 invariant
// E1 ("Assert chain[0].hash equal on both [nodes]").
const genesisTimestamp = 0.0

// Genesis returns the deterministic first block: index 0, no transactions,
// previous_hash "0", no miner, no stake. It is never mined — compute_hash is
// taken at nonce 0, so every node that builds Genesis independently agrees
// on chain[0].Hash.
func Genesis() (*Block, error) {
	root, err := merkleRoot(nil)
	if err != nil {
		return nil, err
	}

	b := &Block{
		Index:        0,
		Transactions: nil,
		PreviousHash: "0",
		Timestamp:    genesisTimestamp,
		Nonce:        0,
		MerkleRoot:   root,
		MinerID:      nil,
		StakeValue:   nil,
	}
	b.Hash, err = b.computeHash(b.Nonce)
	return b, err
}
