package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySHA256Hex() string {
	sum := sha256.Sum256(nil)
	return hex.EncodeToString(sum[:])
}

func TestHashDeterminism(t *testing.T) {
	tx := &Transaction{
		TransactionID: "tx-1",
		VoterID:       "voter-1",
		VoteData:      map[string]interface{}{"choice": "X"},
		Timestamp:     1000.0,
	}

	h1, err := tx.Hash()
	require.NoError(t, err)
	h2, err := tx.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	minerID, stake := 1, 0
	b := &Block{
		Index:        1,
		Transactions: []*Transaction{tx},
		PreviousHash: "abc",
		Timestamp:    2000.0,
		Nonce:        42,
		MerkleRoot:   "irrelevant-for-this-test",
		MinerID:      &minerID,
		StakeValue:   &stake,
	}
	var err2 error
	b.MerkleRoot, err2 = merkleRoot(b.Transactions)
	require.NoError(t, err2)

	h3, err := b.RecomputeHash()
	require.NoError(t, err)
	h4, err := b.RecomputeHash()
	require.NoError(t, err)
	assert.Equal(t, h3, h4)
}

func TestMerkleEmptyCase(t *testing.T) {
	root, err := merkleRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, emptySHA256Hex(), root)
}

func TestMerkleOddPadding(t *testing.T) {
	txA := &Transaction{TransactionID: "a", VoterID: "va", VoteData: map[string]interface{}{"choice": "X"}, Timestamp: 1}
	txB := &Transaction{TransactionID: "b", VoterID: "vb", VoteData: map[string]interface{}{"choice": "Y"}, Timestamp: 2}
	txC := &Transaction{TransactionID: "c", VoterID: "vc", VoteData: map[string]interface{}{"choice": "Z"}, Timestamp: 3}

	hA, err := txA.Hash()
	require.NoError(t, err)
	hB, err := txB.Hash()
	require.NoError(t, err)
	hC, err := txC.Hash()
	require.NoError(t, err)

	left := sha256Hex([]byte(hA + hB))
	right := sha256Hex([]byte(hC + hC))
	expected := sha256Hex([]byte(left + right))

	root, err := merkleRoot([]*Transaction{txA, txB, txC})
	require.NoError(t, err)
	assert.Equal(t, expected, root)
}

func TestDifficultyClamp(t *testing.T) {
	assert.Equal(t, MaxDifficulty, Difficulty(-100))
	assert.Equal(t, MinDifficulty, Difficulty(100))
	assert.Equal(t, DefaultDifficulty, Difficulty(0))
}

func TestMeetsTarget(t *testing.T) {
	assert.True(t, meetsTarget("0000abcd", 4))
	assert.False(t, meetsTarget("0001abcd", 4))
	assert.False(t, meetsTarget("abc", 4))
}

func TestChainLinkAndPoWOnValidChain(t *testing.T) {
	c, err := NewChain()
	require.NoError(t, err)

	tx := NewTransaction("voter-1", map[string]interface{}{"choice": "X"})
	minerID, stake := 1, 4 // stake 4 -> difficulty clamped to MinDifficulty (1), mines almost instantly
	b, err := NewBlock(c.Last().Index+1, []*Transaction{tx}, c.Last().Hash, &minerID, &stake)
	require.NoError(t, err)
	require.NoError(t, b.Mine(context.Background()))

	valid, err := IsValidNext(b, c.Last())
	require.NoError(t, err)
	assert.True(t, valid)

	c.Append(b)
	assert.Equal(t, c.Blocks[1].PreviousHash, c.Blocks[0].Hash)
	assert.Equal(t, c.Blocks[0].Index+1, c.Blocks[1].Index)

	ok, minerDeltas, err := ValidateChain(c.Blocks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[int]int{1: 1}, minerDeltas)
}

// TestValidateChainDeltasCountBlocksNotMiners exercises §8 invariant 9 and
// scenario E6 directly: two valid blocks from the same miner must move its
// delta by exactly 2, and a block that fails IsValidNext must subtract 1
// without masking the deltas already accrued from that miner's other blocks.
func TestValidateChainDeltasCountBlocksNotMiners(t *testing.T) {
	c, err := NewChain()
	require.NoError(t, err)

	minerID, stake := 1, 4 // difficulty clamped to MinDifficulty (1), mines almost instantly
	for i := 0; i < 2; i++ {
		tx := NewTransaction("voter-"+string(rune('A'+i)), map[string]interface{}{"choice": "X"})
		b, err := NewBlock(c.Last().Index+1, []*Transaction{tx}, c.Last().Hash, &minerID, &stake)
		require.NoError(t, err)
		require.NoError(t, b.Mine(context.Background()))
		c.Append(b)
	}

	ok, minerDeltas, err := ValidateChain(c.Blocks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[int]int{1: 2}, minerDeltas)

	tampered := make([]*Block, len(c.Blocks))
	copy(tampered, c.Blocks)
	tampered[2].PreviousHash = "not-the-real-parent-hash"

	ok, minerDeltas, err = ValidateChain(tampered)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, map[int]int{1: 0}, minerDeltas) // +1 for block 1, -1 for the tampered block 2
}

func TestDoubleVotePreventionAtMempoolLevel(t *testing.T) {
	pool := NewMempool()
	tx1 := NewTransaction("voter-1", map[string]interface{}{"choice": "X"})
	pool.Add(tx1)

	assert.True(t, pool.HasVoted("voter-1"))
	assert.False(t, pool.HasVoted("voter-2"))
}

func TestMempoolPurgeAfterBlockAccepted(t *testing.T) {
	pool := NewMempool()
	tx1 := NewTransaction("voter-1", map[string]interface{}{"choice": "X"})
	tx2 := NewTransaction("voter-2", map[string]interface{}{"choice": "Y"})
	pool.Add(tx1)
	pool.Add(tx2)

	committed := map[string]struct{}{tx1.TransactionID: {}}
	pool.Purge(committed)

	assert.False(t, pool.Contains(tx1.TransactionID))
	assert.True(t, pool.Contains(tx2.TransactionID))
	assert.Equal(t, 1, pool.Len())
}

func TestLongestChainWins(t *testing.T) {
	short, err := NewChain()
	require.NoError(t, err)
	long, err := NewChain()
	require.NoError(t, err)

	minerID, stake := 1, 4
	tx := NewTransaction("voter-1", map[string]interface{}{"choice": "X"})
	b, err := NewBlock(1, []*Transaction{tx}, long.Last().Hash, &minerID, &stake)
	require.NoError(t, err)
	require.NoError(t, b.Mine(context.Background()))
	long.Append(b)

	assert.True(t, LongestChainWins(short, long))
	assert.False(t, LongestChainWins(long, short))
}

func TestResultsTalliesCommittedOnly(t *testing.T) {
	c, err := NewChain()
	require.NoError(t, err)

	minerID, stake := 1, 4
	tx := NewTransaction("voter-1", map[string]interface{}{"choice": "X"})
	b, err := NewBlock(1, []*Transaction{tx}, c.Last().Hash, &minerID, &stake)
	require.NoError(t, err)
	require.NoError(t, b.Mine(context.Background()))
	c.Append(b)

	assert.Equal(t, map[string]int{"X": 1}, c.Results())
}

func TestGenesisIsDeterministic(t *testing.T) {
	g1, err := Genesis()
	require.NoError(t, err)
	g2, err := Genesis()
	require.NoError(t, err)

	assert.Equal(t, g1.Hash, g2.Hash)
	assert.Equal(t, 0, g1.Index)
	assert.Equal(t, "0", g1.PreviousHash)
	assert.Empty(t, g1.Transactions)
}
