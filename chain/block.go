package chain

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrMiningCanceled is returned by Mine when ctx is canceled (node shutdown
// or a newer tip arrived) before a valid nonce was found.
var ErrMiningCanceled = errors.New("mining canceled")

// Block is an immutable chain entry once mined; see §3 for field semantics.
// MinerID and StakeValue are nil on genesis.
type Block struct {
	Index        int            `json:"index"`
	Transactions []*Transaction `json:"transactions"`
	PreviousHash string         `json:"previous_hash"`
	Timestamp    float64        `json:"timestamp"`
	Nonce        int64          `json:"nonce"`
	MerkleRoot   string         `json:"merkle_root"`
	MinerID      *int           `json:"miner_id"`
	StakeValue   *int           `json:"stake_value"`
	Hash         string         `json:"hash"`
}

// NewBlock builds an unmined block: merkle root and timestamp are fixed,
// nonce starts at 0, and Hash is the hash of that unmined state (callers
// must call Mine before treating the block as valid).
func NewBlock(index int, txs []*Transaction, previousHash string, minerID, stakeValue *int) (*Block, error) {
	root, err := merkleRoot(txs)
	if err != nil {
		return nil, err
	}

	b := &Block{
		Index:        index,
		Transactions: txs,
		PreviousHash: previousHash,
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		Nonce:        0,
		MerkleRoot:   root,
		MinerID:      minerID,
		StakeValue:   stakeValue,
	}

	b.Hash, err = b.computeHash(b.Nonce)
	return b, err
}

func (b *Block) canonicalDict() map[string]interface{} {
	txDicts := make([]map[string]interface{}, len(b.Transactions))
	for i, tx := range b.Transactions {
		txDicts[i] = tx.toDict()
	}

	return map[string]interface{}{
		"index":         b.Index,
		"transactions":  txDicts,
		"previous_hash": b.PreviousHash,
		"timestamp":     b.Timestamp,
		"nonce":         b.Nonce,
		"merkle_root":   b.MerkleRoot,
		"miner_id":      intPtrValue(b.MinerID),
		"stake_value":   intPtrValue(b.StakeValue),
	}
}

func (b *Block) computeHash(nonce int64) (string, error) {
	d := b.canonicalDict()
	d["nonce"] = nonce
	raw, err := canonicalJSON(d)
	if err != nil {
		return "", err
	}
	return sha256Hex(raw), nil
}

// RecomputeHash recomputes Hash from the block's current fields (used by
// validators, which must not trust the transmitted Hash field alone).
func (b *Block) RecomputeHash() (string, error) {
	return b.computeHash(b.Nonce)
}

// stakeOrZero reads StakeValue, treating nil (genesis) as 0.
func (b *Block) stakeOrZero() int {
	if b.StakeValue == nil {
		return 0
	}
	return *b.StakeValue
}

// Mine performs the nonce search described in §4.3, splitting the search
// space across GOMAXPROCS workers (§9: "implementers may substitute a pool
// of worker tasks that split the nonce range"). It returns ErrMiningCanceled
// if ctx is canceled first.
func (b *Block) Mine(ctx context.Context) error {
	difficulty := Difficulty(b.stakeOrZero())

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	found := false
	var bestNonce int64
	var bestHash string

	g, gctx := errgroup.WithContext(searchCtx)
	for w := 0; w < workers; w++ {
		stride := int64(workers)
		start := int64(w)
		g.Go(func() error {
			for nonce := start; ; nonce += stride {
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				hash, err := b.computeHash(nonce)
				if err != nil {
					return err
				}
				if meetsTarget(hash, difficulty) {
					mu.Lock()
					if !found || nonce < bestNonce {
						found = true
						bestNonce = nonce
						bestHash = hash
					}
					mu.Unlock()
					cancel()
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if !found {
		return ErrMiningCanceled
	}

	b.Nonce = bestNonce
	b.Hash = bestHash
	return nil
}

func intPtrValue(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
