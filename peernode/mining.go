package peernode

import (
	"context"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/events"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

// MineNow implements mine_now() (§4.4): starts a nonce search if the
// mempool is nonempty and no mining is already in progress. Returns
// whether mining was actually started.
func (n *Node) MineNow() bool {
	n.miningMu.Lock()
	if n.mining {
		n.miningMu.Unlock()
		return false
	}

	n.chainMu.Lock()
	if n.pool.Len() == 0 {
		n.chainMu.Unlock()
		n.miningMu.Unlock()
		return false
	}
	n.chainMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	n.mining = true
	n.cancel = cancel
	metrics.MiningInProgress.Set(1)
	n.miningMu.Unlock()

	go n.mine(ctx)
	return true
}

func (n *Node) mine(ctx context.Context) {
	defer func() {
		n.miningMu.Lock()
		n.mining = false
		n.cancel = nil
		n.miningMu.Unlock()
		metrics.MiningInProgress.Set(0)
	}()

	minerID, stakeValue := n.cachedMinerInfo()
	difficulty := chain.Difficulty(stakeValue)
	metrics.CurrentDifficulty.Set(float64(difficulty))

	// Snapshot the mempool and tip under the lock, mine outside it, then
	// re-acquire to validate-and-append (§5).
	n.chainMu.Lock()
	txs := n.pool.Transactions()
	tip := n.chain.Last()
	n.chainMu.Unlock()

	if len(txs) == 0 {
		return
	}

	block, err := chain.NewBlock(tip.Index+1, txs, tip.Hash, &minerID, &stakeValue)
	if err != nil {
		n.warnf("construct candidate block: %v", err)
		return
	}

	if err := block.Mine(ctx); err != nil {
		if err == chain.ErrMiningCanceled {
			return
		}
		n.warnf("mine block: %v", err)
		return
	}

	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	// The tip may have advanced while mining was outside the lock; discard
	// the mined block rather than fork the chain (§5, §9).
	if n.chain.Last().Hash != tip.Hash {
		n.warnf("discarding mined block: tip advanced during mining")
		return
	}

	valid, err := chain.IsValidNext(block, tip)
	if err != nil || !valid {
		n.warnf("mined block failed self-validation: %v", err)
		return
	}

	n.chain.Append(block)
	committed := n.chain.TransactionIDs()
	n.pool.Purge(committed)

	n.logf("mined block %d (hash=%s, difficulty=%d)", block.Index, block.Hash, difficulty)
	metrics.BlocksMined.Inc()
	metrics.MempoolSize.Set(float64(n.pool.Len()))
	n.sink.OnEvent(events.BlockMined, block)
	n.sink.OnEvent(events.BlockAdded, block)

	go n.broadcast(wire.TypeNewBlock, block)
}
