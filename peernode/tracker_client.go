package peernode

import (
	"context"
	"time"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

// register sends REGISTER to the tracker (§4.5). Registration is
// best-effort at startup; a failure is logged and the node proceeds without
// retrying. The tracker adds a peer to its roster, ships it the reference
// chain, and answers its GET_MINER queries only after a REGISTER from it
// has arrived; heartbeats do not register a peer.
func (n *Node) register() {
	payload := wire.RegisterPayload{Host: n.host, Port: n.port}
	env, err := wire.NewEnvelope(wire.TypeRegister, n.selfID, nowSeconds(), payload)
	if err != nil {
		n.warnf("build REGISTER: %v", err)
		return
	}
	if err := wire.Send(n.trackerAddr, env); err != nil {
		n.warnf("register with tracker: %v", err)
	}
}

// cachedMinerInfo returns this node's last-known (miner_id, stake_value),
// querying the tracker via GET_MINER first and falling back to the
// previously cached values on failure (§4.4: "before starting, the peer
// queries the tracker for its (miner_id, stake_value) ... or uses the
// last-known values").
func (n *Node) cachedMinerInfo() (int, int) {
	env, err := wire.NewEnvelope(wire.TypeGetMiner, n.selfID, nowSeconds(), nil)
	if err == nil {
		reply, err := wire.SendRecv(n.trackerAddr, env)
		if err == nil {
			var info wire.MinerInfo
			if err := reply.Decode(&info); err == nil {
				n.minerMu.Lock()
				n.minerID = info.MinerID
				n.stakeValue = minerStakeFromDifficulty(info.Difficulty)
				n.minerMu.Unlock()
			}
		} else {
			n.warnf("GET_MINER query: %v", err)
		}
	}

	n.minerMu.Lock()
	defer n.minerMu.Unlock()
	return n.minerID, n.stakeValue
}

// minerStakeFromDifficulty reconstructs the stake_value a mined block
// should record from GET_MINER's reply, which carries only difficulty
// (§6), not the tracker's raw stake counter (§4.4). D_default - difficulty
// always lands back on the same difficulty once re-clamped by
// chain.Difficulty, since difficulty is already clamped to [D_min, D_max]
// by the tracker — so a block stamped with this reconstructed stake
// validates identically to one stamped with the tracker's true stake.
func minerStakeFromDifficulty(difficulty int) int {
	return chain.DefaultDifficulty - difficulty
}

func (n *Node) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(n.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stopCh:
			return
		case <-ticker.C:
			n.sendHeartbeat()
		}
	}
}

func (n *Node) sendHeartbeat() {
	n.chainMu.Lock()
	payload := wire.HeartbeatPayload{Blockchain: wire.ToBlockchainPayload(n.chain, n.pool.Transactions())}
	n.chainMu.Unlock()

	env, err := wire.NewEnvelope(wire.TypeHeartbeat, n.selfID, nowSeconds(), payload)
	if err != nil {
		n.warnf("build HEARTBEAT: %v", err)
		return
	}
	if err := wire.Send(n.trackerAddr, env); err != nil {
		metrics.HeartbeatsFailed.Inc()
		n.warnf("send HEARTBEAT: %v", err)
		return
	}
	metrics.HeartbeatsSent.Inc()
}
