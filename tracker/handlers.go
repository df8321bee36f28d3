package tracker

import (
	"net"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

func (t *Tracker) handleConn(conn net.Conn) {
	defer conn.Close()

	env, err := wire.ReadEnvelope(conn)
	if err != nil {
		t.warnf("read envelope: %v", err)
		return
	}

	switch env.Type {
	case wire.TypeRegister:
		t.onRegister(env)
	case wire.TypeHeartbeat:
		t.onHeartbeat(env)
	case wire.TypeGetMiner:
		t.onGetMiner(conn, env)
	default:
		t.warnf("unexpected message type %q from %s", env.Type, env.Sender)
	}
}

// onRegister implements §4.5's registration sequence. A re-registration of
// an already-known peer id keeps its existing miner_id (ERR_REGISTRATION_RACE
// in the error taxonomy) and simply refreshes its endpoint and heartbeat
// time.
func (t *Tracker) onRegister(env *wire.Envelope) {
	var payload wire.RegisterPayload
	if err := env.Decode(&payload); err != nil {
		t.warnf("decode REGISTER: %v", err)
		return
	}

	peerID := wire.ID(payload.Host, payload.Port)

	t.mu.Lock()
	minerID, known := t.minerOf[peerID]
	if !known {
		minerID = t.nextMiner
		t.nextMiner++
		t.minerOf[peerID] = minerID
		t.stake[minerID] = 0
	}
	t.active[peerID] = &peerEntry{
		host:          payload.Host,
		port:          payload.Port,
		lastHeartbeat: nowTime(),
		minerID:       minerID,
	}
	t.mu.Unlock()

	t.logf("registered %s as miner %d", peerID, minerID)
	t.broadcastRoster()
	t.sendReferenceChainTo(peerID)
}

// onHeartbeat implements §4.5's heartbeat handling: refresh liveness,
// validate the reported chain, conditionally adopt it as reference, and
// adjust per-miner stake from the per-block validity deltas (§8 invariant 9,
// scenario E6 — see chain.ValidateChain's doc comment and DESIGN.md).
func (t *Tracker) onHeartbeat(env *wire.Envelope) {
	var payload wire.HeartbeatPayload
	if err := env.Decode(&payload); err != nil {
		t.warnf("decode HEARTBEAT: %v", err)
		return
	}

	peerID := env.Sender
	t.mu.Lock()
	if entry, ok := t.active[peerID]; ok {
		entry.lastHeartbeat = nowTime()
	}
	t.mu.Unlock()

	chainOK, minerDeltas, err := chain.ValidateChain(payload.Blockchain.Chain)
	if err != nil {
		t.warnf("validate reported chain from %s: %v", peerID, err)
		return
	}

	reported := &chain.Chain{Blocks: payload.Blockchain.Chain}

	t.chainMu.Lock()
	if chainOK && chain.LongestChainWins(t.chain, reported) {
		t.chain = reported
		metrics.ChainReplacements.Inc()
		t.logf("adopted longer reference chain (length %d) from %s", reported.Length(), peerID)
	}
	t.chainMu.Unlock()

	t.mu.Lock()
	for minerID, delta := range minerDeltas {
		t.stake[minerID] += delta
	}
	t.mu.Unlock()
}

// onGetMiner implements §4.5's GET_MINER query, replying on the same
// connection since the caller blocks on the answer.
func (t *Tracker) onGetMiner(conn net.Conn, env *wire.Envelope) {
	peerID := env.Sender

	t.mu.Lock()
	minerID, known := t.minerOf[peerID]
	stake := t.stake[minerID]
	t.mu.Unlock()

	if !known {
		t.warnf("GET_MINER from unregistered peer %s", peerID)
		return
	}

	info := wire.MinerInfo{MinerID: minerID, Difficulty: chain.Difficulty(stake)}
	reply, err := wire.NewEnvelope(wire.TypeGetMiner, t.selfID, nowSeconds(), info)
	if err != nil {
		t.warnf("build GET_MINER reply: %v", err)
		return
	}
	if err := wire.WriteEnvelope(conn, reply); err != nil {
		t.warnf("write GET_MINER reply to %s: %v", peerID, err)
	}
}

// sendReferenceChainTo ships the current reference chain to a newly (re-)
// registered peer (§4.5 step 4).
func (t *Tracker) sendReferenceChainTo(peerID string) {
	t.chainMu.Lock()
	payload := wire.ToBlockchainPayload(t.chain, nil)
	t.chainMu.Unlock()

	env, err := wire.NewEnvelope(wire.TypeChainResponse, t.selfID, nowSeconds(), payload)
	if err != nil {
		t.warnf("build CHAIN_RESPONSE for %s: %v", peerID, err)
		return
	}
	if err := wire.Send(peerID, env); err != nil {
		t.warnf("send reference chain to %s: %v", peerID, err)
	}
}

// broadcastRoster sends PEER_LIST to every currently active peer (§4.5
// step 3, and on every liveness eviction).
func (t *Tracker) broadcastRoster() {
	t.mu.Lock()
	roster := make(wire.PeerListPayload, len(t.active))
	targets := make([]string, 0, len(t.active))
	for id, entry := range t.active {
		roster[id] = wire.RegisterPayload{Host: entry.host, Port: entry.port}
		targets = append(targets, id)
	}
	t.mu.Unlock()

	env, err := wire.NewEnvelope(wire.TypePeerList, t.selfID, nowSeconds(), roster)
	if err != nil {
		t.warnf("build PEER_LIST: %v", err)
		return
	}
	for _, id := range targets {
		if err := wire.Send(id, env); err != nil {
			t.warnf("broadcast PEER_LIST to %s: %v", id, err)
		}
	}
}
