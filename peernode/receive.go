package peernode

import (
	"net"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/errors"
	"github.com/cowboyphilip/votechain/events"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

// handleConn reads exactly one envelope from conn and dispatches it, per
// §5's one-message-per-connection model.
func (n *Node) handleConn(conn net.Conn) {
	defer conn.Close()

	env, err := wire.ReadEnvelope(conn)
	if err != nil {
		n.warnf("read envelope: %v", err)
		return
	}

	switch env.Type {
	case wire.TypeNewTransaction:
		n.onNewTransaction(env)
	case wire.TypeNewBlock:
		n.onNewBlock(env)
	case wire.TypeChainRequest:
		n.onChainRequest(env)
	case wire.TypeChainResponse:
		n.onChainResponse(env)
	case wire.TypePeerList:
		n.onPeerList(env)
	default:
		n.warnf("unknown message type %q from %s", env.Type, env.Sender)
	}
}

func (n *Node) onNewTransaction(env *wire.Envelope) {
	var tx chain.Transaction
	if err := env.Decode(&tx); err != nil {
		n.warnf("decode NEW_TRANSACTION: %v", err)
		return
	}

	ok, rejectErr := n.AddTransaction(&tx, n.verifier)
	if !ok {
		n.warnf("reject gossiped transaction %s: %v", tx.TransactionID, rejectErr)
		return
	}

	if n.autoMineOn() {
		n.MineNow()
	}
}

func (n *Node) onNewBlock(env *wire.Envelope) {
	var b chain.Block
	if err := env.Decode(&b); err != nil {
		n.warnf("decode NEW_BLOCK: %v", err)
		return
	}

	n.chainMu.Lock()
	last := n.chain.Last()
	valid, err := chain.IsValidNext(&b, last)
	if err != nil {
		n.chainMu.Unlock()
		n.warnf("validate incoming block: %v", err)
		return
	}
	if valid {
		n.chain.Append(&b)
		committed := n.chain.TransactionIDs()
		n.pool.Purge(committed)
		n.chainMu.Unlock()

		metrics.MempoolSize.Set(float64(n.pool.Len()))
		n.sink.OnEvent(events.BlockAdded, &b)
		n.sink.OnEvent(events.BlockchainUpdated, nil)
		return
	}
	n.chainMu.Unlock()

	n.warnf("%v: block index %d does not fit local tip", errors.New(errors.ERR_INVALID_BLOCK, "block rejected"), b.Index)
	n.requestChainFrom(n.randomPeer())
}

func (n *Node) onChainRequest(env *wire.Envelope) {
	n.chainMu.Lock()
	payload := wire.ToBlockchainPayload(n.chain, n.pool.Transactions())
	n.chainMu.Unlock()

	reply, err := wire.NewEnvelope(wire.TypeChainResponse, n.selfID, nowSeconds(), payload)
	if err != nil {
		n.warnf("build CHAIN_RESPONSE: %v", err)
		return
	}
	if err := wire.Send(env.Sender, reply); err != nil {
		n.warnf("send CHAIN_RESPONSE to %s: %v", env.Sender, err)
	}
}

func (n *Node) onChainResponse(env *wire.Envelope) {
	var payload wire.BlockchainPayload
	if err := env.Decode(&payload); err != nil {
		n.warnf("decode CHAIN_RESPONSE: %v", err)
		return
	}
	n.adoptIfLonger(payload.Chain)
}

// adoptIfLonger validates candidate end-to-end and, if it is both valid and
// strictly longer than the local chain, replaces the local chain wholesale
// (§4.4, §4.6's longest-chain rule).
func (n *Node) adoptIfLonger(blocks []*chain.Block) {
	ok, _, err := chain.ValidateChain(blocks)
	if err != nil {
		n.warnf("validate candidate chain: %v", err)
		return
	}
	if !ok {
		n.warnf("%v", errors.New(errors.ERR_CHAIN_REPLACEMENT_FAILED, "candidate chain invalid"))
		return
	}

	candidate := &chain.Chain{Blocks: blocks}

	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	if !chain.LongestChainWins(n.chain, candidate) {
		return
	}

	n.chain = candidate
	committed := n.chain.TransactionIDs()
	n.pool.Purge(committed)

	metrics.ChainReplacements.Inc()
	metrics.MempoolSize.Set(float64(n.pool.Len()))
	n.sink.OnEvent(events.BlockchainUpdated, nil)
}

func (n *Node) onPeerList(env *wire.Envelope) {
	var roster wire.PeerListPayload
	if err := env.Decode(&roster); err != nil {
		n.warnf("decode PEER_LIST: %v", err)
		return
	}

	n.rosterMu.Lock()
	n.roster = make(map[string]wire.RegisterPayload, len(roster))
	for id, entry := range roster {
		n.roster[id] = entry
	}
	n.rosterMu.Unlock()

	n.sink.OnEvent(events.PeerListUpdated, roster)
}
