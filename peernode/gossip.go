package peernode

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

// broadcast sends payload as msgType to every overlay neighbor (§4.4: "on
// admitting a self-created transaction or a self-mined block, the peer
// broadcasts it to the overlay neighbors"). Delivery is fanned out
// concurrently and is best-effort: a failed send is logged and dropped,
// never retried (§5).
func (n *Node) broadcast(msgType string, payload interface{}) {
	neighbors := n.topology.Neighbors(n.selfID)
	if len(neighbors) == 0 {
		return
	}

	env, err := wire.NewEnvelope(msgType, n.selfID, nowSeconds(), payload)
	if err != nil {
		n.warnf("build envelope for %s: %v", msgType, err)
		return
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, addr := range neighbors {
		addr := addr
		g.Go(func() error {
			if err := n.dialLimiter.Wait(context.Background()); err != nil {
				return nil
			}
			if err := wire.Send(addr, env); err != nil {
				n.warnf("broadcast %s to %s: %v", msgType, addr, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// requestChainFrom issues a CHAIN_REQUEST to addr (§4.4: "issue a chain
// request to a randomly chosen known peer").
func (n *Node) requestChainFrom(addr string) {
	if addr == "" {
		return
	}
	env, err := wire.NewEnvelope(wire.TypeChainRequest, n.selfID, nowSeconds(), nil)
	if err != nil {
		n.warnf("build CHAIN_REQUEST: %v", err)
		return
	}
	metrics.ChainRequestsIssued.Inc()
	if err := wire.Send(addr, env); err != nil {
		n.warnf("CHAIN_REQUEST to %s: %v", addr, err)
	}
}
