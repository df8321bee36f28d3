// Package tracker implements the tracker role of §4.5: a peer directory
// with liveness, monotonic miner_id assignment, heartbeat-driven stake
// adjustment, and reference-chain adjudication.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/logging"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/wire"
)

// livenessTimeout and livenessSweep implement §4.5's liveness loop: evict
// peers silent for more than 30s, checked every 10s.
const (
	livenessTimeout = 30 * time.Second
	livenessSweep   = 10 * time.Second
)

// peerEntry is the tracker-side PeerEntry of §3.
type peerEntry struct {
	host          string
	port          int
	lastHeartbeat time.Time
	minerID       int
}

// Tracker is the singleton coordinator.
type Tracker struct {
	selfID string
	log    logging.Logger

	mu        sync.Mutex
	active    map[string]*peerEntry // keyed by peer id "host:port"
	minerOf   map[string]int        // peer id -> miner_id, survives eviction
	nextMiner int
	stake     map[int]int // miner_id -> stake

	chainMu sync.Mutex
	chain   *chain.Chain

	ln *wire.Listener

	shutdownOnce sync.Once
	stopCh       chan struct{}
}

// New builds a Tracker with a fresh reference chain (genesis only).
func New(host string, port int, log logging.Logger) (*Tracker, error) {
	c, err := chain.NewChain()
	if err != nil {
		return nil, err
	}
	metrics.Init()
	return &Tracker{
		selfID:    wire.ID(host, port),
		log:       log,
		active:    make(map[string]*peerEntry),
		minerOf:   make(map[string]int),
		nextMiner: 1,
		stake:     make(map[int]int),
		chain:     c,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start binds the listener and launches the liveness sweep.
func (t *Tracker) Start(ctx context.Context) error {
	ln, err := wire.Listen(t.selfID)
	if err != nil {
		return err
	}
	t.ln = ln

	go ln.Serve(t.handleConn)
	go t.livenessLoop(ctx)
	return nil
}

// Shutdown closes the listening socket.
func (t *Tracker) Shutdown() {
	t.shutdownOnce.Do(func() {
		close(t.stopCh)
		if t.ln != nil {
			_ = t.ln.Close()
		}
	})
}

func (t *Tracker) logf(format string, args ...interface{}) {
	if t.log != nil {
		t.log.Infof(format, args...)
	}
}

func (t *Tracker) warnf(format string, args ...interface{}) {
	if t.log != nil {
		t.log.Warnf(format, args...)
	}
}
