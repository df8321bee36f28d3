// Package peernode implements the peer role of §4.4: it holds a chain and
// mempool, mines pending transactions under proof-of-work, gossips to
// overlay neighbors, and registers/heartbeats with the tracker.
package peernode

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cowboyphilip/votechain/chain"
	"github.com/cowboyphilip/votechain/events"
	"github.com/cowboyphilip/votechain/logging"
	"github.com/cowboyphilip/votechain/metrics"
	"github.com/cowboyphilip/votechain/sig"
	"github.com/cowboyphilip/votechain/wire"
)

// Config bundles a Node's fixed startup parameters, mirroring the CLI's
// positional arguments (§6).
type Config struct {
	Host           string
	Port           int
	TrackerHost    string
	TrackerPort    int
	TopologyFile   string
	AutoMine       bool
	Verifier       sig.Verifier
	Sink           events.Sink
	Logger         logging.Logger
	HeartbeatEvery time.Duration

	// InitialDifficulty seeds the locally cached difficulty used for the
	// very first mining round, before this node's first successful
	// GET_MINER exchange with the tracker populates the real value (§6's
	// "mining_difficulty" CLI positional).
	InitialDifficulty int
}

// Node is a single peer: its own chain, mempool, overlay roster, and
// mining loop.
type Node struct {
	selfID      string
	host        string
	port        int
	trackerAddr string

	verifier sig.Verifier
	sink     events.Sink
	log      logging.Logger

	voterID string
	keys    *sig.KeyPair

	chainMu sync.Mutex
	chain   *chain.Chain
	pool    *chain.Mempool

	minerMu    sync.Mutex
	minerID    int
	stakeValue int

	rosterMu sync.Mutex
	roster   map[string]wire.RegisterPayload
	topology *wire.Topology

	autoMineMu sync.Mutex
	autoMine   bool

	miningMu sync.Mutex
	mining   bool
	cancel   context.CancelFunc

	heartbeatEvery time.Duration
	dialLimiter    *rate.Limiter

	ln *wire.Listener

	shutdownOnce sync.Once
	stopCh       chan struct{}
}

// New builds a Node, generating a fresh signing identity for this peer's
// own votes (voter_id = the hex-encoded public key, §3).
func New(cfg Config) (*Node, error) {
	c, err := chain.NewChain()
	if err != nil {
		return nil, err
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = sig.DemoAlwaysTrue{}
	}
	sinkImpl := cfg.Sink
	if sinkImpl == nil {
		sinkImpl = events.NullSink{}
	}
	hbEvery := cfg.HeartbeatEvery
	if hbEvery <= 0 {
		hbEvery = 10 * time.Second
	}

	keys, err := sig.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	topology, err := wire.LoadTopology(cfg.TopologyFile)
	if err != nil {
		return nil, err
	}

	n := &Node{
		selfID:         wire.ID(cfg.Host, cfg.Port),
		host:           cfg.Host,
		port:           cfg.Port,
		trackerAddr:    wire.ID(cfg.TrackerHost, cfg.TrackerPort),
		verifier:       verifier,
		sink:           sinkImpl,
		log:            cfg.Logger,
		voterID:        keys.PublicHex,
		keys:           keys,
		chain:          c,
		pool:           chain.NewMempool(),
		roster:         make(map[string]wire.RegisterPayload),
		topology:       topology,
		autoMine:       cfg.AutoMine,
		heartbeatEvery: hbEvery,
		dialLimiter:    rate.NewLimiter(rate.Limit(20), 20),
		stopCh:         make(chan struct{}),
	}
	if cfg.InitialDifficulty > 0 {
		n.stakeValue = chain.DefaultDifficulty - cfg.InitialDifficulty
	}
	metrics.Init()
	return n, nil
}

// VoterID returns this peer's public voter identifier.
func (n *Node) VoterID() string {
	return n.voterID
}

// SelfID returns this peer's "host:port" wire identifier.
func (n *Node) SelfID() string {
	return n.selfID
}

// Start binds the listener, registers with the tracker, and launches the
// heartbeat loop. Serve runs on its own goroutine; Start returns after the
// listener is bound and the REGISTER send has been attempted.
func (n *Node) Start(ctx context.Context) error {
	ln, err := wire.Listen(n.selfID)
	if err != nil {
		return err
	}
	n.ln = ln

	go ln.Serve(n.handleConn)
	go n.heartbeatLoop(ctx)

	n.register()
	return nil
}

// Shutdown flips the running flag and closes the listening socket, per
// §5's shutdown discipline.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		close(n.stopCh)
		if n.ln != nil {
			_ = n.ln.Close()
		}
		n.miningMu.Lock()
		if n.cancel != nil {
			n.cancel()
		}
		n.miningMu.Unlock()
	})
}

// ChainSummary is the payload returned by chain_info (§4.4).
type ChainSummary struct {
	ChainLength  int    `json:"chain_length"`
	LastHash     string `json:"last_hash"`
	PendingCount int    `json:"pending_count"`
	MiningFlag   bool   `json:"mining_flag"`
}

// ChainInfo implements chain_info() (§4.4).
func (n *Node) ChainInfo() ChainSummary {
	n.chainMu.Lock()
	length := n.chain.Length()
	last := n.chain.Last()
	pending := n.pool.Len()
	n.chainMu.Unlock()

	n.miningMu.Lock()
	mining := n.mining
	n.miningMu.Unlock()

	lastHash := ""
	if last != nil {
		lastHash = last.Hash
	}
	return ChainSummary{ChainLength: length, LastHash: lastHash, PendingCount: pending, MiningFlag: mining}
}

// Results implements results() (§4.4): tallies committed votes only.
func (n *Node) Results() map[string]int {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()
	return n.chain.Results()
}

// SetAutoMine implements set_auto_mine(bool) (§4.4).
func (n *Node) SetAutoMine(on bool) {
	n.autoMineMu.Lock()
	n.autoMine = on
	n.autoMineMu.Unlock()
}

func (n *Node) autoMineOn() bool {
	n.autoMineMu.Lock()
	defer n.autoMineMu.Unlock()
	return n.autoMine
}

// knownPeers returns a snapshot of the roster's ids (for random chain
// request targets), excluding self.
func (n *Node) knownPeers() []string {
	n.rosterMu.Lock()
	defer n.rosterMu.Unlock()
	out := make([]string, 0, len(n.roster))
	for id := range n.roster {
		if id != n.selfID {
			out = append(out, id)
		}
	}
	return out
}

// randomPeer returns a uniformly chosen known peer, or "" if none are
// known.
func (n *Node) randomPeer() string {
	peers := n.knownPeers()
	if len(peers) == 0 {
		return ""
	}
	return peers[rand.Intn(len(peers))]
}

func (n *Node) logf(format string, args ...interface{}) {
	if n.log != nil {
		n.log.Infof(format, args...)
	}
}

func (n *Node) warnf(format string, args ...interface{}) {
	if n.log != nil {
		n.log.Warnf(format, args...)
	}
}
