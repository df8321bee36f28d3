// Package metrics exposes the prometheus counters and gauges shared by the
// tracker and peer processes, following the lazily-initialized, package
// scoped var pattern used throughout the teranode cmd tree.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MempoolSize          prometheus.Gauge
	MiningInProgress     prometheus.Gauge
	CurrentDifficulty    prometheus.Gauge
	BlocksMined          prometheus.Counter
	TransactionsAdmitted prometheus.Counter
	TransactionsRejected prometheus.Counter
	ChainReplacements    prometheus.Counter
	HeartbeatsSent       prometheus.Counter
	HeartbeatsFailed     prometheus.Counter
	PeersEvicted         prometheus.Counter
	ChainRequestsIssued  prometheus.Counter

	initOnce sync.Once
)

// Init registers every votechain metric exactly once. Both tracker.New and
// peernode.New call it; calling it more than once is a no-op.
func Init() {
	initOnce.Do(initMetrics)
}

func initMetrics() {
	MempoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "votechain_mempool_size",
		Help: "Number of pending transactions in this peer's mempool.",
	})
	MiningInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "votechain_mining_in_progress",
		Help: "1 if a nonce search is currently running, 0 otherwise.",
	})
	CurrentDifficulty = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "votechain_current_difficulty",
		Help: "Leading-zero target in effect for this node's most recent mine or query.",
	})
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_blocks_mined_total",
		Help: "Number of blocks this peer has successfully mined.",
	})
	TransactionsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_transactions_admitted_total",
		Help: "Number of transactions admitted to the mempool.",
	})
	TransactionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_transactions_rejected_total",
		Help: "Number of transactions rejected (double-vote or bad signature).",
	})
	ChainReplacements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_chain_replacements_total",
		Help: "Number of times a node replaced its chain with a longer valid one.",
	})
	HeartbeatsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_heartbeats_sent_total",
		Help: "Number of heartbeats successfully sent to the tracker.",
	})
	HeartbeatsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_heartbeats_failed_total",
		Help: "Number of heartbeats that failed to send.",
	})
	PeersEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_peers_evicted_total",
		Help: "Number of peers evicted by the tracker's liveness sweep.",
	})
	ChainRequestsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "votechain_chain_requests_issued_total",
		Help: "Number of CHAIN_REQUEST messages issued after an invalid block arrival.",
	})
}
