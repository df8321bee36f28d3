package peernode

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cowboyphilip/votechain/sig"
	"github.com/cowboyphilip/votechain/wire"
)

// newTestNode builds a peer with a cheap (instant) mining difficulty and no
// reachable tracker, suitable for exercising the chain/mempool/gossip paths
// in isolation.
func newTestNode(t *testing.T, host string, port int, trackerPort int, topologyFile string) *Node {
	t.Helper()
	n, err := New(Config{
		Host:              host,
		Port:              port,
		TrackerHost:       "127.0.0.1",
		TrackerPort:       trackerPort,
		TopologyFile:      topologyFile,
		Verifier:          sig.DemoAlwaysTrue{},
		InitialDifficulty: 1, // stake_value snapshot 3 -> difficulty 1 (MinDifficulty)
		HeartbeatEvery:    time.Hour,
	})
	require.NoError(t, err)
	return n
}

func mineAndWait(t *testing.T, n *Node) {
	t.Helper()
	require.True(t, n.MineNow())
	require.Eventually(t, func() bool {
		return !n.ChainInfo().MiningFlag
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubmitVoteAndMineCommitsTransaction(t *testing.T) {
	n := newTestNode(t, "127.0.0.1", 19401, 19499, "")
	require.NoError(t, n.Start(context.Background()))
	defer n.Shutdown()

	assert.True(t, n.SubmitVote("X"))
	mineAndWait(t, n)

	info := n.ChainInfo()
	assert.Equal(t, 2, info.ChainLength)
	assert.Equal(t, 0, info.PendingCount)
	assert.Equal(t, map[string]int{"X": 1}, n.Results())
}

func TestDoubleVoteRejected(t *testing.T) {
	n := newTestNode(t, "127.0.0.1", 19402, 19499, "")
	require.NoError(t, n.Start(context.Background()))
	defer n.Shutdown()

	assert.True(t, n.SubmitVote("X"))
	mineAndWait(t, n)

	assert.False(t, n.SubmitVote("Y"))
	assert.Equal(t, map[string]int{"X": 1}, n.Results())
}

func TestGossipConvergenceOverCliqueTopology(t *testing.T) {
	dir := t.TempDir()
	topoPath := dir + "/topology.dat"
	content := "" +
		"127.0.0.1:19411 -> 127.0.0.1:19412, 127.0.0.1:19413\n" +
		"127.0.0.1:19412 -> 127.0.0.1:19411, 127.0.0.1:19413\n" +
		"127.0.0.1:19413 -> 127.0.0.1:19411, 127.0.0.1:19412\n"
	require.NoError(t, os.WriteFile(topoPath, []byte(content), 0o644))

	a := newTestNode(t, "127.0.0.1", 19411, 19499, topoPath)
	b := newTestNode(t, "127.0.0.1", 19412, 19499, topoPath)
	c := newTestNode(t, "127.0.0.1", 19413, 19499, topoPath)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	require.NoError(t, b.Start(ctx))
	require.NoError(t, c.Start(ctx))
	defer a.Shutdown()
	defer b.Shutdown()
	defer c.Shutdown()

	assert.True(t, a.SubmitVote("X"))
	mineAndWait(t, a)

	require.Eventually(t, func() bool {
		return b.ChainInfo().ChainLength == 2 && c.ChainInfo().ChainLength == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, a.ChainInfo().LastHash, b.ChainInfo().LastHash)
	assert.Equal(t, a.ChainInfo().LastHash, c.ChainInfo().LastHash)
}

func TestForkResolutionViaChainRequest(t *testing.T) {
	dir := t.TempDir()
	topoPath := dir + "/topology.dat"
	content := "" +
		"127.0.0.1:19422 -> 127.0.0.1:19421\n"
	require.NoError(t, os.WriteFile(topoPath, []byte(content), 0o644))

	a := newTestNode(t, "127.0.0.1", 19421, 19499, topoPath)
	b := newTestNode(t, "127.0.0.1", 19422, 19499, topoPath)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	require.NoError(t, b.Start(ctx))
	defer a.Shutdown()
	defer b.Shutdown()

	// Advance A two blocks ahead of B without gossiping, then hand B a
	// block that doesn't fit its tip (mismatched previous_hash): B must
	// issue CHAIN_REQUEST to its only known neighbor (A) and adopt A's
	// longer chain once it responds.
	assert.True(t, a.SubmitVote("X"))
	mineAndWait(t, a)
	assert.True(t, a.SubmitVote("Y"))
	mineAndWait(t, a)

	b.rosterMu.Lock()
	b.roster[a.selfID] = wire.RegisterPayload{Host: "127.0.0.1", Port: 19421}
	b.rosterMu.Unlock()

	a.chainMu.Lock()
	tip := a.chain.Last()
	a.chainMu.Unlock()

	b.onNewBlock(envelopeFor(t, wire.TypeNewBlock, b.selfID, tip))

	require.Eventually(t, func() bool {
		return b.ChainInfo().ChainLength == 3
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, a.ChainInfo().LastHash, b.ChainInfo().LastHash)
}

// envelopeFor builds a decodable *wire.Envelope around payload, as if it had
// arrived over the wire, for exercising a handler directly in tests.
func envelopeFor(t *testing.T, msgType, sender string, payload interface{}) *wire.Envelope {
	t.Helper()
	env, err := wire.NewEnvelope(msgType, sender, nowSeconds(), payload)
	require.NoError(t, err)
	return env
}
