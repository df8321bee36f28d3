package tracker

import (
	"context"
	"time"

	"github.com/cowboyphilip/votechain/metrics"
)

// livenessLoop implements §4.5's liveness sweep: every 10s, evict peers
// silent for more than 30s. A miner_id and its stake are never destroyed
// on eviction — only the active-peer table entry is removed, so a peer may
// rejoin without losing its reputation (§4.5 invariant).
func (t *Tracker) livenessLoop(ctx context.Context) {
	ticker := time.NewTicker(livenessSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			if t.sweep() {
				t.broadcastRoster()
			}
		}
	}
}

// sweep evicts stale peers and reports whether any eviction occurred.
func (t *Tracker) sweep() bool {
	cutoff := nowTime().Add(-livenessTimeout)

	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := false
	for id, entry := range t.active {
		if entry.lastHeartbeat.Before(cutoff) {
			delete(t.active, id)
			evicted = true
			metrics.PeersEvicted.Inc()
			t.logf("evicted stale peer %s (miner %d)", id, entry.minerID)
		}
	}
	return evicted
}
