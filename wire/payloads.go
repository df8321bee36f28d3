package wire

import "github.com/cowboyphilip/votechain/chain"

// RegisterPayload is REGISTER's data: a peer announcing its listening
// endpoint to the tracker.
type RegisterPayload struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PeerListPayload is PEER_LIST's data: the tracker's full active-peer
// roster keyed by peer id ("host:port").
type PeerListPayload map[string]RegisterPayload

// MinerInfo is GET_MINER's reply data.
type MinerInfo struct {
	MinerID    int `json:"miner_id"`
	Difficulty int `json:"difficulty"`
}

// BlockchainPayload is the "<Blockchain>" wire shape carried by HEARTBEAT
// and CHAIN_RESPONSE (§6): the full chain, the sender's pending
// transactions, and the chain's aggregate stake score.
type BlockchainPayload struct {
	Chain               []*chain.Block       `json:"chain"`
	PendingTransactions []*chain.Transaction `json:"pending_transactions"`
	ChainScore          int                  `json:"chain_score"`
}

// HeartbeatPayload is HEARTBEAT's data.
type HeartbeatPayload struct {
	Blockchain BlockchainPayload `json:"blockchain"`
}

// ToBlockchainPayload snapshots c and pending into the wire shape.
func ToBlockchainPayload(c *chain.Chain, pending []*chain.Transaction) BlockchainPayload {
	return BlockchainPayload{
		Chain:               c.Blocks,
		PendingTransactions: pending,
		ChainScore:          c.Score(),
	}
}
