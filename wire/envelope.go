// Package wire implements the messaging substrate shared by tracker and peer
// nodes: the envelope format, length-prefixed framing, message-type
// constants, and the overlay topology loader (§6, §4.7).
package wire

import "encoding/json"

// Message types exchanged between nodes (§6).
const (
	TypeRegister       = "REGISTER"
	TypePeerList       = "PEER_LIST"
	TypeHeartbeat      = "HEARTBEAT"
	TypeGetMiner       = "GET_MINER"
	TypeChainRequest   = "CHAIN_REQUEST"
	TypeChainResponse  = "CHAIN_RESPONSE"
	TypeNewBlock       = "NEW_BLOCK"
	TypeNewTransaction = "NEW_TRANSACTION"
)

// Envelope is the wire-level wrapper around every message: "{ type, data,
// timestamp, sender }". Data is kept as raw JSON so a receiver can dispatch
// on Type before committing to a payload shape.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
	Sender    string          `json:"sender"`
}

// NewEnvelope marshals payload into Data, stamping Type, Timestamp and
// Sender. A nil payload serializes as the JSON null literal, matching the
// CHAIN_REQUEST message's empty data.
func NewEnvelope(msgType string, sender string, timestamp float64, payload interface{}) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Type:      msgType,
		Data:      raw,
		Timestamp: timestamp,
		Sender:    sender,
	}, nil
}

// Decode unmarshals the envelope's Data field into out.
func (e *Envelope) Decode(out interface{}) error {
	return json.Unmarshal(e.Data, out)
}
