package wire

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/cowboyphilip/votechain/errors"
)

// maxMessageBytes bounds a single envelope's encoded JSON body, guarding
// against a hostile or corrupt length prefix driving an unbounded read.
const maxMessageBytes = 64 << 20

// WriteEnvelope writes env to w as "length || json_body", length being 4
// bytes big-endian unsigned equal to len(json_body) (§6).
func WriteEnvelope(w io.Writer, env *Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.New(errors.ERR_MALFORMED_MESSAGE, "encode envelope", err)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.New(errors.ERR_TRANSPORT, "write length prefix", err)
	}
	if _, err := w.Write(body); err != nil {
		return errors.New(errors.ERR_TRANSPORT, "write envelope body", err)
	}
	return nil
}

// ReadEnvelope reads one "length || json_body" frame from r and decodes the
// envelope. An oversized length prefix, undecodable JSON, or an envelope
// missing type or sender yields ERR_MALFORMED_MESSAGE; a failed or short
// read of the prefix or body yields ERR_TRANSPORT.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.New(errors.ERR_TRANSPORT, "read length prefix", err)
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxMessageBytes {
		return nil, errors.New(errors.ERR_MALFORMED_MESSAGE, "envelope exceeds maximum size", nil)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.New(errors.ERR_TRANSPORT, "read envelope body", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.New(errors.ERR_MALFORMED_MESSAGE, "decode envelope", err)
	}
	if env.Type == "" || env.Sender == "" {
		return nil, errors.New(errors.ERR_MALFORMED_MESSAGE, "envelope missing required fields", nil)
	}
	return &env, nil
}
