package wire

import (
	"net"
	"time"

	"github.com/cowboyphilip/votechain/errors"
)

// DialTimeout is the connect+IO budget for every outbound message (§5).
const DialTimeout = 5 * time.Second

// Send opens a fresh connection to addr, writes env, and closes — the
// fire-and-forget path used by REGISTER, HEARTBEAT, PEER_LIST,
// CHAIN_REQUEST, CHAIN_RESPONSE, NEW_BLOCK and NEW_TRANSACTION. Failures are
// ERR_TRANSPORT; callers log and drop per §5's best-effort semantics — there
// is no retry.
func Send(addr string, env *Envelope) error {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return errors.New(errors.ERR_TRANSPORT, "dial "+addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(DialTimeout)); err != nil {
		return errors.New(errors.ERR_TRANSPORT, "set deadline", err)
	}
	return WriteEnvelope(conn, env)
}

// SendRecv opens a fresh connection, writes env, and reads a single reply
// envelope on the same connection — the call/response path used only by
// GET_MINER, where the tracker's answer must return synchronously.
func SendRecv(addr string, env *Envelope) (*Envelope, error) {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return nil, errors.New(errors.ERR_TRANSPORT, "dial "+addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(DialTimeout)); err != nil {
		return nil, errors.New(errors.ERR_TRANSPORT, "set deadline", err)
	}
	if err := WriteEnvelope(conn, env); err != nil {
		return nil, err
	}
	return ReadEnvelope(conn)
}

// Listener wraps a TCP listener with the shutdown semantics of §5: closing
// the listening socket unblocks a pending Accept by failing it, which the
// Serve loop treats as a clean stop once running is false.
type Listener struct {
	ln      net.Listener
	running *boolFlag
}

// boolFlag is a tiny concurrency-safe, set-once flag backed by a channel
// that is closed when the flag is cleared.
type boolFlag struct {
	ch chan struct{}
}

func newBoolFlag() *boolFlag {
	return &boolFlag{ch: make(chan struct{})}
}

func (f *boolFlag) clear() {
	select {
	case <-f.ch:
	default:
		close(f.ch)
	}
}

func (f *boolFlag) isCleared() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Listen binds addr and returns a Listener ready for Serve.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New(errors.ERR_TRANSPORT, "listen "+addr, err)
	}
	return &Listener{ln: ln, running: newBoolFlag()}, nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Serve accepts connections until Close is called, handing each to handle
// on its own goroutine. handle is responsible for reading exactly one
// envelope (ReadEnvelope), dispatching it, and closing conn.
func (l *Listener) Serve(handle func(net.Conn)) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.running.isCleared() {
				return
			}
			continue
		}
		go handle(conn)
	}
}

// Close closes the listening socket exactly once, unblocking Serve's
// Accept.
func (l *Listener) Close() error {
	l.running.clear()
	return l.ln.Close()
}
