package rsgview

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// maxDatagram bounds the receive buffer. Senders historically kept
// packets under 512 bytes; anything up to the UDP limit is accepted.
const maxDatagram = 64 * 1024

// ExecutePacket decodes a datagram and executes its commands in wire
// order. Commands decoded before a decode failure still run. Unresolved
// agent references are routine and only counted as skipped. It returns
// how many commands ran and the decode error, if any. A nil logger uses
// slog.Default().
func ExecutePacket(data []byte, t *DrawTarget, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cmds, decodeErr := DecodePacket(data)
	ran := 0
	for _, cmd := range cmds {
		if err := cmd.Execute(t); err != nil {
			if errors.Is(err, ErrUnresolvedAgent) {
				logger.Debug("dropping draw command", "error", err)
			} else {
				logger.Warn("draw command failed", "error", err)
			}
			continue
		}
		ran++
	}
	return ran, decodeErr
}

// Receiver reads draw datagrams from a UDP socket and executes them
// against a DrawTarget.
type Receiver struct {
	conn   *net.UDPConn
	target *DrawTarget
	logger *slog.Logger
}

// ListenDraw binds the draw socket. A failure wraps ErrSocketBind; the
// caller should carry on without draw commands. A nil logger uses
// slog.Default().
func ListenDraw(addr string, target *DrawTarget, logger *slog.Logger) (*Receiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrSocketBind, addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSocketBind, err)
	}
	return &Receiver{conn: conn, target: target, logger: logger}, nil
}

// Addr returns the bound address.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Run receives and executes packets until the socket is closed, then
// returns nil. Malformed packets are logged and otherwise ignored.
func (r *Receiver) Run() error {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if isExpectedCloseError(err) {
				return nil
			}
			return fmt.Errorf("receive draw packet: %w", err)
		}
		ran, err := ExecutePacket(buf[:n], r.target, r.logger)
		if err != nil {
			r.logger.Debug("abandoning rest of draw packet",
				"from", from, "size", n, "executed", ran, "error", err)
		}
	}
}

// Close closes the socket, which makes Run return.
func (r *Receiver) Close() error {
	return r.conn.Close()
}
