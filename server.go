package rsgview

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// maxMessageSize bounds one framed server message.
const maxMessageSize = 16 << 20

// ReadFrame reads one message prefixed by its 4-byte big-endian length.
// buf is reused when large enough.
func ReadFrame(r io.Reader, buf []byte) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxMessageSize {
		return nil, fmt.Errorf("message of %d bytes exceeds %d", n, maxMessageSize)
	}
	if cap(buf) < int(n) {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes msg with its length prefix.
func WriteFrame(w io.Writer, msg []byte) error {
	frame := make([]byte, 4, 4+len(msg))
	binary.BigEndian.PutUint32(frame, uint32(len(msg)))
	frame = append(frame, msg...)
	_, err := w.Write(frame)
	return err
}

// MessageSink receives raw server messages, e.g. a Recorder.
type MessageSink interface {
	Record(msg []byte) error
}

// ServerConn streams scene-graph messages from the simulation server into
// a WorldModel, reconnecting after failures.
type ServerConn struct {
	Addr          string
	World         *WorldModel
	Logger        *slog.Logger
	RetryInterval time.Duration
	Sink          MessageSink // optional; sees every message received
}

// Run connects and ingests until ctx is cancelled, which is the only way
// it returns (with ctx.Err()). The world is reset whenever a session
// ends.
func (c *ServerConn) Run(ctx context.Context) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retry := c.RetryInterval
	if retry <= 0 {
		retry = 2 * time.Second
	}
	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "tcp", c.Addr)
		if err == nil {
			logger.Info("connected to server", "addr", c.Addr)
			err = c.session(ctx, conn, logger)
			c.World.Reset()
			if ctx.Err() == nil {
				logger.Warn("server session ended", "addr", c.Addr, "error", err)
			}
		} else if ctx.Err() == nil {
			logger.Debug("cannot reach server", "addr", c.Addr, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

// session reads frames until the connection fails or ctx is cancelled.
func (c *ServerConn) session(ctx context.Context, conn net.Conn, logger *slog.Logger) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	var buf []byte
	for {
		msg, err := ReadFrame(conn, buf)
		if err != nil {
			if isExpectedCloseError(err) {
				return io.EOF
			}
			return err
		}
		buf = msg
		if c.Sink != nil {
			if err := c.Sink.Record(msg); err != nil {
				logger.Warn("recording message failed", "error", err)
			}
		}
		if err := c.World.HandleMessage(msg); err != nil {
			logger.Debug("dropping server message", "size", len(msg), "error", err)
		}
	}
}
