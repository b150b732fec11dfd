package rsgview

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// A recording is a zstd stream of entries: an 8-byte big-endian offset
// in nanoseconds since the recording started, then the message as a
// length-prefixed frame.

// Recorder writes server messages to a compressed session file.
type Recorder struct {
	mu    sync.Mutex
	file  *os.File
	buf   *bufio.Writer
	enc   *zstd.Encoder
	start time.Time
	now   func() time.Time

	closed bool
}

// NewRecorder creates (or truncates) path and starts a recording.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	bw := bufio.NewWriter(f)
	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &Recorder{file: f, buf: bw, enc: enc, start: time.Now(), now: time.Now}, nil
}

// Record appends msg with its arrival offset.
func (r *Recorder) Record(msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return os.ErrClosed
	}
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(r.now().Sub(r.start)))
	if _, err := r.enc.Write(ts[:]); err != nil {
		return err
	}
	return WriteFrame(r.enc, msg)
}

// Close flushes and closes the file. Later calls to Record fail with
// os.ErrClosed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.enc.Close()
	if ferr := r.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Replay reads a recording back.
type Replay struct {
	file *os.File
	dec  *zstd.Decoder
	buf  []byte
}

// OpenReplay opens a recording made by Recorder.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &Replay{file: f, dec: dec}, nil
}

// Next returns the next message and its offset. The message is only
// valid until the following call. The end of the recording is io.EOF.
func (p *Replay) Next() (time.Duration, []byte, error) {
	var ts [8]byte
	if _, err := io.ReadFull(p.dec, ts[:]); err != nil {
		return 0, nil, err
	}
	msg, err := ReadFrame(p.dec, p.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	p.buf = msg
	return time.Duration(binary.BigEndian.Uint64(ts[:])), msg, nil
}

// Close releases the file.
func (p *Replay) Close() error {
	p.dec.Close()
	return p.file.Close()
}

// PlayReplay feeds a recording into world at its original pace scaled by
// speed (2 plays twice as fast, 0 or less plays without waiting). It
// returns nil at the end of the recording and ctx.Err() if cancelled.
func PlayReplay(ctx context.Context, p *Replay, world *WorldModel, speed float64, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	begin := time.Now()
	for {
		at, msg, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read recording: %w", err)
		}
		if speed > 0 {
			due := begin.Add(time.Duration(float64(at) / speed))
			if wait := time.Until(due); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := world.HandleMessage(msg); err != nil {
			logger.Debug("dropping recorded message", "offset", at, "error", err)
		}
	}
}
