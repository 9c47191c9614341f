package base

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

const (
	// DefaultMaxFrameSize is used if no buffer size is configured
	DefaultMaxFrameSize = 64 * 1024 // 64 KB

	frameHeaderSize = 4
)

// ErrFrameTooLarge is returned for frames larger than the configured maximum frame size.
// The connection is closed afterwards, the remaining bytes of the frame are never read.
var ErrFrameTooLarge = errors.New("frame exceeds maximum frame size")

// -----------------------------------------------------------
// Frame Connections
// -----------------------------------------------------------

// FrameConn is a connection that transmits whole frames, it hides how frames are delimited
// on the wire (length prefix, websocket messages, ...).
//
// Thread-safety: One goroutine may read while another one writes. Close may be called at any time.
type FrameConn interface {
	// ReadFrame reads the next frame into buf. If buf is nil a new slice is allocated.
	// The returned frame aliases buf.
	ReadFrame(buf []byte) ([]byte, error)
	// WriteFrame writes a single frame
	WriteFrame(frame []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
	RemoteAddr() string
}

// streamConn delimits frames on a byte stream with a length prefix:
// - 4 bytes: frame length (uint32, big endian)
// - N bytes: frame
type streamConn struct {
	conn     net.Conn
	maxFrame int
}

// NewStreamConn wraps a stream connection (tcp, unix) in a FrameConn
func NewStreamConn(conn net.Conn, maxFrame int) FrameConn {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &streamConn{conn: conn, maxFrame: maxFrame}
}

func (c *streamConn) ReadFrame(buf []byte) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint32(header[:]))
	if length > c.maxFrame {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, length, c.maxFrame)
	}

	if buf == nil {
		buf = make([]byte, length)
	} else if len(buf) < length {
		return nil, fmt.Errorf("%w: %d > %d bytes (read buffer)", ErrFrameTooLarge, length, len(buf))
	}

	if _, err := io.ReadFull(c.conn, buf[:length]); err != nil {
		return nil, err
	}
	return buf[:length], nil
}

func (c *streamConn) WriteFrame(frame []byte) error {
	if len(frame) > c.maxFrame {
		return fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, len(frame), c.maxFrame)
	}

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header, uint32(len(frame)))

	// header and frame in a single (vectored) write
	b := net.Buffers{header, frame}
	_, err := b.WriteTo(c.conn)
	return err
}

func (c *streamConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *streamConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *streamConn) Close() error                       { return c.conn.Close() }
func (c *streamConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }

// isClosedErr returns true for errors that signal a regular end of the connection
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
