package ws

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/transport/base"
	"github.com/gorilla/websocket"
)

// closeGracePeriod is the time the peer has to answer a close message
const closeGracePeriod = time.Second

// wsConn implements base.FrameConn on a websocket connection, every binary message is one frame
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn, maxFrame int) base.FrameConn {
	if maxFrame <= 0 {
		maxFrame = base.DefaultMaxFrameSize
	}
	conn.SetReadLimit(int64(maxFrame))
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadFrame(buf []byte) ([]byte, error) {
	for {
		messageType, r, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			if errors.Is(err, websocket.ErrReadLimit) {
				return nil, fmt.Errorf("%w: %v", base.ErrFrameTooLarge, err)
			}
			return nil, err
		}

		if messageType != websocket.BinaryMessage {
			// text messages are not part of the protocol
			if _, err := io.Copy(io.Discard, r); err != nil {
				return nil, err
			}
			continue
		}

		if buf == nil {
			return io.ReadAll(r)
		}

		n, err := io.ReadFull(r, buf)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return buf[:n], nil
		case err != nil:
			return nil, err
		}

		// buf is full, the message must end here
		var probe [1]byte
		if m, _ := r.Read(probe[:]); m > 0 {
			return nil, fmt.Errorf("%w: message larger than %d bytes (read buffer)", base.ErrFrameTooLarge, len(buf))
		}
		return buf[:n], nil
	}
}

func (c *wsConn) WriteFrame(frame []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *wsConn) RemoteAddr() string                 { return c.conn.RemoteAddr().String() }

// Close sends a close message (WriteControl may be called concurrently to the writer) and closes the connection
func (c *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	return c.conn.Close()
}
