package remote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/retree-dev/retree/pkg/wire"
)

// Session owns one websocket connection and the tree mounted over it.
// Writes go through a single mutex; gorilla connections allow only one
// concurrent writer.
type Session struct {
	conn    *websocket.Conn
	adapter *Adapter
	logger  *slog.Logger

	writeMu sync.Mutex
	seq     uint64
	enc     *wire.Encoder

	unmount func()
}

func newSession(conn *websocket.Conn, adapter *Adapter, logger *slog.Logger) *Session {
	return &Session{
		conn:    conn,
		adapter: adapter,
		logger:  logger,
		enc:     wire.NewEncoder(),
	}
}

// Flush ships all buffered adapter ops as one frame. A no-op when
// nothing is pending.
func (s *Session) Flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.seq++
	frame := s.adapter.Flush(s.seq)
	if frame == nil {
		s.seq--
		return nil
	}

	s.enc.Reset()
	frame.Encode(s.enc)
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteMessage(websocket.BinaryMessage, s.enc.Bytes())
}

// run reads event frames until the connection drops or the context ends.
// Every handled event is followed by a flush of whatever patches it
// produced.
func (s *Session) run(ctx context.Context) {
	defer func() {
		if s.unmount != nil {
			s.unmount()
		}
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("session read failed", "error", err)
			}
			return
		}

		d := wire.NewDecoder(msg)
		typ, err := d.ReadByte()
		if err != nil {
			s.logger.Warn("empty frame", "error", err)
			continue
		}

		switch typ {
		case wire.FrameEvent:
			ev, err := wire.DecodeEventFrame(d)
			if err != nil {
				s.logger.Warn("bad event frame", "error", err)
				continue
			}
			s.adapter.HandleEvent(ev)
			if err := s.Flush(); err != nil {
				s.logger.Error("flush failed", "error", err)
				return
			}

		case wire.FrameAck:
			// Acks are informational; nothing is retained for replay.

		default:
			s.logger.Warn("unknown frame type", "type", typ)
		}
	}
}
