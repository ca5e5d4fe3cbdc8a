package net

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/net/packet"
)

var nextSessionID atomic.Uint64

// Session binds one live connection to an optional player identity.
// The exported game-state fields (State, CharID, LastActivity, the output
// buffer) are touched only from the game loop goroutine. InQueue is written
// by this session's read loop and drained by the game loop; the out queue
// is drained by this session's write loop.
type Session struct {
	ID   uint64
	conn Conn
	log  *zap.Logger

	// InQueue carries decoded payloads from the read loop to the game
	// loop. Closed by the read loop when the connection dies.
	InQueue chan []byte

	outQueue     chan []byte
	writeTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Game-loop-only state.
	State        packet.SessionState
	CharID       int32 // 0 = no bound player
	LastActivity time.Time
	outBuf       [][]byte
}

// NewSession wraps a connection and starts its read and write loops.
func NewSession(conn Conn, inQueueSize, outQueueSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           nextSessionID.Add(1),
		conn:         conn,
		log:          log,
		InQueue:      make(chan []byte, inQueueSize),
		outQueue:     make(chan []byte, outQueueSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
		State:        packet.StateHandshake,
		LastActivity: time.Now(),
	}
	go s.readLoop()
	go s.writeLoop()
	return s
}

// RemoteAddr returns the peer address for logging.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr()
}

// Closed reports whether the connection is gone. The game loop still owns
// cleanup of world state after this turns true.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close tears the connection down. Safe to call from any goroutine and
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.conn.Close()
	})
}

// Send buffers one payload for this session. Game loop only; the buffer is
// drained into the out queue by the output phase at the end of the tick.
func (s *Session) Send(data []byte) {
	s.outBuf = append(s.outBuf, data)
}

// PendingOutput reports how many payloads await the next flush. Game loop
// only.
func (s *Session) PendingOutput() int {
	return len(s.outBuf)
}

// FlushOutput moves buffered payloads to the write loop. A session that
// cannot keep up (full out queue) is closed rather than allowed to block
// the tick.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.outQueue <- data:
		default:
			s.log.Warn("out queue full, dropping session",
				zap.Uint64("session", s.ID),
				zap.String("addr", s.RemoteAddr()))
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

func (s *Session) readLoop() {
	defer close(s.InQueue)
	for {
		payload, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read loop ended",
					zap.Uint64("session", s.ID), zap.Error(err))
			}
			s.Close()
			return
		}
		select {
		case s.InQueue <- payload:
		case <-s.done:
			return
		}
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case data := <-s.outQueue:
			deadline := time.Now().Add(s.writeTimeout)
			if err := s.conn.WriteMessage(data, deadline); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write loop ended",
						zap.Uint64("session", s.ID), zap.Error(err))
				}
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
