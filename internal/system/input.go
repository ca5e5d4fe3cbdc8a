package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
	gamenet "github.com/embervale/server/internal/net"
)

// InputSystem is the single entry point of external state into the world:
// it adopts newly accepted sessions, runs completions posted by background
// goroutines, dispatches queued client frames, and reaps dead sessions.
// Everything downstream of this system sees a world only the game loop has
// touched.
type InputSystem struct {
	deps     *handler.Deps
	registry *gamenet.Registry
	pending  <-chan *gamenet.Session

	// maxPerTick bounds frames dispatched per session per tick so one
	// flooding client cannot starve the rest.
	maxPerTick int
}

func NewInputSystem(deps *handler.Deps, registry *gamenet.Registry, pending <-chan *gamenet.Session, maxPerTick int) *InputSystem {
	return &InputSystem{
		deps:       deps,
		registry:   registry,
		pending:    pending,
		maxPerTick: maxPerTick,
	}
}

func (s *InputSystem) Phase() system.Phase { return system.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	s.adoptPending()
	s.deps.World.DrainTasks()

	now := time.Now()
	for _, sess := range s.deps.World.Sessions().Raw() {
		if sess.Closed() {
			handler.Cleanup(sess, s.deps)
			continue
		}
		s.drainSession(sess, now)
	}
}

func (s *InputSystem) adoptPending() {
	for {
		select {
		case sess := <-s.pending:
			s.deps.World.Sessions().Add(sess)
		default:
			return
		}
	}
}

func (s *InputSystem) drainSession(sess *gamenet.Session, now time.Time) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case payload, ok := <-sess.InQueue:
			if !ok {
				// Read loop ended; the next tick's Closed() check reaps it.
				sess.Close()
				return
			}
			sess.LastActivity = now
			s.deps.Metrics.PacketsIn.Inc()
			if !s.registry.Dispatch(sess, sess.State, payload) {
				s.deps.Metrics.PacketsDropped.Inc()
			}
			if sess.Closed() {
				return
			}
		default:
			return
		}
	}
	s.deps.Log.Debug("per-tick packet budget hit",
		zap.Uint64("session", sess.ID))
}
