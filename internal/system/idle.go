package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
)

// IdleSystem evicts sessions that have sent nothing for longer than the
// configured idle timeout. Pings count as activity, so a live client never
// trips this.
type IdleSystem struct {
	deps    *handler.Deps
	timeout time.Duration
}

func NewIdleSystem(deps *handler.Deps, timeout time.Duration) *IdleSystem {
	return &IdleSystem{deps: deps, timeout: timeout}
}

func (s *IdleSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *IdleSystem) Update(dt time.Duration) {
	if s.timeout <= 0 {
		return
	}
	now := time.Now()
	for _, sess := range s.deps.World.Sessions().Raw() {
		if now.Sub(sess.LastActivity) <= s.timeout {
			continue
		}
		s.deps.Log.Info("session idle, evicting",
			zap.Uint64("session", sess.ID),
			zap.String("addr", sess.RemoteAddr()))
		handler.Cleanup(sess, s.deps)
	}
}
