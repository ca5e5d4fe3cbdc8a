package system

import (
	"time"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
)

// SpellSystem resolves casts queued by the cast handler. Deferring the
// pipeline to the update phase keeps cast resolution ordered against
// movement within the same tick and against other casts across sessions.
type SpellSystem struct {
	deps  *handler.Deps
	queue []handler.CastRequest
}

func NewSpellSystem(deps *handler.Deps) *SpellSystem {
	return &SpellSystem{deps: deps}
}

// QueueCast implements handler.CastQueue. Game loop only.
func (s *SpellSystem) QueueCast(req handler.CastRequest) {
	s.queue = append(s.queue, req)
}

func (s *SpellSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *SpellSystem) Update(dt time.Duration) {
	if len(s.queue) == 0 {
		return
	}
	// Handlers may queue new casts while we process; those wait a tick.
	batch := s.queue
	s.queue = nil
	for _, req := range batch {
		handler.ProcessCast(req.SessionID, req.Msg, s.deps)
	}
}
