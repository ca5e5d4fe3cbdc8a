package system

import (
	"sort"
	"time"
)

// Phase orders systems within one tick. All systems of a phase run before
// any system of the next phase.
type Phase int

const (
	// PhaseInput drains session in-queues and dispatches packet handlers.
	PhaseInput Phase = iota
	// PhasePreUpdate runs before game logic (event bus dispatch).
	PhasePreUpdate
	// PhaseUpdate runs the main game logic (movement, casts).
	PhaseUpdate
	// PhasePostUpdate runs sweeps and bookkeeping (respawns, expiry, saves).
	PhasePostUpdate
	// PhaseOutput flushes buffered packets to the write loops.
	PhaseOutput
)

// System is one unit of per-tick work. Update is called once per tick from
// the game loop goroutine, never concurrently.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Pipeline holds systems sorted by phase and runs them in order.
type Pipeline struct {
	systems []System
}

// NewPipeline sorts the given systems by phase. Registration order is
// preserved within a phase.
func NewPipeline(systems ...System) *Pipeline {
	p := &Pipeline{systems: make([]System, len(systems))}
	copy(p.systems, systems)
	sort.SliceStable(p.systems, func(i, j int) bool {
		return p.systems[i].Phase() < p.systems[j].Phase()
	})
	return p
}

// Tick runs every system once, in phase order.
func (p *Pipeline) Tick(dt time.Duration) {
	for _, s := range p.systems {
		s.Update(dt)
	}
}
