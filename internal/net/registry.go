package net

import (
	"go.uber.org/zap"

	"github.com/embervale/server/internal/net/packet"
)

// Handler processes one decoded frame. Runs on the game loop goroutine.
type Handler func(sess *Session, r *packet.Reader)

type registration struct {
	states  []packet.SessionState
	handler Handler
}

// Registry maps opcodes to handlers with session-state preconditions.
// Dispatch runs on the game loop goroutine only.
type Registry struct {
	handlers map[packet.Opcode]registration
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[packet.Opcode]registration),
		log:      log,
	}
}

// Register binds an opcode to a handler, allowed only in the given states.
func (reg *Registry) Register(op packet.Opcode, states []packet.SessionState, h Handler) {
	reg.handlers[op] = registration{states: states, handler: h}
}

// Dispatch decodes the opcode from payload and invokes the matching
// handler. Unknown opcodes and precondition failures drop the frame; the
// connection stays open in every case. Returns false when the frame was
// dropped without reaching a handler.
func (reg *Registry) Dispatch(sess *Session, state packet.SessionState, payload []byte) bool {
	if len(payload) == 0 {
		reg.log.Warn("empty frame dropped")
		return false
	}
	r := packet.NewReader(payload)
	op := packet.Opcode(r.ReadC())

	entry, ok := reg.handlers[op]
	if !ok {
		reg.log.Warn("unknown opcode dropped", zap.Uint8("opcode", byte(op)))
		return false
	}

	allowed := false
	for _, s := range entry.states {
		if s == state {
			allowed = true
			break
		}
	}
	if !allowed {
		// Gameplay message from an unbound session: silently ignored.
		return false
	}

	entry.handler(sess, r)
	if r.Err() {
		reg.log.Warn("truncated frame", zap.Uint8("opcode", byte(op)))
	}
	return true
}
