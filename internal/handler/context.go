package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/config"
	"github.com/embervale/server/internal/core/event"
	"github.com/embervale/server/internal/data"
	"github.com/embervale/server/internal/metrics"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/persist"
	"github.com/embervale/server/internal/world"
)

// CastRequest is queued by the cast handler and processed by the spell
// system in the update phase, so casts resolve in deterministic tick order
// alongside movement.
type CastRequest struct {
	SessionID uint64
	Msg       packet.CastSpell
}

// CastQueue accepts cast requests from handlers for deferred processing.
type CastQueue interface {
	QueueCast(req CastRequest)
}

// PlayerStore is the persistence collaborator. A nil store runs the world
// memory-only; every caller treats failures as best-effort.
type PlayerStore interface {
	LoadByName(ctx context.Context, name string) (*persist.PlayerRecord, error)
	Create(ctx context.Context, rec *persist.PlayerRecord) (int64, error)
	Update(ctx context.Context, id int64, rec *persist.PlayerRecord) error
	Delete(ctx context.Context, id int64) error
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Log     *zap.Logger
	Config  *config.Config
	World   *world.State
	Objects *world.ObjectManager
	Spells  *world.SpellManager
	Effects *world.EffectManager
	Items   *data.ItemTable
	Players PlayerStore // may be nil
	Bus     *event.Bus
	Casts   CastQueue // filled after the spell system is created
	Metrics *metrics.Metrics

	// joining tracks sessions with an in-flight persistence load so a
	// second C_JOIN cannot race the first. Game loop only.
	joining map[uint64]struct{}
}

// NewDeps finishes internal initialization of a Deps literal.
func NewDeps(d Deps) *Deps {
	d.joining = make(map[uint64]struct{})
	return &d
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *gamenet.Registry, deps *Deps) {
	handshake := []packet.SessionState{packet.StateHandshake}
	inWorld := []packet.SessionState{packet.StateInWorld}
	anyState := []packet.SessionState{packet.StateHandshake, packet.StateInWorld}

	reg.Register(packet.C_OPCODE_JOIN, handshake,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleJoin(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PING, anyState,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandlePing(sess, r, deps)
		},
	)

	reg.Register(packet.C_OPCODE_INPUT, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleInput(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CHAT, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleChat(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_SET_TARGET, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleSetTarget(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CLEAR_TARGET, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleClearTarget(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_HARVEST, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleHarvest(sess, r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CAST_SPELL, inWorld,
		func(sess *gamenet.Session, r *packet.Reader) {
			HandleCastSpell(sess, r, deps)
		},
	)
}
