package handler

import (
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
)

// HandleInput processes C_INPUT. The key state becomes a velocity; actual
// position change happens in the movement phase of the tick, so a client
// flooding inputs gains nothing.
func HandleInput(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.InputState
	msg.Decode(r)

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	deps.World.ApplyInput(p, msg.Up, msg.Down, msg.Left, msg.Right)
}
