package handler

import (
	"time"

	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
)

const maxChatLength = 256

// HandleChat processes C_CHAT. "Say" reaches sessions whose player stands
// within the say radius of the speaker, plus always the speaker. Guild,
// party and global all go to every bound session: guild/party scoping
// rules are not defined yet, so those channels stay world-wide.
func HandleChat(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.ChatMessage
	msg.Decode(r)

	if msg.Text == "" || len(msg.Text) > maxChatLength {
		return
	}
	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}

	now := time.Now()
	line := buildChat(msg.Channel, p, msg.Text, now)

	switch msg.Channel {
	case packet.ChatSay:
		// BroadcastNearby covers the speaker too (distance zero).
		deps.World.BroadcastNearby(p.X, p.Y, deps.Config.Gameplay.SayRadius, line)
	case packet.ChatGlobal, packet.ChatGuild, packet.ChatParty:
		deps.World.BroadcastPlayers(line)
	default:
		// Unknown channel: drop.
	}
}
