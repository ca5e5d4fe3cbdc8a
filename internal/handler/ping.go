package handler

import (
	"time"

	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
)

// HandlePing answers C_PING with S_PONG, echoing the client nonce.
// Allowed in any session state so idle clients can keep the connection
// warm before joining.
func HandlePing(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.Ping
	msg.Decode(r)

	now := time.Now()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PONG)
	stamp(w, now)
	w.WriteD(msg.Nonce)
	sess.Send(w.Bytes())
}
