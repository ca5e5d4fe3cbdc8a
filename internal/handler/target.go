package handler

import (
	"time"

	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
)

// HandleSetTarget processes C_SET_TARGET: resolve the entity id to a
// descriptor and answer the requesting session only. An id that resolves
// to nothing clears the target.
func HandleSetTarget(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.SetTarget
	msg.Decode(r)

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	now := time.Now()

	if target := deps.World.GetByCharID(msg.EntityID); target != nil {
		p.TargetID = target.CharID
		sendTargetInfo(sess, true, target.CharID, targetKindPlayer, target.Name,
			int32(target.Stats.Level), int32(target.Stats.HP), int32(target.Stats.MaxHP),
			target.X, target.Y, now)
		return
	}
	if obj := deps.Objects.Get(msg.EntityID); obj != nil {
		p.TargetID = obj.ID
		remaining := obj.Template.MaxHarvests - obj.HarvestCount
		sendTargetInfo(sess, true, obj.ID, targetKindObject, obj.Template.Name,
			int32(obj.Template.RequiredSkill), int32(remaining), int32(obj.Template.MaxHarvests),
			obj.X, obj.Y, now)
		return
	}

	p.TargetID = 0
	sendTargetInfo(sess, false, msg.EntityID, 0, "", 0, 0, 0, 0, 0, now)
}

// HandleClearTarget processes C_CLEAR_TARGET.
func HandleClearTarget(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.ClearTarget
	msg.Decode(r)

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	p.TargetID = 0
	sendTargetInfo(sess, false, 0, 0, "", 0, 0, 0, 0, 0, time.Now())
}
