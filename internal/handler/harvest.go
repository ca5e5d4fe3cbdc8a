package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/event"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/world"
)

// HandleHarvest processes C_HARVEST. Distance and skill gating live here;
// the object manager only runs the state machine. Every outcome is
// answered with S_HARVEST_RESULT on the requesting session.
func HandleHarvest(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.HarvestRequest
	msg.Decode(r)

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	now := time.Now()
	cfg := deps.Config.Gameplay
	deps.Metrics.HarvestTotal.Inc()

	obj := deps.Objects.Get(msg.ObjectID)
	if obj == nil {
		sendHarvestResult(sess, msg.ObjectID, world.HarvestResult{Status: world.HarvestNotFound}, now)
		return
	}
	if world.Dist(p.X, p.Y, obj.X, obj.Y) > cfg.HarvestDistance {
		sendHarvestResult(sess, msg.ObjectID, world.HarvestResult{Status: world.HarvestTooFar}, now)
		return
	}
	if cfg.EnforceSkillReqs && p.HarvestSkill < obj.Template.RequiredSkill {
		sendHarvestResult(sess, msg.ObjectID, world.HarvestResult{Status: world.HarvestSkillTooLow}, now)
		return
	}

	res := deps.Objects.Harvest(msg.ObjectID, now)
	if res.Status != world.HarvestOK {
		sendHarvestResult(sess, msg.ObjectID, res, now)
		return
	}

	// Grant what fits; a stack that does not fit flips the status to
	// inventory_full but keeps everything already granted.
	granted := res.Loot[:0]
	full := false
	for _, stack := range res.Loot {
		maxStack := 1
		if tmpl := deps.Items.Get(stack.ItemID); tmpl != nil {
			maxStack = tmpl.MaxStack
		}
		if p.AddItem(stack.ItemID, stack.Count, maxStack, cfg.InventoryCapacity) {
			granted = append(granted, stack)
		} else {
			full = true
		}
	}
	res.Loot = granted
	if full {
		res.Status = world.HarvestInventoryFull
	}

	sendHarvestResult(sess, msg.ObjectID, res, now)
	if len(res.Loot) > 0 {
		sendInventoryUpdate(sess, p, now)
	}

	if res.Depleted {
		deps.Bus.Emit(event.ObjectDepleted{
			ObjectID:   msg.ObjectID,
			TemplateID: obj.Template.ID,
			Removed:    res.Removed,
			X:          obj.X,
			Y:          obj.Y,
		})
		if res.Removed {
			deps.World.BroadcastNearby(obj.X, obj.Y, cfg.NotifyRadius,
				BuildObjectRemove(msg.ObjectID, now))
		}
		deps.Log.Debug("object depleted",
			zap.Int32("object", msg.ObjectID),
			zap.String("template", obj.Template.ID),
			zap.Bool("removed", res.Removed))
	}
}

func sendHarvestResult(sess *gamenet.Session, objectID int32, res world.HarvestResult, now time.Time) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HARVEST_RESULT)
	stamp(w, now)
	w.WriteD(objectID)
	w.WriteC(byte(res.Status))
	if res.Depleted {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteH(uint16(len(res.Loot)))
	for _, stack := range res.Loot {
		w.WriteS(stack.ItemID)
		w.WriteD(int32(stack.Count))
	}
	sess.Send(w.Bytes())
}
