package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/embervale/server/internal/data"
)

// Harvest status codes, surfaced to the client in S_HARVEST_RESULT.
type HarvestStatus byte

const (
	HarvestOK HarvestStatus = iota
	HarvestNotFound
	HarvestNotActive
	HarvestDepleted
)

// Policy statuses stamped by the harvest handler. They share the wire enum
// but are never produced by the manager itself: the manager is the state
// machine, the handler is the policy.
const (
	HarvestTooFar HarvestStatus = iota + 10
	HarvestSkillTooLow
	HarvestInventoryFull
)

func (s HarvestStatus) String() string {
	switch s {
	case HarvestOK:
		return "ok"
	case HarvestNotFound:
		return "not_found"
	case HarvestNotActive:
		return "not_active"
	case HarvestDepleted:
		return "depleted"
	case HarvestTooFar:
		return "too_far"
	case HarvestSkillTooLow:
		return "skill_too_low"
	case HarvestInventoryFull:
		return "inventory_full"
	default:
		return "unknown"
	}
}

// ResourceObject is one harvestable world object instantiated from an
// immutable template.
type ResourceObject struct {
	ID           int32
	Template     *data.ObjectTemplate
	X, Y, Z      float64
	Active       bool
	HarvestCount int
	// RespawnAt is the unix-millisecond reactivation time; 0 while active.
	RespawnAt int64
}

// HarvestResult reports one harvest attempt. Loot entries are rolled
// independently by probability; on the final harvest Depleted is set, and
// Removed additionally when the template defines no respawn delay.
type HarvestResult struct {
	Status   HarvestStatus
	Loot     []ItemStack
	Depleted bool
	Removed  bool
}

// ObjectManager owns every resource object. It is the pure state machine:
// distance and skill gating are the calling handler's policy.
type ObjectManager struct {
	world     *State
	templates *data.ObjectTable
	objects   map[int32]*ResourceObject
	rng       *rand.Rand
}

func NewObjectManager(world *State, templates *data.ObjectTable, rng *rand.Rand) *ObjectManager {
	return &ObjectManager{
		world:     world,
		templates: templates,
		objects:   make(map[int32]*ResourceObject),
		rng:       rng,
	}
}

// Spawn instantiates a template at a position. Fails only on an unknown
// template id.
func (m *ObjectManager) Spawn(templateID string, x, y, z float64) (*ResourceObject, error) {
	tmpl := m.templates.Get(templateID)
	if tmpl == nil {
		return nil, fmt.Errorf("unknown object template %q", templateID)
	}
	obj := &ResourceObject{
		ID:       m.world.NextEntityID(),
		Template: tmpl,
		X:        x, Y: y, Z: z,
		Active: true,
	}
	m.objects[obj.ID] = obj
	return obj, nil
}

// Get returns the object with the given id, or nil.
func (m *ObjectManager) Get(id int32) *ResourceObject {
	return m.objects[id]
}

// Count returns the number of live objects, active or not.
func (m *ObjectManager) Count() int {
	return len(m.objects)
}

// All calls fn for every live object.
func (m *ObjectManager) All(fn func(*ResourceObject)) {
	for _, obj := range m.objects {
		fn(obj)
	}
}

// Harvest runs one harvest attempt against the state machine.
// Active → (count reaches max) → Depleted → (respawn elapses) → Active.
// A template without a respawn delay is removed permanently on depletion.
func (m *ObjectManager) Harvest(id int32, now time.Time) HarvestResult {
	obj, ok := m.objects[id]
	if !ok {
		return HarvestResult{Status: HarvestNotFound}
	}
	if !obj.Active {
		if obj.HarvestCount >= obj.Template.MaxHarvests {
			return HarvestResult{Status: HarvestDepleted}
		}
		return HarvestResult{Status: HarvestNotActive}
	}

	res := HarvestResult{Status: HarvestOK}
	for _, entry := range obj.Template.Loot {
		if m.rng.Float64() >= entry.Chance {
			continue
		}
		count := entry.Min
		if entry.Max > entry.Min {
			count += m.rng.Intn(entry.Max - entry.Min + 1)
		}
		if count > 0 {
			res.Loot = append(res.Loot, ItemStack{ItemID: entry.ItemID, Count: count})
		}
	}

	obj.HarvestCount++
	if obj.HarvestCount >= obj.Template.MaxHarvests {
		obj.Active = false
		res.Depleted = true
		if obj.Template.RespawnDelay > 0 {
			obj.RespawnAt = now.Add(obj.Template.RespawnDelay).UnixMilli()
		} else {
			delete(m.objects, id)
			res.Removed = true
		}
	}
	return res
}

// TickRespawns reactivates every depleted object whose respawn time has
// elapsed, resetting its harvest count. Returns the reactivated objects so
// the caller can announce them.
func (m *ObjectManager) TickRespawns(now time.Time) []*ResourceObject {
	var respawned []*ResourceObject
	nowMs := now.UnixMilli()
	for _, obj := range m.objects {
		if obj.Active || obj.RespawnAt == 0 || nowMs < obj.RespawnAt {
			continue
		}
		obj.Active = true
		obj.HarvestCount = 0
		obj.RespawnAt = 0
		respawned = append(respawned, obj)
	}
	return respawned
}
