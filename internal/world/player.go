package world

import (
	gamenet "github.com/embervale/server/internal/net"
)

// Stats are a player's authoritative combat attributes.
type Stats struct {
	HP        int
	MaxHP     int
	MP        int
	MaxMP     int
	Attack    int
	Defense   int
	MoveSpeed float64 // distance units per second
	Level     int
}

// DefaultStats for a freshly created player.
func DefaultStats() Stats {
	return Stats{
		HP:        100,
		MaxHP:     100,
		MP:        50,
		MaxMP:     50,
		Attack:    10,
		Defense:   5,
		MoveSpeed: 150,
		Level:     1,
	}
}

// ItemStack is one inventory slot.
type ItemStack struct {
	ItemID string
	Count  int
}

// PlayerInfo is the authoritative in-world state of one connected player.
// Mutated only on the game loop goroutine.
type PlayerInfo struct {
	CharID    int32
	SessionID uint64
	Session   *gamenet.Session
	Name      string

	// DBID is the storage row id; 0 until the create round-trip finishes
	// (or forever, when running without a database).
	DBID int64

	X, Y, Z float64
	VX, VY  float64

	Stats        Stats
	HarvestSkill int
	Inventory    []ItemStack

	TargetID int32 // 0 = no target

	// Dirty marks unsaved changes for the autosave sweep.
	Dirty bool
}

// AddItem stacks count of itemID into the inventory, respecting the stack
// size and the slot capacity. Returns false (and leaves the inventory
// untouched) if the items do not fit.
func (p *PlayerInfo) AddItem(itemID string, count, maxStack, capacity int) bool {
	if count <= 0 {
		return true
	}

	// Pass 1: room check on a scratch view so a partial fit never commits.
	remaining := count
	freeSlots := capacity - len(p.Inventory)
	for i := range p.Inventory {
		if p.Inventory[i].ItemID == itemID && p.Inventory[i].Count < maxStack {
			remaining -= maxStack - p.Inventory[i].Count
		}
	}
	for remaining > 0 && freeSlots > 0 {
		remaining -= maxStack
		freeSlots--
	}
	if remaining > 0 {
		return false
	}

	// Pass 2: commit.
	for i := range p.Inventory {
		if count == 0 {
			break
		}
		if p.Inventory[i].ItemID == itemID && p.Inventory[i].Count < maxStack {
			n := maxStack - p.Inventory[i].Count
			if n > count {
				n = count
			}
			p.Inventory[i].Count += n
			count -= n
		}
	}
	for count > 0 {
		n := maxStack
		if n > count {
			n = count
		}
		p.Inventory = append(p.Inventory, ItemStack{ItemID: itemID, Count: n})
		count -= n
	}
	p.Dirty = true
	return true
}

// CountItem returns the total count of itemID across all slots.
func (p *PlayerInfo) CountItem(itemID string) int {
	total := 0
	for i := range p.Inventory {
		if p.Inventory[i].ItemID == itemID {
			total += p.Inventory[i].Count
		}
	}
	return total
}
