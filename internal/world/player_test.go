package world

import "testing"

func TestAddItemStacksBeforeNewSlot(t *testing.T) {
	p := &PlayerInfo{}
	if !p.AddItem("copper_ore", 15, 20, 4) {
		t.Fatal("first add failed")
	}
	if !p.AddItem("copper_ore", 10, 20, 4) {
		t.Fatal("second add failed")
	}
	if len(p.Inventory) != 2 {
		t.Fatalf("slots = %d, want 2", len(p.Inventory))
	}
	if p.Inventory[0].Count != 20 || p.Inventory[1].Count != 5 {
		t.Fatalf("counts = %d, %d; want 20, 5", p.Inventory[0].Count, p.Inventory[1].Count)
	}
	if p.CountItem("copper_ore") != 25 {
		t.Fatalf("CountItem = %d, want 25", p.CountItem("copper_ore"))
	}
}

func TestAddItemNeverCommitsPartial(t *testing.T) {
	p := &PlayerInfo{}
	p.AddItem("oak_log", 10, 10, 2) // fills slot 1
	p.AddItem("gem", 1, 5, 2)       // fills slot 2

	// 6 gems need two slots worth of room; only 4 fit in the existing
	// stack, so the whole add must be refused.
	if p.AddItem("gem", 6, 5, 2) {
		t.Fatal("add should have been refused")
	}
	if p.CountItem("gem") != 1 {
		t.Fatalf("gem count = %d, want 1 (untouched)", p.CountItem("gem"))
	}

	// Exactly what fits still works.
	if !p.AddItem("gem", 4, 5, 2) {
		t.Fatal("exact-fit add failed")
	}
	if p.CountItem("gem") != 5 || len(p.Inventory) != 2 {
		t.Fatalf("gem count = %d, slots = %d", p.CountItem("gem"), len(p.Inventory))
	}
}

func TestAddItemZeroCount(t *testing.T) {
	p := &PlayerInfo{}
	if !p.AddItem("gem", 0, 5, 1) {
		t.Fatal("zero-count add should succeed")
	}
	if len(p.Inventory) != 0 {
		t.Fatal("zero-count add created a slot")
	}
}
