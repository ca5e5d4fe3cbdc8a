package handler

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/config"
	"github.com/embervale/server/internal/core/event"
	"github.com/embervale/server/internal/data"
	"github.com/embervale/server/internal/metrics"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/world"
)

// fakeConn is an in-memory transport for handler tests. Reads block until
// the connection is closed; writes are recorded for inspection.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	<-c.closed
	return nil, io.EOF
}

func (c *fakeConn) WriteMessage(data []byte, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "fake" }

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) write(i int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[i]
}

const handlerObjectYAML = `
objects:
  - id: copper_node
    name: Copper Vein
    kind: ore
    required_skill: 10
    max_harvests: 5
    respawn_delay_ms: 60000
    loot:
      - item_id: copper_ore
        chance: 1.0
        min: 1
        max: 1
`

const handlerSpellYAML = `
spells:
  - id: fire_bolt
    mana_cost: 20
    cooldown_ms: 5000
    requires_target: true
    range: 350
    effects:
      - kind: damage
        base: 25
        attack_scale: 0.6
        level_scale: 1.5
  - id: minor_heal
    mana_cost: 10
    effects:
      - kind: heal
        base: 15
  - id: stone_skin
    mana_cost: 25
    effects:
      - kind: buff
        duration_ms: 15000
        modifiers:
          defense: 10
  - id: blink
    mana_cost: 30
    cooldown_ms: 12000
    effects:
      - kind: teleport
  - id: longshot
    mana_cost: 20
    cooldown_ms: 5000
    requires_target: true
    range: 350
    min_range: 50
    effects:
      - kind: damage
        base: 25
`

const handlerItemYAML = `
items:
  - id: copper_ore
    name: Copper Ore
    max_stack: 20
`

func testDeps(t *testing.T) *Deps {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	objectTable, err := data.LoadObjectTable(write("objects.yaml", handlerObjectYAML))
	if err != nil {
		t.Fatal(err)
	}
	spellTable, err := data.LoadSpellTable(write("spells.yaml", handlerSpellYAML))
	if err != nil {
		t.Fatal(err)
	}
	itemTable, err := data.LoadItemTable(write("items.yaml", handlerItemYAML))
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	log := zap.NewNop()
	sessions := gamenet.NewSessionStore()
	w := world.NewState(world.Bounds{
		MinX: cfg.World.MinX, MinY: cfg.World.MinY,
		MaxX: cfg.World.MaxX, MaxY: cfg.World.MaxY,
	}, sessions, log)
	return NewDeps(Deps{
		Log:     log,
		Config:  cfg,
		World:   w,
		Objects: world.NewObjectManager(w, objectTable, rand.New(rand.NewSource(1))),
		Spells:  world.NewSpellManager(spellTable),
		Effects: world.NewEffectManager(),
		Items:   itemTable,
		Bus:     event.NewBus(),
		Metrics: metrics.New(),
	})
}

// addPlayer registers a session plus an in-world player at (x, y).
func addPlayer(t *testing.T, deps *Deps, name string, x, y float64) (*world.PlayerInfo, *fakeConn) {
	t.Helper()
	fc := newFakeConn()
	sess := gamenet.NewSession(fc, 16, 64, time.Second, zap.NewNop())
	sess.State = packet.StateInWorld
	deps.World.Sessions().Add(sess)

	p := &world.PlayerInfo{
		CharID:    deps.World.NextEntityID(),
		SessionID: sess.ID,
		Session:   sess,
		Name:      name,
		X:         x, Y: y,
		Stats: world.DefaultStats(),
	}
	deps.World.AddPlayer(p)
	return p, fc
}

// flush pushes buffered output through the write loop and waits for it to
// land on the fake conn.
func flush(t *testing.T, p *world.PlayerInfo, fc *fakeConn, want int) {
	t.Helper()
	p.Session.FlushOutput()
	deadline := time.Now().Add(time.Second)
	for fc.writeCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("flushed %d writes, want %d", fc.writeCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func readerFor(msgBytes []byte) *packet.Reader {
	r := packet.NewReader(msgBytes)
	r.ReadC() // opcode, consumed by the registry in production
	return r
}

func TestChatSayRespectsRadius(t *testing.T) {
	deps := testDeps(t)
	a, _ := addPlayer(t, deps, "A", 100, 100)
	b, _ := addPlayer(t, deps, "B", 250, 100) // 150 away, inside say radius 200
	c, _ := addPlayer(t, deps, "C", 400, 100) // 300 away, outside

	msg := packet.ChatMessage{Channel: packet.ChatSay, Text: "hello"}
	HandleChat(a.Session, readerFor(msg.Encode()), deps)

	if a.Session.PendingOutput() != 1 {
		t.Fatalf("speaker pending = %d, want 1", a.Session.PendingOutput())
	}
	if b.Session.PendingOutput() != 1 {
		t.Fatalf("near listener pending = %d, want 1", b.Session.PendingOutput())
	}
	if c.Session.PendingOutput() != 0 {
		t.Fatalf("far listener pending = %d, want 0", c.Session.PendingOutput())
	}

	// Global reaches everyone.
	global := packet.ChatMessage{Channel: packet.ChatGlobal, Text: "hi all"}
	HandleChat(a.Session, readerFor(global.Encode()), deps)
	if c.Session.PendingOutput() != 1 {
		t.Fatalf("global did not reach far listener")
	}
}

func TestChatDropsEmptyAndUnknownChannel(t *testing.T) {
	deps := testDeps(t)
	a, _ := addPlayer(t, deps, "A", 100, 100)

	empty := packet.ChatMessage{Channel: packet.ChatSay, Text: ""}
	HandleChat(a.Session, readerFor(empty.Encode()), deps)
	unknown := packet.ChatMessage{Channel: 42, Text: "hm"}
	HandleChat(a.Session, readerFor(unknown.Encode()), deps)

	if a.Session.PendingOutput() != 0 {
		t.Fatalf("pending = %d, want 0", a.Session.PendingOutput())
	}
}

func TestJoinBindsPlayerMemoryOnly(t *testing.T) {
	deps := testDeps(t)
	fc := newFakeConn()
	sess := gamenet.NewSession(fc, 16, 64, time.Second, zap.NewNop())
	deps.World.Sessions().Add(sess)

	msg := packet.JoinRequest{Name: "Arden"}
	HandleJoin(sess, readerFor(msg.Encode()), deps)

	p := deps.World.GetByName("Arden")
	if p == nil {
		t.Fatal("player not registered")
	}
	if sess.State != packet.StateInWorld {
		t.Fatal("session not promoted to in-world")
	}
	if p.X != deps.Config.World.SpawnX || p.Y != deps.Config.World.SpawnY {
		t.Fatalf("spawned at (%f, %f)", p.X, p.Y)
	}
	// Starting spell learned.
	if deps.Spells.Get(p.CharID, "minor_heal") == nil {
		t.Fatal("starting spell not learned")
	}
	// Join ack, world state, spellbook, inventory.
	if got := sess.PendingOutput(); got != 4 {
		t.Fatalf("pending = %d, want 4", got)
	}
	if deps.Bus.Pending() != 1 {
		t.Fatalf("bus pending = %d, want 1", deps.Bus.Pending())
	}
}

func TestJoinRefusesDuplicateName(t *testing.T) {
	deps := testDeps(t)
	addPlayer(t, deps, "Arden", 100, 100)

	fc := newFakeConn()
	sess := gamenet.NewSession(fc, 16, 64, time.Second, zap.NewNop())
	deps.World.Sessions().Add(sess)

	msg := packet.JoinRequest{Name: "arden"} // case-insensitive clash
	HandleJoin(sess, readerFor(msg.Encode()), deps)

	if !sess.Closed() {
		t.Fatal("duplicate join did not close the session")
	}
	if deps.World.PlayerCount() != 1 {
		t.Fatalf("player count = %d, want 1", deps.World.PlayerCount())
	}
}

func decodeHarvestResult(t *testing.T, payload []byte) (objectID int32, status world.HarvestStatus, depleted bool, loot int) {
	t.Helper()
	r := packet.NewReader(payload)
	if op := packet.Opcode(r.ReadC()); op != packet.S_OPCODE_HARVEST_RESULT {
		t.Fatalf("opcode = %#x", op)
	}
	r.ReadQ() // timestamp
	objectID = r.ReadD()
	status = world.HarvestStatus(r.ReadC())
	depleted = r.ReadC() == 1
	loot = int(r.ReadH())
	return
}

func TestHarvestTooFar(t *testing.T) {
	deps := testDeps(t)
	p, fc := addPlayer(t, deps, "A", 500, 500)
	obj, _ := deps.Objects.Spawn("copper_node", 1000, 1000, 0)

	msg := packet.HarvestRequest{ObjectID: obj.ID}
	HandleHarvest(p.Session, readerFor(msg.Encode()), deps)

	flush(t, p, fc, 1)
	_, status, _, _ := decodeHarvestResult(t, fc.write(0))
	if status != world.HarvestTooFar {
		t.Fatalf("status = %v, want too_far", status)
	}
	if obj.HarvestCount != 0 {
		t.Fatal("distance-rejected harvest consumed a charge")
	}
}

func TestHarvestSkillGateOnlyWhenEnforced(t *testing.T) {
	deps := testDeps(t)
	p, fc := addPlayer(t, deps, "A", 500, 500)
	obj, _ := deps.Objects.Spawn("copper_node", 520, 500, 0) // requires skill 10

	deps.Config.Gameplay.EnforceSkillReqs = true
	msg := packet.HarvestRequest{ObjectID: obj.ID}
	HandleHarvest(p.Session, readerFor(msg.Encode()), deps)

	flush(t, p, fc, 1)
	_, status, _, _ := decodeHarvestResult(t, fc.write(0))
	if status != world.HarvestSkillTooLow {
		t.Fatalf("status = %v, want skill_too_low", status)
	}

	// With enforcement off the same harvest succeeds.
	deps.Config.Gameplay.EnforceSkillReqs = false
	HandleHarvest(p.Session, readerFor(msg.Encode()), deps)
	flush(t, p, fc, 3) // result + inventory update
	_, status, _, loot := decodeHarvestResult(t, fc.write(1))
	if status != world.HarvestOK || loot != 1 {
		t.Fatalf("status = %v loot = %d, want ok/1", status, loot)
	}
	if p.CountItem("copper_ore") != 1 {
		t.Fatalf("inventory count = %d, want 1", p.CountItem("copper_ore"))
	}
}

func TestHarvestUnknownObject(t *testing.T) {
	deps := testDeps(t)
	p, fc := addPlayer(t, deps, "A", 500, 500)

	msg := packet.HarvestRequest{ObjectID: 9999}
	HandleHarvest(p.Session, readerFor(msg.Encode()), deps)
	flush(t, p, fc, 1)
	_, status, _, _ := decodeHarvestResult(t, fc.write(0))
	if status != world.HarvestNotFound {
		t.Fatalf("status = %v, want not_found", status)
	}
}

func TestCastDamageSpell(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	target, _ := addPlayer(t, deps, "B", 600, 500) // 100 away, range 350
	deps.Spells.Learn(caster.CharID, "fire_bolt")

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "fire_bolt", TargetID: target.CharID}, deps)

	// floor(25 + 0.6*attack(10) + 1.5*level(1)) = 32
	if target.Stats.HP != 68 {
		t.Fatalf("target HP = %d, want 68", target.Stats.HP)
	}
	if caster.Stats.MP != 30 {
		t.Fatalf("caster MP = %d, want 30", caster.Stats.MP)
	}
	entry := deps.Spells.Get(caster.CharID, "fire_bolt")
	if entry.CooldownUntil == 0 {
		t.Fatal("cooldown not started")
	}
}

func TestCastOutOfRange(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	target, _ := addPlayer(t, deps, "B", 1000, 500) // 500 away, range 350
	deps.Spells.Learn(caster.CharID, "fire_bolt")

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "fire_bolt", TargetID: target.CharID}, deps)

	if target.Stats.HP != target.Stats.MaxHP {
		t.Fatal("out-of-range cast dealt damage")
	}
	if caster.Stats.MP != caster.Stats.MaxMP {
		t.Fatal("failed cast consumed mana")
	}
}

func TestCastInsideMinRangeFails(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	target, _ := addPlayer(t, deps, "B", 520, 500) // 20 away, min range 50
	deps.Spells.Learn(caster.CharID, "longshot")

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "longshot", TargetID: target.CharID}, deps)

	if target.Stats.HP != target.Stats.MaxHP {
		t.Fatal("too-close cast dealt damage")
	}
	if caster.Stats.MP != caster.Stats.MaxMP {
		t.Fatal("failed cast consumed mana")
	}
	if entry := deps.Spells.Get(caster.CharID, "longshot"); entry.CooldownUntil != 0 {
		t.Fatal("failed cast started the cooldown")
	}
}

func TestCastGroundTeleportClampsToBounds(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	deps.Spells.Learn(caster.CharID, "blink")
	caster.VX, caster.VY = 150, 0

	ProcessCast(caster.SessionID, packet.CastSpell{
		SpellID: "blink", HasGround: true, GroundX: 99999, GroundY: -50,
	}, deps)

	wantX, wantY := deps.Config.World.MaxX, deps.Config.World.MinY
	if caster.X != wantX || caster.Y != wantY {
		t.Fatalf("position = (%v, %v), want (%v, %v)", caster.X, caster.Y, wantX, wantY)
	}
	if caster.VX != 0 || caster.VY != 0 {
		t.Fatal("teleport left velocity running")
	}
	if caster.Stats.MP != caster.Stats.MaxMP-30 {
		t.Fatalf("caster MP = %d, want %d", caster.Stats.MP, caster.Stats.MaxMP-30)
	}
	// Position correction, cast result, nearby effect announcement.
	if got := caster.Session.PendingOutput(); got != 3 {
		t.Fatalf("caster pending = %d, want 3", got)
	}
}

func TestCastInsufficientManaLeavesCooldownUntouched(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	target, _ := addPlayer(t, deps, "B", 600, 500)
	deps.Spells.Learn(caster.CharID, "fire_bolt")
	caster.Stats.MP = 15 // cost 20

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "fire_bolt", TargetID: target.CharID}, deps)

	if caster.Stats.MP != 15 {
		t.Fatalf("MP = %d, want 15", caster.Stats.MP)
	}
	if entry := deps.Spells.Get(caster.CharID, "fire_bolt"); entry.CooldownUntil != 0 {
		t.Fatal("failed cast started the cooldown")
	}
}

func TestCastSelfHealClampsAtMax(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	deps.Spells.Learn(caster.CharID, "minor_heal")
	caster.Stats.HP = 95

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "minor_heal"}, deps)

	if caster.Stats.HP != caster.Stats.MaxHP {
		t.Fatalf("HP = %d, want %d", caster.Stats.HP, caster.Stats.MaxHP)
	}
}

func TestCastBuffRegistersTimedEffect(t *testing.T) {
	deps := testDeps(t)
	caster, _ := addPlayer(t, deps, "A", 500, 500)
	deps.Spells.Learn(caster.CharID, "stone_skin")

	ProcessCast(caster.SessionID, packet.CastSpell{SpellID: "stone_skin"}, deps)

	if deps.Effects.Count() != 1 {
		t.Fatalf("effects = %d, want 1", deps.Effects.Count())
	}
	mods := deps.Effects.AggregateModifiers(caster.CharID)
	if mods["defense"] != 10 {
		t.Fatalf("defense modifier = %d, want 10", mods["defense"])
	}
}

func TestCleanupRemovesPlayerAndBroadcastsLeave(t *testing.T) {
	deps := testDeps(t)
	a, _ := addPlayer(t, deps, "A", 500, 500)
	b, _ := addPlayer(t, deps, "B", 600, 500)
	deps.Spells.Learn(a.CharID, "minor_heal")

	Cleanup(a.Session, deps)

	if deps.World.PlayerCount() != 1 {
		t.Fatalf("player count = %d, want 1", deps.World.PlayerCount())
	}
	if deps.World.GetByName("A") != nil {
		t.Fatal("player still resolvable by name")
	}
	if !a.Session.Closed() {
		t.Fatal("session not closed")
	}
	if deps.World.Sessions().Get(a.SessionID) != nil {
		t.Fatal("session still in store")
	}
	if len(deps.Spells.Spellbook(a.CharID)) != 0 {
		t.Fatal("spellbook survived cleanup")
	}
	if b.Session.PendingOutput() != 1 {
		t.Fatalf("survivor pending = %d, want 1 (leave)", b.Session.PendingOutput())
	}
}

func TestSetTargetResolvesPlayerAndObject(t *testing.T) {
	deps := testDeps(t)
	a, _ := addPlayer(t, deps, "A", 500, 500)
	b, _ := addPlayer(t, deps, "B", 600, 500)
	obj, _ := deps.Objects.Spawn("copper_node", 700, 500, 0)

	msg := packet.SetTarget{EntityID: b.CharID}
	HandleSetTarget(a.Session, readerFor(msg.Encode()), deps)
	if a.TargetID != b.CharID {
		t.Fatalf("target = %d, want %d", a.TargetID, b.CharID)
	}

	msg = packet.SetTarget{EntityID: obj.ID}
	HandleSetTarget(a.Session, readerFor(msg.Encode()), deps)
	if a.TargetID != obj.ID {
		t.Fatalf("target = %d, want %d", a.TargetID, obj.ID)
	}

	// Unresolvable id clears the target.
	msg = packet.SetTarget{EntityID: 9999}
	HandleSetTarget(a.Session, readerFor(msg.Encode()), deps)
	if a.TargetID != 0 {
		t.Fatalf("target = %d, want 0", a.TargetID)
	}
}

func TestPingEchoesNonce(t *testing.T) {
	deps := testDeps(t)
	p, fc := addPlayer(t, deps, "A", 500, 500)

	msg := packet.Ping{Nonce: 77}
	HandlePing(p.Session, readerFor(msg.Encode()), deps)

	flush(t, p, fc, 1)
	r := packet.NewReader(fc.write(0))
	if op := packet.Opcode(r.ReadC()); op != packet.S_OPCODE_PONG {
		t.Fatalf("opcode = %#x", op)
	}
	r.ReadQ() // timestamp
	if got := r.ReadD(); got != 77 {
		t.Fatalf("nonce = %d, want 77", got)
	}
}
