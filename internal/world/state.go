package world

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	gamenet "github.com/embervale/server/internal/net"
)

// Bounds are the axis-aligned world limits. Positions outside are rejected
// by movement validation.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Contains reports whether (x, y) lies inside the bounds (inclusive).
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Dist returns the euclidean distance between two points.
func Dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// State owns all authoritative entities. Every field is mutated only from
// the game loop goroutine; handlers and systems run on that goroutine.
type State struct {
	log    *zap.Logger
	bounds Bounds

	sessions *gamenet.SessionStore

	players  map[uint64]*PlayerInfo // by session id
	byCharID map[int32]*PlayerInfo
	byName   map[string]*PlayerInfo // lower-cased name

	// Entity ids are shared between players and resource objects so a
	// target id resolves unambiguously.
	nextEntityID int32

	// tasks carries completions of asynchronous work (persistence calls)
	// back onto the game loop.
	tasks chan func()
}

func NewState(bounds Bounds, sessions *gamenet.SessionStore, log *zap.Logger) *State {
	return &State{
		log:      log,
		bounds:   bounds,
		sessions: sessions,
		players:  make(map[uint64]*PlayerInfo),
		byCharID: make(map[int32]*PlayerInfo),
		byName:   make(map[string]*PlayerInfo),
		tasks:    make(chan func(), 256),
	}
}

// Bounds returns the world limits.
func (w *State) Bounds() Bounds {
	return w.bounds
}

// Sessions returns the session store.
func (w *State) Sessions() *gamenet.SessionStore {
	return w.sessions
}

// NextEntityID hands out the next id in the shared entity id space.
func (w *State) NextEntityID() int32 {
	w.nextEntityID++
	return w.nextEntityID
}

// Post schedules fn to run on the game loop at the start of the next tick.
// This is the only way background goroutines may touch world state. Drops
// the task (logged) if the queue is full rather than blocking a worker.
func (w *State) Post(fn func()) {
	select {
	case w.tasks <- fn:
	default:
		w.log.Error("world task queue full, dropping task")
	}
}

// DrainTasks runs all posted completions. Called once per tick.
func (w *State) DrainTasks() {
	for {
		select {
		case fn := <-w.tasks:
			fn()
		default:
			return
		}
	}
}

// --- Player registry ---

// AddPlayer registers a player and binds it to its session.
func (w *State) AddPlayer(p *PlayerInfo) {
	w.players[p.SessionID] = p
	w.byCharID[p.CharID] = p
	w.byName[strings.ToLower(p.Name)] = p
	p.Session.CharID = p.CharID
}

// RemovePlayer unregisters a player. The caller owns persistence and the
// leave broadcast.
func (w *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	p, ok := w.players[sessionID]
	if !ok {
		return nil
	}
	delete(w.players, sessionID)
	delete(w.byCharID, p.CharID)
	delete(w.byName, strings.ToLower(p.Name))
	return p
}

// GetBySession returns the player bound to a session, or nil.
func (w *State) GetBySession(sessionID uint64) *PlayerInfo {
	return w.players[sessionID]
}

// GetByCharID returns the player with the given entity id, or nil.
func (w *State) GetByCharID(charID int32) *PlayerInfo {
	return w.byCharID[charID]
}

// GetByName returns the player with the given display name, or nil.
// Lookup is case-insensitive.
func (w *State) GetByName(name string) *PlayerInfo {
	return w.byName[strings.ToLower(name)]
}

// PlayerCount returns the number of players in the world.
func (w *State) PlayerCount() int {
	return len(w.players)
}

// AllPlayers calls fn for every player in the world.
func (w *State) AllPlayers(fn func(*PlayerInfo)) {
	for _, p := range w.players {
		fn(p)
	}
}

// --- Fan-out helpers ---

// Broadcast buffers data for every session, bound or not.
func (w *State) Broadcast(data []byte) {
	w.sessions.ForEach(func(s *gamenet.Session) {
		s.Send(data)
	})
}

// BroadcastExcept buffers data for every session except one.
func (w *State) BroadcastExcept(data []byte, exceptSessionID uint64) {
	w.sessions.ForEach(func(s *gamenet.Session) {
		if s.ID != exceptSessionID {
			s.Send(data)
		}
	})
}

// BroadcastPlayers buffers data for every session with a bound player.
func (w *State) BroadcastPlayers(data []byte) {
	for _, p := range w.players {
		p.Session.Send(data)
	}
}

// BroadcastNearby buffers data for every bound session whose player lies
// within radius of (x, y). A flat scan over players is deliberate: the
// world holds at most a few hundred actors and a spatial index is not
// worth its bookkeeping here.
func (w *State) BroadcastNearby(x, y, radius float64, data []byte) {
	for _, p := range w.players {
		if Dist(x, y, p.X, p.Y) <= radius {
			p.Session.Send(data)
		}
	}
}

// BroadcastNearbyExcept is BroadcastNearby minus one session.
func (w *State) BroadcastNearbyExcept(x, y, radius float64, data []byte, exceptSessionID uint64) {
	for _, p := range w.players {
		if p.SessionID == exceptSessionID {
			continue
		}
		if Dist(x, y, p.X, p.Y) <= radius {
			p.Session.Send(data)
		}
	}
}

// --- Movement ---

// ApplyInput converts a 4-direction key state into the player's velocity.
// Diagonals are normalized to unit length before scaling by move speed, so
// moving diagonally is no faster than moving straight.
func (w *State) ApplyInput(p *PlayerInfo, up, down, left, right bool) {
	var dx, dy float64
	if up {
		dy -= 1
	}
	if down {
		dy += 1
	}
	if left {
		dx -= 1
	}
	if right {
		dx += 1
	}
	if dx != 0 && dy != 0 {
		inv := 1 / math.Sqrt2
		dx *= inv
		dy *= inv
	}
	p.VX = dx * p.Stats.MoveSpeed
	p.VY = dy * p.Stats.MoveSpeed
}

// IntegrateAndValidate advances the player by velocity*dt. A result outside
// world bounds rejects the whole move: position stays at its pre-tick
// value, velocity is zeroed, and corrected=true tells the caller to send
// the authoritative position back to that one client.
func (w *State) IntegrateAndValidate(p *PlayerInfo, dt time.Duration) (moved, corrected bool) {
	if p.VX == 0 && p.VY == 0 {
		return false, false
	}
	sec := dt.Seconds()
	nx := p.X + p.VX*sec
	ny := p.Y + p.VY*sec
	if !w.bounds.Contains(nx, ny) {
		p.VX = 0
		p.VY = 0
		return false, true
	}
	p.X = nx
	p.Y = ny
	p.Dirty = true
	return true, false
}
