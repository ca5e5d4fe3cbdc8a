package event

// --- Session lifecycle events ---

// PlayerJoined is emitted after a player is bound to a session and placed
// in the world. Subscribers: metrics, logging.
type PlayerJoined struct {
	CharID    int32
	SessionID uint64
	Name      string
	Rejoined  bool // rehydrated from storage rather than freshly created
}

// PlayerLeft is emitted after a player is removed from the world, whether
// by clean quit, socket error, or idle eviction.
type PlayerLeft struct {
	CharID    int32
	SessionID uint64
	Name      string
}

// --- World object events ---

// ObjectDepleted is emitted when a resource object reaches its max harvest
// count. Removed reports whether the object was deleted permanently
// (template without a respawn delay) instead of scheduled for respawn.
type ObjectDepleted struct {
	ObjectID   int32
	TemplateID string
	Removed    bool
	X, Y       float64
}
