package packet

// Opcode is the one-byte message type tag at the start of every frame.
type Opcode byte

// Client → server opcodes.
const (
	C_OPCODE_JOIN         Opcode = 0x01
	C_OPCODE_INPUT        Opcode = 0x02
	C_OPCODE_CHAT         Opcode = 0x03
	C_OPCODE_SET_TARGET   Opcode = 0x04
	C_OPCODE_CLEAR_TARGET Opcode = 0x05
	C_OPCODE_HARVEST      Opcode = 0x06
	C_OPCODE_CAST_SPELL   Opcode = 0x07
	C_OPCODE_PING         Opcode = 0x08
)

// Server → client opcodes.
const (
	S_OPCODE_JOIN              Opcode = 0x41
	S_OPCODE_LEAVE             Opcode = 0x42
	S_OPCODE_WORLD_STATE       Opcode = 0x43
	S_OPCODE_UPDATE            Opcode = 0x44
	S_OPCODE_POSITION          Opcode = 0x45
	S_OPCODE_CHAT              Opcode = 0x46
	S_OPCODE_TARGET_INFO       Opcode = 0x47
	S_OPCODE_HARVEST_RESULT    Opcode = 0x48
	S_OPCODE_INVENTORY_UPDATE  Opcode = 0x49
	S_OPCODE_PONG              Opcode = 0x4a
	S_OPCODE_SPELL_CAST_RESULT Opcode = 0x4b
	S_OPCODE_SPELL_EFFECT      Opcode = 0x4c
	S_OPCODE_SPELLBOOK_UPDATE  Opcode = 0x4d
	S_OPCODE_OBJECT_SPAWN      Opcode = 0x4e
	S_OPCODE_OBJECT_REMOVE     Opcode = 0x4f
)

// SessionState gates which opcodes a session may send. An unbound session
// (no player attached) may only send C_JOIN and C_PING.
type SessionState int

const (
	StateHandshake SessionState = iota
	StateInWorld
)
