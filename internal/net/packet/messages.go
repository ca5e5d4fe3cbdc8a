package packet

// Typed client → server messages. Handlers decode with the Decode methods;
// Encode is the mirror used by bots and tests. Every message body starts
// with the client's millisecond timestamp.

// Chat channels.
const (
	ChatSay    byte = 0
	ChatGlobal byte = 1
	ChatGuild  byte = 2
	ChatParty  byte = 3
)

// Input direction bits.
const (
	inputUp byte = 1 << iota
	inputDown
	inputLeft
	inputRight
)

// JoinRequest binds a display name to the session.
type JoinRequest struct {
	Timestamp int64
	Name      string
}

func (m *JoinRequest) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_JOIN)
	w.WriteQ(m.Timestamp)
	w.WriteS(m.Name)
	return w.Bytes()
}

func (m *JoinRequest) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.Name = r.ReadS()
}

// InputState carries the current 4-direction key state.
type InputState struct {
	Timestamp int64
	Up        bool
	Down      bool
	Left      bool
	Right     bool
}

func (m *InputState) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_INPUT)
	w.WriteQ(m.Timestamp)
	var bits byte
	if m.Up {
		bits |= inputUp
	}
	if m.Down {
		bits |= inputDown
	}
	if m.Left {
		bits |= inputLeft
	}
	if m.Right {
		bits |= inputRight
	}
	w.WriteC(bits)
	return w.Bytes()
}

func (m *InputState) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	bits := r.ReadC()
	m.Up = bits&inputUp != 0
	m.Down = bits&inputDown != 0
	m.Left = bits&inputLeft != 0
	m.Right = bits&inputRight != 0
}

// ChatMessage carries one line of chat on a channel.
type ChatMessage struct {
	Timestamp int64
	Channel   byte
	Text      string
}

func (m *ChatMessage) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_CHAT)
	w.WriteQ(m.Timestamp)
	w.WriteC(m.Channel)
	w.WriteS(m.Text)
	return w.Bytes()
}

func (m *ChatMessage) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.Channel = r.ReadC()
	m.Text = r.ReadS()
}

// SetTarget asks for a descriptor of the given entity.
type SetTarget struct {
	Timestamp int64
	EntityID  int32
}

func (m *SetTarget) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_SET_TARGET)
	w.WriteQ(m.Timestamp)
	w.WriteD(m.EntityID)
	return w.Bytes()
}

func (m *SetTarget) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.EntityID = r.ReadD()
}

// ClearTarget drops the session's current target.
type ClearTarget struct {
	Timestamp int64
}

func (m *ClearTarget) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_CLEAR_TARGET)
	w.WriteQ(m.Timestamp)
	return w.Bytes()
}

func (m *ClearTarget) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
}

// HarvestRequest attempts one harvest on a resource object.
type HarvestRequest struct {
	Timestamp int64
	ObjectID  int32
}

func (m *HarvestRequest) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_HARVEST)
	w.WriteQ(m.Timestamp)
	w.WriteD(m.ObjectID)
	return w.Bytes()
}

func (m *HarvestRequest) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.ObjectID = r.ReadD()
}

// CastSpell attempts to cast a spell, optionally at a target entity or an
// explicit ground position (teleport destination).
type CastSpell struct {
	Timestamp int64
	SpellID   string
	TargetID  int32 // 0 = no target
	HasGround bool
	GroundX   float64
	GroundY   float64
}

func (m *CastSpell) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_CAST_SPELL)
	w.WriteQ(m.Timestamp)
	w.WriteS(m.SpellID)
	w.WriteD(m.TargetID)
	if m.HasGround {
		w.WriteC(1)
		w.WriteF(m.GroundX)
		w.WriteF(m.GroundY)
	} else {
		w.WriteC(0)
	}
	return w.Bytes()
}

func (m *CastSpell) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.SpellID = r.ReadS()
	m.TargetID = r.ReadD()
	m.HasGround = r.ReadC() == 1
	if m.HasGround {
		m.GroundX = r.ReadF()
		m.GroundY = r.ReadF()
	}
}

// Ping carries an opaque nonce echoed back in S_PONG.
type Ping struct {
	Timestamp int64
	Nonce     int32
}

func (m *Ping) Encode() []byte {
	w := NewWriterWithOpcode(C_OPCODE_PING)
	w.WriteQ(m.Timestamp)
	w.WriteD(m.Nonce)
	return w.Bytes()
}

func (m *Ping) Decode(r *Reader) {
	m.Timestamp = r.ReadQ()
	m.Nonce = r.ReadD()
}
