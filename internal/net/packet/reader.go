package packet

import (
	"encoding/binary"
	"math"
)

// Reader decodes a frame payload field by field. Reads past the end of the
// payload return zero values and latch an error; handlers never have to
// check length themselves.
type Reader struct {
	data []byte
	pos  int
	err  bool
}

// NewReader wraps a frame payload. The payload excludes the length header
// but includes the opcode byte; the caller normally consumes the opcode
// before handing the reader to a handler.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err reports whether any read ran past the end of the payload.
func (r *Reader) Err() bool {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadC reads one unsigned byte.
func (r *Reader) ReadC() byte {
	if r.pos+1 > len(r.data) {
		r.err = true
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

// ReadH reads a little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.pos+2 > len(r.data) {
		r.err = true
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

// ReadD reads a little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.pos+4 > len(r.data) {
		r.err = true
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v
}

// ReadQ reads a little-endian int64.
func (r *Reader) ReadQ() int64 {
	if r.pos+8 > len(r.data) {
		r.err = true
		return 0
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v
}

// ReadF reads a little-endian IEEE 754 float64.
func (r *Reader) ReadF() float64 {
	if r.pos+8 > len(r.data) {
		r.err = true
		return 0
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v
}

// ReadS reads a NUL-terminated UTF-8 string.
func (r *Reader) ReadS() string {
	start := r.pos
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			r.pos = i + 1
			return string(r.data[start:i])
		}
	}
	// Missing terminator: consume the rest and flag the frame.
	r.err = true
	r.pos = len(r.data)
	return string(r.data[start:])
}
