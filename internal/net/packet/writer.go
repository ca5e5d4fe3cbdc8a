package packet

import (
	"encoding/binary"
	"math"
)

// Writer builds a frame payload. The first byte is the opcode; the frame
// length header is added by the transport when the payload is written out.
type Writer struct {
	buf []byte
}

// NewWriterWithOpcode starts a payload with the given opcode byte.
func NewWriterWithOpcode(op Opcode) *Writer {
	w := &Writer{buf: make([]byte, 0, 32)}
	w.buf = append(w.buf, byte(op))
	return w
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteC appends one unsigned byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH appends a little-endian uint16.
func (w *Writer) WriteH(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteD appends a little-endian int32.
func (w *Writer) WriteD(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteQ appends a little-endian int64.
func (w *Writer) WriteQ(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteF appends a little-endian IEEE 754 float64.
func (w *Writer) WriteF(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteS appends a NUL-terminated UTF-8 string.
func (w *Writer) WriteS(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}
