package net

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0xde, 0xad, 0xbe, 0xef}
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %x, want %x", got, payload)
	}
}

func TestFrameRoundTripMultiple(t *testing.T) {
	var buf bytes.Buffer
	frames := [][]byte{{0x01}, {0x02, 0x03}, {0x04, 0x05, 0x06}}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for i, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame #%d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame #%d = %x, want %x", i, got, want)
		}
	}
}

func TestReadFrameRejectsBadLength(t *testing.T) {
	// Header claims total length 1, which cannot contain the header itself.
	buf := bytes.NewBuffer([]byte{0x01, 0x00})
	if _, err := ReadFrame(buf); err == nil {
		t.Fatal("expected error for undersized frame")
	}
}

func TestWriteFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, maxFrameSize+1)); err == nil {
		t.Fatal("expected error for oversized frame")
	}
}
