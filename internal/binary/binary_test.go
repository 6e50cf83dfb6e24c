package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Len() != 0 {
		t.Errorf("Len after full read: got %d, want 0", r.Len())
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
		if r.Len() != 0 {
			t.Errorf("ReadU32(%v): %d bytes left", tt.encoded, r.Len())
		}

		w := NewWriter()
		w.WriteU32(tt.want)
		if !bytes.Equal(w.Bytes(), tt.encoded) {
			t.Errorf("WriteU32(%d): got %v, want %v", tt.want, w.Bytes(), tt.encoded)
		}
		if SizeU32(tt.want) != len(tt.encoded) {
			t.Errorf("SizeU32(%d): got %d, want %d", tt.want, SizeU32(tt.want), len(tt.encoded))
		}
	}
}

func TestReaderReadU32Errors(t *testing.T) {
	_, err := NewReader([]byte{0x80, 0x80}).ReadU32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated: expected ErrUnexpectedEOF, got %v", err)
	}

	_, err = NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}).ReadU32()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("overlong: expected ErrOverflow, got %v", err)
	}
}

func TestReaderReadU32UnusedHighBits(t *testing.T) {
	v, err := NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}).ReadU32()
	if err != nil || v != 0xffffffff {
		t.Fatalf("max uint32: got %d, %v", v, err)
	}

	for _, last := range []byte{0x10, 0x1f, 0x7f} {
		_, err := NewReader([]byte{0xff, 0xff, 0xff, 0xff, last}).ReadU32()
		if !errors.Is(err, ErrOverflow) {
			t.Errorf("fifth byte 0x%02x: expected ErrOverflow, got %v", last, err)
		}
	}

	_, err = NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}).ReadU64()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("ReadU64 tenth byte 0x02: expected ErrOverflow, got %v", err)
	}
}

func TestReaderReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("typeMap")
	r := NewReader(w.Bytes())

	name, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if name != "typeMap" {
		t.Errorf("ReadName: got %q, want %q", name, "typeMap")
	}

	_, err = NewReader([]byte{0x02, 0xff, 0xfe}).ReadName()
	if err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestReaderReadU32LE(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6D736100)
	if !bytes.Equal(w.Bytes(), []byte{0x00, 0x61, 0x73, 0x6d}) {
		t.Fatalf("WriteU32LE: got %v", w.Bytes())
	}
	got, err := NewReader(w.Bytes()).ReadU32LE()
	if err != nil {
		t.Fatalf("ReadU32LE: %v", err)
	}
	if got != 0x6D736100 {
		t.Errorf("ReadU32LE: got 0x%x", got)
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, _ = r.ReadByte()
	cause := errors.New("boom")
	err := r.WrapError("header", cause)

	if !errors.Is(err, cause) {
		t.Error("ParseError does not unwrap to cause")
	}
	want := "wasm: header at position 1: boom"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}
