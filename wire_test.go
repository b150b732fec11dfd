package rsgview

import (
	"errors"
	"testing"
)

func TestReaderReadsInOrder(t *testing.T) {
	data := []byte{
		7,
		0x3f, 0x80, 0x00, 0x00, // 1.0
		'h', 'i', 0,
		10, 20, 30,
	}
	r := NewReader(data)
	b, err := r.ReadByte()
	if err != nil || b != 7 {
		t.Fatalf("ReadByte = %d, %v", b, err)
	}
	f, err := r.ReadFloat32()
	if err != nil || f != 1 {
		t.Fatalf("ReadFloat32 = %v, %v", f, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hi" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	c, err := r.ReadRGB()
	if err != nil {
		t.Fatalf("ReadRGB: %v", err)
	}
	if c != ColorFromBytes(10, 20, 30, 255) {
		t.Errorf("ReadRGB = %+v", c)
	}
	if r.Len() != 0 || r.Offset() != len(data) {
		t.Errorf("Len, Offset = %d, %d", r.Len(), r.Offset())
	}
}

func TestReaderTruncationKeepsCursor(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadFloat32(); !errors.Is(err, ErrTruncatedMessage) {
		t.Fatalf("ReadFloat32 error = %v, want ErrTruncatedMessage", err)
	}
	if r.Offset() != 0 {
		t.Errorf("Offset = %d after failed read, want 0", r.Offset())
	}
	if _, err := r.ReadVec3(); !errors.Is(err, ErrTruncatedMessage) {
		t.Errorf("ReadVec3 error = %v", err)
	}
}

func TestReaderUnterminatedString(t *testing.T) {
	r := NewReader([]byte("abc"))
	if _, err := r.ReadString(); !errors.Is(err, ErrTruncatedMessage) {
		t.Errorf("ReadString error = %v, want ErrTruncatedMessage", err)
	}
}

func TestReaderEmptyString(t *testing.T) {
	r := NewReader([]byte{0})
	s, err := r.ReadString()
	if err != nil || s != "" || r.Len() != 0 {
		t.Errorf("ReadString = %q, %v, Len %d", s, err, r.Len())
	}
}

func TestReadASCIIFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5000", 1.5},
		{"-2.250", -2.25},
		{"3     ", 3},
		{"12.345", 12.345},
	}
	for _, tt := range tests {
		r := NewReader([]byte(tt.in))
		got, err := r.ReadASCIIFloat()
		if err != nil || !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("ReadASCIIFloat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	r := NewReader([]byte("abcdef"))
	if _, err := r.ReadASCIIFloat(); err == nil {
		t.Error("ReadASCIIFloat(abcdef) succeeded")
	}
	if r.Offset() != 0 {
		t.Errorf("Offset = %d after failed parse, want 0", r.Offset())
	}
	for _, in := range []string{"NaN   ", "Inf   ", "-Inf  "} {
		r := NewReader([]byte(in))
		if _, err := r.ReadASCIIFloat(); !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("ReadASCIIFloat(%q) err = %v, want ErrValueOutOfRange", in, err)
		}
		if r.Offset() != 0 {
			t.Errorf("Offset = %d after rejecting %q, want 0", r.Offset(), in)
		}
	}
}
