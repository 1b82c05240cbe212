package fileservice

import (
	"reflect"
	"testing"
)

func TestBundleIntegers(t *testing.T) {
	b := BuildBundle(0, []byte{0x01, 0x02})

	if b.U8 != "1" || b.I8 != "1" {
		t.Errorf("u8/i8: got %s/%s", b.U8, b.I8)
	}
	if b.LE.U16 != "513" {
		t.Errorf("le u16: expected 513, got %s", b.LE.U16)
	}
	if b.BE.U16 != "258" {
		t.Errorf("be u16: expected 258, got %s", b.BE.U16)
	}
	if b.LE.U32 != missing {
		t.Errorf("u32 must be missing with 2 bytes, got %s", b.LE.U32)
	}
}

func TestBundleSignedValues(t *testing.T) {
	b := BuildBundle(0, []byte{0xFF, 0xFF})

	if b.I8 != "-1" {
		t.Errorf("i8: expected -1, got %s", b.I8)
	}
	if b.LE.I16 != "-1" || b.BE.I16 != "-1" {
		t.Errorf("i16: expected -1/-1, got %s/%s", b.LE.I16, b.BE.I16)
	}
	if b.LE.U16 != "65535" {
		t.Errorf("u16: expected 65535, got %s", b.LE.U16)
	}
}

func TestBundleFloats(t *testing.T) {
	// 1.0 as float32, little endian
	b := BuildBundle(0, []byte{0x00, 0x00, 0x80, 0x3F})
	if b.LE.F32 != "1" {
		t.Errorf("le f32: expected 1, got %s", b.LE.F32)
	}

	// NaN, big endian
	b = BuildBundle(0, []byte{0x7F, 0xC0, 0x00, 0x00})
	if b.BE.F32 != "NaN" {
		t.Errorf("be f32: expected NaN, got %s", b.BE.F32)
	}
}

func TestBundle128Bit(t *testing.T) {
	all := make([]byte, 16)
	for i := range all {
		all[i] = 0xFF
	}
	b := BuildBundle(0, all)

	const max = "340282366920938463463374607431768211455"
	if b.LE.U128 != max || b.BE.U128 != max {
		t.Errorf("u128: expected %s, got %s/%s", max, b.LE.U128, b.BE.U128)
	}
	if b.LE.I128 != "-1" || b.BE.I128 != "-1" {
		t.Errorf("i128: expected -1/-1, got %s/%s", b.LE.I128, b.BE.I128)
	}
}

func TestEndiannessRoundTrip(t *testing.T) {
	// The big-endian value of a run equals the little-endian value of the
	// byte-reversed run.
	fwd := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	rev := make([]byte, len(fwd))
	for i, v := range fwd {
		rev[len(fwd)-1-i] = v
	}

	a := BuildBundle(0, fwd)
	b := BuildBundle(0, rev)

	if a.BE.U64 != b.LE.U64 {
		t.Errorf("u64 round trip: %s != %s", a.BE.U64, b.LE.U64)
	}

	a16 := BuildBundle(0, fwd[:2])
	b16 := BuildBundle(0, []byte{fwd[1], fwd[0]})
	if a16.BE.U16 != b16.LE.U16 {
		t.Errorf("u16 round trip: %s != %s", a16.BE.U16, b16.LE.U16)
	}
}

func TestBundleIdempotent(t *testing.T) {
	data := []byte{0x41, 0x00, 0x42, 0x00, 0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C}

	a := BuildBundle(7, data)
	b := BuildBundle(7, data)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical bundles, got\n%+v\n%+v", a, b)
	}
}

func TestBundleCharacters(t *testing.T) {
	b := BuildBundle(0, []byte{0x41, 0x00, 0x42, 0x00})

	if b.ASCII != "A" {
		t.Errorf("ascii: expected A, got %q", b.ASCII)
	}
	if b.LE.UTF16 != "AB" {
		t.Errorf("le utf16: expected sequence AB, got %q", b.LE.UTF16)
	}
	if b.LE.UTF32 != "A" {
		t.Errorf("le utf32: expected A, got %q", b.LE.UTF32)
	}

	b = BuildBundle(0, []byte{0x00, 0x41})
	if b.BE.UTF16 != "A" {
		t.Errorf("be utf16: expected A, got %q", b.BE.UTF16)
	}
	if b.ASCII != "." {
		t.Errorf("ascii of NUL: expected ., got %q", b.ASCII)
	}
}

func TestBundleEmpty(t *testing.T) {
	b := BuildBundle(99, nil)

	if b.Offset != 99 {
		t.Errorf("expected offset 99, got %d", b.Offset)
	}
	if b.U8 != missing || b.LE.U16 != missing || b.BE.UTF32 != missing {
		t.Error("expected all fields missing for empty run")
	}
}
