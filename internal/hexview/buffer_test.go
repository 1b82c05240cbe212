package hexview

import "testing"

func TestWindowByte(t *testing.T) {
	w := NewWindow(16, []byte{0x41, 0x42, 0x43})

	if w.Offset() != 16 {
		t.Errorf("expected offset 16, got %d", w.Offset())
	}
	if w.Len() != 3 {
		t.Errorf("expected length 3, got %d", w.Len())
	}
	if v, ok := w.Byte(0); !ok || v != 0x41 {
		t.Errorf("expected 0x41 at index 0, got %02X", v)
	}
	if v, ok := w.Byte(2); !ok || v != 0x43 {
		t.Errorf("expected 0x43 at index 2, got %02X", v)
	}
}

func TestWindowShortReadsAbsent(t *testing.T) {
	// The tail window of a file is shorter than the grid; missing cells
	// must read as absent, not as zero.
	w := NewWindow(240, []byte{0x01, 0x02})

	if _, ok := w.Byte(2); ok {
		t.Error("expected index 2 to be absent")
	}
	if _, ok := w.Byte(255); ok {
		t.Error("expected index 255 to be absent")
	}
	if _, ok := w.Byte(-1); ok {
		t.Error("expected negative index to be absent")
	}
}

func TestSetByteIsolation(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	w := NewWindow(0, data)

	w.SetByte(3, 0xFF)

	for i, want := range []byte{0x00, 0x01, 0x02, 0xFF, 0x04} {
		if v, _ := w.Byte(i); v != want {
			t.Errorf("index %d: expected %02X, got %02X", i, want, v)
		}
	}
	// The source slice must not alias the window.
	if data[3] != 0x03 {
		t.Errorf("caller slice mutated: %02X", data[3])
	}
}

func TestSetByteOutOfRange(t *testing.T) {
	w := NewWindow(0, []byte{0x01})

	w.SetByte(-1, 0xFF)
	w.SetByte(1, 0xFF)

	if v, _ := w.Byte(0); v != 0x01 {
		t.Errorf("expected 0x01, got %02X", v)
	}
}

func TestNilWindow(t *testing.T) {
	var w *Window

	if w.Len() != 0 {
		t.Errorf("expected length 0, got %d", w.Len())
	}
	if _, ok := w.Byte(0); ok {
		t.Error("expected absent byte from nil window")
	}
	w.SetByte(0, 0xFF) // must not panic
}
