package hexview

import (
	"testing"
	"time"

	"hexpane/internal/fileservice"
)

func newTestController(size int64) *Controller {
	return NewController(1, size, 16, 16, 100*time.Millisecond)
}

func TestClamping(t *testing.T) {
	c := newTestController(256)

	c.SetWindowOffset(256 + 1000)
	if c.WindowOffset() != 256 {
		t.Errorf("expected clamp to 256, got %d", c.WindowOffset())
	}

	c.SetWindowOffset(-5)
	if c.WindowOffset() != 0 {
		t.Errorf("expected clamp to 0, got %d", c.WindowOffset())
	}

	if off, _ := c.SetInspected(1 << 40); off != 256 {
		t.Errorf("expected inspected clamp to 256, got %d", off)
	}
}

func TestDebounceCoalescing(t *testing.T) {
	c := newTestController(4096)

	// A burst of offset changes within the settle interval: every tick but
	// the last arrives stale and must not trigger a read.
	tok1 := c.SetWindowOffset(16)
	tok2 := c.SetWindowOffset(32)
	tok3 := c.SetWindowOffset(48)

	reads := 0
	for _, tok := range []uint64{tok1, tok2, tok3} {
		if _, _, ok := c.SettleElapsed(tok); ok {
			reads++
		}
	}

	if reads != 1 {
		t.Errorf("expected exactly 1 read from 3 changes, got %d", reads)
	}
	if !c.Loading() {
		t.Error("expected controller to be loading")
	}
}

func TestStaleWindowDiscarded(t *testing.T) {
	c := newTestController(4096)

	tok := c.SetWindowOffset(0)
	off1, read1, _ := c.SettleElapsed(tok)

	tok = c.SetWindowOffset(256)
	off2, read2, _ := c.SettleElapsed(tok)

	// The older read completes after the newer one.
	if !c.InstallWindow(read2, off2, []byte{0xAA}) {
		t.Error("expected current read to install")
	}
	if c.InstallWindow(read1, off1, []byte{0xBB}) {
		t.Error("expected superseded read to be discarded")
	}
	if v, _ := c.Window().Byte(0); v != 0xAA {
		t.Errorf("expected 0xAA from newest read, got %02X", v)
	}
}

func TestWindowFailureKeepsPriorBuffer(t *testing.T) {
	c := newTestController(4096)

	tok := c.SetWindowOffset(0)
	off, read, _ := c.SettleElapsed(tok)
	c.InstallWindow(read, off, []byte{0x01, 0x02})

	tok = c.SetWindowOffset(16)
	_, read, _ = c.SettleElapsed(tok)
	if !c.WindowFailed(read) {
		t.Error("expected failure to be recorded")
	}

	if !c.LoadFailed() {
		t.Error("expected load failure flag")
	}
	if v, ok := c.Window().Byte(0); !ok || v != 0x01 {
		t.Error("expected prior buffer to survive the failed read")
	}

	// The next successful read clears the flag.
	tok = c.SetWindowOffset(32)
	off, read, _ = c.SettleElapsed(tok)
	c.InstallWindow(read, off, []byte{0x03})
	if c.LoadFailed() {
		t.Error("expected failure flag to clear on success")
	}
}

func TestLastIssuedWins(t *testing.T) {
	c := newTestController(4096)

	_, tok10 := c.SetInspected(10)
	_, tok20 := c.SetInspected(20)

	// Response for offset 20 lands first, then the late one for offset 10.
	if !c.InstallBundle(tok20, &fileservice.Bundle{Offset: 20}) {
		t.Error("expected bundle for latest request to install")
	}
	if c.InstallBundle(tok10, &fileservice.Bundle{Offset: 10}) {
		t.Error("expected bundle for superseded request to be discarded")
	}

	if c.Bundle().Offset != 20 {
		t.Errorf("expected displayed bundle for offset 20, got %d", c.Bundle().Offset)
	}
}

func TestWindowCorrespondence(t *testing.T) {
	// File of 256 bytes, 16x16 window: a read at 0 fills the whole grid, a
	// slide to 240 leaves a 16-byte tail with the remainder absent.
	c := newTestController(256)

	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	tok := c.SetWindowOffset(0)
	off, read, _ := c.SettleElapsed(tok)
	c.InstallWindow(read, off, data)

	for i := 0; i < 256; i++ {
		if v, ok := c.Window().Byte(i); !ok || v != byte(i) {
			t.Fatalf("index %d: expected %02X, got %02X", i, byte(i), v)
		}
	}

	tok = c.SetWindowOffset(240)
	off, read, _ = c.SettleElapsed(tok)
	c.InstallWindow(read, off, data[240:])

	if c.Window().Len() != 16 {
		t.Errorf("expected 16-byte tail window, got %d", c.Window().Len())
	}
	if v, ok := c.Window().Byte(0); !ok || v != 0xF0 {
		t.Errorf("expected 0xF0 at tail start, got %02X", v)
	}
	if _, ok := c.Window().Byte(16); ok {
		t.Error("expected cells past the tail to be absent")
	}
}

func TestEditDiscardedByReread(t *testing.T) {
	c := newTestController(256)

	tok := c.SetWindowOffset(0)
	off, read, _ := c.SettleElapsed(tok)
	c.InstallWindow(read, off, []byte{0x00, 0x01, 0x02, 0x03})

	c.SetByte(3, 0xFF)
	if v, _ := c.Window().Byte(3); v != 0xFF {
		t.Errorf("expected edit to apply, got %02X", v)
	}

	// A re-read at the same offset replaces the buffer wholesale.
	tok = c.SetWindowOffset(0)
	off, read, _ = c.SettleElapsed(tok)
	c.InstallWindow(read, off, []byte{0x00, 0x01, 0x02, 0x03})

	if v, _ := c.Window().Byte(3); v != 0x03 {
		t.Errorf("expected edit to be discarded, got %02X", v)
	}
}

func TestInspectCell(t *testing.T) {
	c := newTestController(4096)

	c.SetWindowOffset(256)
	if off, _ := c.InspectCell(10); off != 266 {
		t.Errorf("expected inspected offset 266, got %d", off)
	}
	if c.Cell() != 10 {
		t.Errorf("expected cell 10, got %d", c.Cell())
	}

	// An inspected offset outside the window has no cell.
	c.SetInspected(0)
	if c.Cell() != -1 {
		t.Errorf("expected no cell, got %d", c.Cell())
	}
}

func TestStepMatchesColumns(t *testing.T) {
	c := NewController(1, 1024, 8, 32, time.Millisecond)
	if c.Step() != 32 {
		t.Errorf("expected step 32, got %d", c.Step())
	}
	if c.WindowSize() != 256 {
		t.Errorf("expected window size 256, got %d", c.WindowSize())
	}
}

func TestBundleCharReduction(t *testing.T) {
	c := newTestController(256)

	_, tok := c.SetInspected(0)
	b := &fileservice.Bundle{
		Offset: 0,
		ASCII:  "A",
		UTF8:   "AB",
		LE:     fileservice.Scalars{UTF16: "xy", UTF32: "zw"},
		BE:     fileservice.Scalars{UTF16: "q", UTF32: "-"},
	}
	c.InstallBundle(tok, b)

	got := c.Bundle()
	if got.UTF8 != "A" {
		t.Errorf("expected first code point A, got %q", got.UTF8)
	}
	if got.LE.UTF16 != "x" || got.LE.UTF32 != "z" {
		t.Errorf("expected leading code points, got %q %q", got.LE.UTF16, got.LE.UTF32)
	}
	if got.BE.UTF16 != "q" || got.BE.UTF32 != "-" {
		t.Errorf("single-unit fields must pass through, got %q %q", got.BE.UTF16, got.BE.UTF32)
	}
}
