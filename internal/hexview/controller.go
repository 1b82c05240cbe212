package hexview

import (
	"context"
	"time"

	"hexpane/internal/fileservice"
)

// Source is the slice of the file service the view core consumes.
type Source interface {
	ReadWindow(ctx context.Context, fileID int, offset int64) ([]byte, error)
	Inspect(ctx context.Context, fileID int, offset int64) (*fileservice.Bundle, error)
}

// DefaultSettle is the debounce delay between the last window offset change
// and the read it triggers.
const DefaultSettle = 100 * time.Millisecond

// Controller owns the window and inspection state for one open file. All
// mutation goes through its methods; the surrounding event loop schedules
// the settle ticks and service calls it hands out tokens for. Tokens are
// monotonically increasing, and a completion whose token is no longer the
// latest issued one is discarded, so results can arrive out of order without
// a stale response ever replacing a newer one.
type Controller struct {
	fileID   int
	fileSize int64
	rows     int
	cols     int
	settle   time.Duration

	windowOffset int64
	window       *Window
	loading      bool
	loadFailed   bool

	inspected int64
	bundle    *fileservice.Bundle

	settleSeq  uint64
	readSeq    uint64
	inspectSeq uint64
}

func NewController(fileID int, fileSize int64, rows, cols int, settle time.Duration) *Controller {
	if rows <= 0 {
		rows = 16
	}
	if cols <= 0 {
		cols = 16
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Controller{
		fileID:   fileID,
		fileSize: fileSize,
		rows:     rows,
		cols:     cols,
		settle:   settle,
	}
}

func (c *Controller) FileID() int           { return c.fileID }
func (c *Controller) FileSize() int64       { return c.fileSize }
func (c *Controller) Rows() int             { return c.rows }
func (c *Controller) Cols() int             { return c.cols }
func (c *Controller) WindowSize() int       { return c.rows * c.cols }
func (c *Controller) Settle() time.Duration { return c.settle }

func (c *Controller) WindowOffset() int64 { return c.windowOffset }
func (c *Controller) Window() *Window     { return c.window }
func (c *Controller) Loading() bool       { return c.loading }
func (c *Controller) LoadFailed() bool    { return c.loadFailed }

func (c *Controller) Inspected() int64            { return c.inspected }
func (c *Controller) Bundle() *fileservice.Bundle { return c.bundle }

// Step is the scroll-control increment: one grid row, so the slider always
// lands on row boundaries.
func (c *Controller) Step() int64 { return int64(c.cols) }

// SetWindowOffset clamps off into [0, fileSize] and records it, returning a
// settle token. The caller schedules SettleElapsed(token) after Settle().
// Rapid calls coalesce because only the newest token survives.
func (c *Controller) SetWindowOffset(off int64) uint64 {
	c.windowOffset = clamp(off, 0, c.fileSize)
	c.settleSeq++
	return c.settleSeq
}

// SettleElapsed reports whether the settle timer named by token is still
// current. If so the controller enters Loading and hands out a read token
// for the offset to fetch.
func (c *Controller) SettleElapsed(token uint64) (offset int64, read uint64, ok bool) {
	if token != c.settleSeq {
		return 0, 0, false
	}
	c.loading = true
	c.readSeq++
	return c.windowOffset, c.readSeq, true
}

// InstallWindow replaces the edit buffer with freshly read bytes and clears
// any prior failure. Stale tokens are dropped, so a late completion never
// clobbers a newer window.
func (c *Controller) InstallWindow(token uint64, offset int64, data []byte) bool {
	if token != c.readSeq {
		return false
	}
	c.window = NewWindow(offset, data)
	c.loading = false
	c.loadFailed = false
	return true
}

// WindowFailed leaves the previous buffer in place and flags the failure.
// There is no automatic retry; the next offset change starts fresh.
func (c *Controller) WindowFailed(token uint64) bool {
	if token != c.readSeq {
		return false
	}
	c.loading = false
	c.loadFailed = true
	return true
}

// SetInspected clamps and records the inspected offset and hands out a
// decode token for it.
func (c *Controller) SetInspected(off int64) (int64, uint64) {
	c.inspected = clamp(off, 0, c.fileSize)
	c.inspectSeq++
	return c.inspected, c.inspectSeq
}

// InspectCell derives the inspected offset from a focused grid cell.
func (c *Controller) InspectCell(index int) (int64, uint64) {
	return c.SetInspected(c.windowOffset + int64(index))
}

// Cell is the grid index of the inspected offset, or -1 when it lies
// outside the current window bounds.
func (c *Controller) Cell() int {
	i := c.inspected - c.windowOffset
	if i < 0 || i >= int64(c.WindowSize()) {
		return -1
	}
	return int(i)
}

// InstallBundle installs a decode response if it answers the most recently
// issued request, so the displayed bundle always reflects the last offset
// asked for regardless of arrival order. Character fields carry short
// decoded sequences and are cut down to their leading code point here. A
// failed decode simply never installs: the stale bundle stays visible.
func (c *Controller) InstallBundle(token uint64, b *fileservice.Bundle) bool {
	if token != c.inspectSeq || b == nil {
		return false
	}
	reduceChars(b)
	c.bundle = b
	return true
}

// SetByte applies a single-cell edit to the current window. Nothing is read
// and nothing reaches the file.
func (c *Controller) SetByte(index int, v byte) {
	c.window.SetByte(index, v)
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func reduceChars(b *fileservice.Bundle) {
	b.ASCII = firstRune(b.ASCII)
	b.UTF8 = firstRune(b.UTF8)
	b.LE.UTF16 = firstRune(b.LE.UTF16)
	b.BE.UTF16 = firstRune(b.BE.UTF16)
	b.LE.UTF32 = firstRune(b.LE.UTF32)
	b.BE.UTF32 = firstRune(b.BE.UTF32)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return s
}
