package hexview

// Window holds the bytes of one materialized grid page. It is an in-memory
// overlay: SetByte never reaches the file, and a fresh window read replaces
// the whole thing.
type Window struct {
	offset int64
	data   []byte
}

func NewWindow(offset int64, data []byte) *Window {
	d := make([]byte, len(data))
	copy(d, data)
	return &Window{offset: offset, data: d}
}

// Offset is the file offset of index 0.
func (w *Window) Offset() int64 {
	if w == nil {
		return 0
	}
	return w.offset
}

func (w *Window) Len() int {
	if w == nil {
		return 0
	}
	return len(w.data)
}

// Byte returns the byte at index i. A window cut short by end-of-file
// reports its missing cells as absent, never as zero.
func (w *Window) Byte(i int) (byte, bool) {
	if w == nil || i < 0 || i >= len(w.data) {
		return 0, false
	}
	return w.data[i], true
}

// SetByte replaces exactly one entry. Out-of-range indices are ignored; the
// grid clamps its cursor before calling.
func (w *Window) SetByte(i int, v byte) {
	if w == nil || i < 0 || i >= len(w.data) {
		return
	}
	w.data[i] = v
}
