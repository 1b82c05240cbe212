package fileservice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// ErrNotOpen reports a handle that does not name an open file.
var ErrNotOpen = errors.New("file is not open")

// FileInfo describes one open handle.
type FileInfo struct {
	ID   int    `json:"file"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type openFile struct {
	info FileInfo
	f    *os.File
}

// Registry owns the open file handles. Handles are small integers and stay
// stable for the life of the process; the size recorded at open time is
// fixed for the session.
type Registry struct {
	mu    sync.Mutex
	next  int
	files map[int]*openFile
}

func NewRegistry() *Registry {
	return &Registry{next: 1, files: make(map[int]*openFile)}
}

func (r *Registry) Open(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return FileInfo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	of := &openFile{info: FileInfo{ID: id, Path: path, Size: st.Size()}, f: f}
	r.files[id] = of
	return of.info, nil
}

func (r *Registry) Close(id int) error {
	r.mu.Lock()
	of, ok := r.files[id]
	if ok {
		delete(r.files, id)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("file %d: %w", id, ErrNotOpen)
	}
	return of.f.Close()
}

func (r *Registry) List() []FileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]FileInfo, 0, len(r.files))
	for _, of := range r.files {
		infos = append(infos, of.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (r *Registry) get(id int) (*openFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	of, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %d: %w", id, ErrNotOpen)
	}
	return of, nil
}

// ReadWindow returns up to count bytes starting at offset. The run is short
// near end-of-file and empty at exactly end-of-file.
func (r *Registry) ReadWindow(id int, offset int64, count int) ([]byte, error) {
	of, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset > of.info.Size {
		return nil, fmt.Errorf("offset %d out of range [0, %d]", offset, of.info.Size)
	}
	if rem := of.info.Size - offset; int64(count) > rem {
		count = int(rem)
	}
	buf := make([]byte, count)
	n, err := of.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// Inspect builds the decoded bundle for one byte position. The offset need
// not fall inside any particular window.
func (r *Registry) Inspect(id int, offset int64) (*Bundle, error) {
	b, err := r.ReadWindow(id, offset, Lookahead)
	if err != nil {
		return nil, err
	}
	return BuildBundle(offset, b), nil
}

// Find returns the offset of the first match of pattern at or after from
// (forward) or strictly before from (backward), or -1 when there is none.
func (r *Registry) Find(id int, pattern []byte, from int64, forward bool) (int64, error) {
	of, err := r.get(id)
	if err != nil {
		return -1, err
	}
	if len(pattern) == 0 || of.info.Size == 0 {
		return -1, nil
	}

	data := make([]byte, of.info.Size)
	if _, err := of.f.ReadAt(data, 0); err != nil && err != io.EOF {
		return -1, err
	}

	if forward {
		if from < 0 {
			from = 0
		}
		if from >= int64(len(data)) {
			return -1, nil
		}
		if i := bytes.Index(data[from:], pattern); i >= 0 {
			return from + int64(i), nil
		}
		return -1, nil
	}

	end := from
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	if end < 0 {
		return -1, nil
	}
	if i := bytes.LastIndex(data[:end], pattern); i >= 0 {
		return int64(i), nil
	}
	return -1, nil
}
