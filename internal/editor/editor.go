package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hexpane/internal/config"
	"hexpane/internal/fileservice"
	"hexpane/internal/hexview"

	tea "github.com/charmbracelet/bubbletea"
)

// Service is the slice of the file service the editor drives.
type Service interface {
	hexview.Source
	Open(ctx context.Context, path string) (fileservice.FileInfo, error)
	Close(ctx context.Context, fileID int) error
	Find(ctx context.Context, fileID int, pattern []byte, from int64, forward bool) (int64, error)
}

type View int

const (
	ViewMain View = iota
	ViewHelp
	ViewFind
	ViewGoto
)

type level int

const (
	levelInfo level = iota
	levelWarn
	levelError
)

// Tab is one open file: its handle plus the controller owning the window
// and inspection state.
type Tab struct {
	Info fileservice.FileInfo
	Ctrl *hexview.Controller
}

type Model struct {
	service Service
	config  *config.Config
	styles  *config.Styles

	tabs   []*Tab
	active int

	view        View
	bigEndian   bool
	upperCase   bool
	replaceMode bool
	hexNibble   int // 0 or 1, for tracking hex input
	width       int
	height      int

	// Find dialog state
	findInput   string
	findMode    string // "ascii", "hex", "bits", "decimal"
	findWidth   int    // for decimal search
	lastPattern []byte

	// Goto dialog state
	gotoInput string

	statusMsg   string
	statusLevel level
}

// Messages for the async flows. Each carries the token it was issued under;
// the controller discards anything superseded.

type settleMsg struct {
	fileID int
	token  uint64
}

type windowMsg struct {
	fileID int
	token  uint64
	offset int64
	data   []byte
	err    error
}

type bundleMsg struct {
	fileID int
	token  uint64
	bundle *fileservice.Bundle
	err    error
}

type findMsg struct {
	fileID int
	offset int64
	err    error
}

type tabClosedMsg struct {
	fileID int
	err    error
}

func NewModel(svc Service, cfg *config.Config, paths []string) (*Model, error) {
	m := &Model{
		service:   svc,
		config:    cfg,
		styles:    config.NewStyles(&cfg.Theme),
		view:      ViewMain,
		bigEndian: cfg.View.BigEndian,
		upperCase: cfg.View.UpperCase,
		findMode:  "hex",
		findWidth: 1,
	}

	ctx := context.Background()
	for _, p := range paths {
		info, err := svc.Open(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		ctrl := hexview.NewController(info.ID, info.Size,
			cfg.View.Rows, cfg.View.Columns, cfg.SettleInterval())
		m.tabs = append(m.tabs, &Tab{Info: info, Ctrl: ctrl})
	}
	if len(m.tabs) == 0 {
		return nil, errors.New("no files to open")
	}

	return m, nil
}

func (m *Model) currentTab() *Tab {
	if len(m.tabs) == 0 || m.active < 0 || m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

func (m *Model) tabByID(fileID int) *Tab {
	for _, t := range m.tabs {
		if t.Info.ID == fileID {
			return t
		}
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range m.tabs {
		tok := t.Ctrl.SetWindowOffset(0)
		cmds = append(cmds, m.settleCmd(t, tok))
		off, itok := t.Ctrl.SetInspected(0)
		cmds = append(cmds, m.inspectCmd(t, off, itok))
	}
	return tea.Batch(cmds...)
}

func (m *Model) settleCmd(t *Tab, token uint64) tea.Cmd {
	id := t.Info.ID
	return tea.Tick(t.Ctrl.Settle(), func(time.Time) tea.Msg {
		return settleMsg{fileID: id, token: token}
	})
}

func (m *Model) readCmd(t *Tab, offset int64, token uint64) tea.Cmd {
	id := t.Info.ID
	return func() tea.Msg {
		data, err := m.service.ReadWindow(context.Background(), id, offset)
		return windowMsg{fileID: id, token: token, offset: offset, data: data, err: err}
	}
}

func (m *Model) inspectCmd(t *Tab, offset int64, token uint64) tea.Cmd {
	id := t.Info.ID
	return func() tea.Msg {
		b, err := m.service.Inspect(context.Background(), id, offset)
		return bundleMsg{fileID: id, token: token, bundle: b, err: err}
	}
}

func (m *Model) findCmd(t *Tab, pattern []byte, from int64, forward bool) tea.Cmd {
	id := t.Info.ID
	return func() tea.Msg {
		off, err := m.service.Find(context.Background(), id, pattern, from, forward)
		return findMsg{fileID: id, offset: off, err: err}
	}
}

func (m *Model) closeCmd(fileID int) tea.Cmd {
	return func() tea.Msg {
		return tabClosedMsg{fileID: fileID, err: m.service.Close(context.Background(), fileID)}
	}
}

// notify is the notification sink: user-facing text on the status line,
// styled by severity. Failures never take the view down.
func (m *Model) notify(lvl level, msg string) {
	m.statusMsg = msg
	m.statusLevel = lvl
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case settleMsg:
		t := m.tabByID(msg.fileID)
		if t == nil {
			return m, nil
		}
		if off, rtok, ok := t.Ctrl.SettleElapsed(msg.token); ok {
			return m, m.readCmd(t, off, rtok)
		}
		return m, nil

	case windowMsg:
		t := m.tabByID(msg.fileID)
		if t == nil {
			return m, nil
		}
		if msg.err != nil {
			if t.Ctrl.WindowFailed(msg.token) {
				m.notify(levelError, fmt.Sprintf("window read failed: %v", msg.err))
			}
			return m, nil
		}
		t.Ctrl.InstallWindow(msg.token, msg.offset, msg.data)
		return m, nil

	case bundleMsg:
		t := m.tabByID(msg.fileID)
		if t == nil {
			return m, nil
		}
		if msg.err != nil {
			m.notify(levelWarn, fmt.Sprintf("inspect failed: %v", msg.err))
			return m, nil
		}
		t.Ctrl.InstallBundle(msg.token, msg.bundle)
		return m, nil

	case findMsg:
		t := m.tabByID(msg.fileID)
		if t == nil {
			return m, nil
		}
		if msg.err != nil {
			m.notify(levelWarn, fmt.Sprintf("find failed: %v", msg.err))
			return m, nil
		}
		if msg.offset < 0 {
			m.notify(levelWarn, "no match")
			return m, nil
		}
		m.notify(levelInfo, fmt.Sprintf("match at offset %s",
			hexview.Hex(uint64(msg.offset), 4, m.upperCase)))
		return m, m.inspectAt(t, msg.offset)

	case tabClosedMsg:
		if msg.err != nil {
			m.notify(levelWarn, fmt.Sprintf("close failed: %v", msg.err))
		}
		for i, t := range m.tabs {
			if t.Info.ID == msg.fileID {
				m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
				break
			}
		}
		if m.active >= len(m.tabs) {
			m.active = len(m.tabs) - 1
		}
		if len(m.tabs) == 0 {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch m.view {
	case ViewHelp:
		return m.handleHelpKey(msg)
	case ViewFind:
		return m.handleFindKey(msg)
	case ViewGoto:
		return m.handleGotoKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.currentTab()
	if t == nil {
		return m, tea.Quit
	}
	c := t.Ctrl

	// Replace-mode hex input takes precedence over command keys.
	if m.replaceMode {
		if msg.Type == tea.KeyEscape {
			m.replaceMode = false
			m.hexNibble = 0
			return m, nil
		}
		if isHexChar(msg.String()) {
			return m.handleHexInput(t, msg.String())
		}
	}

	switch msg.String() {
	// Cursor movement drives the inspected offset.
	case "up":
		return m, m.inspectAt(t, c.Inspected()-c.Step())
	case "down":
		return m, m.inspectAt(t, c.Inspected()+c.Step())
	case "left":
		return m, m.inspectAt(t, c.Inspected()-1)
	case "right":
		return m, m.inspectAt(t, c.Inspected()+1)
	case "home":
		return m, m.inspectAt(t, rowStart(c.Inspected(), c.Step()))
	case "end":
		return m, m.inspectAt(t, rowStart(c.Inspected(), c.Step())+c.Step()-1)
	case "ctrl+home":
		return m, m.inspectAt(t, 0)
	case "ctrl+end":
		last := c.FileSize() - 1
		if last < 0 {
			last = 0
		}
		return m, m.inspectAt(t, last)

	// The scroll control moves the window in row-aligned steps.
	case "pgup":
		return m, m.slideTo(t, c.WindowOffset()-int64(c.WindowSize()))
	case "pgdown":
		return m, m.slideTo(t, c.WindowOffset()+int64(c.WindowSize()))
	case "[":
		return m, m.slideTo(t, c.WindowOffset()-c.Step())
	case "]":
		return m, m.slideTo(t, c.WindowOffset()+c.Step())

	// Commands
	case "q", "Q", "ctrl+c":
		return m, tea.Quit
	case "h", "H":
		m.view = ViewHelp
	case "e", "E":
		m.bigEndian = !m.bigEndian
	case "x", "X":
		m.upperCase = !m.upperCase
	case "r", "R":
		m.replaceMode = true
		m.hexNibble = 0
	case "g", "G":
		m.view = ViewGoto
		m.gotoInput = ""
	case "f", "F":
		m.view = ViewFind
		m.findInput = ""
	case "n", "N":
		if len(m.lastPattern) > 0 {
			return m, m.findCmd(t, m.lastPattern, c.Inspected()+1, true)
		}
	case "p", "P":
		if len(m.lastPattern) > 0 {
			return m, m.findCmd(t, m.lastPattern, c.Inspected(), false)
		}
	case "tab":
		if len(m.tabs) > 1 {
			m.active = (m.active + 1) % len(m.tabs)
		}
	case "shift+tab":
		if len(m.tabs) > 1 {
			m.active = (m.active - 1 + len(m.tabs)) % len(m.tabs)
		}
	case "ctrl+w":
		return m, m.closeCmd(t.Info.ID)
	}

	return m, nil
}

// inspectAt moves the inspected offset and keeps the window positioned
// around it, scrolling by whole rows when the offset leaves the page.
func (m *Model) inspectAt(t *Tab, target int64) tea.Cmd {
	c := t.Ctrl
	m.hexNibble = 0

	off, itok := c.SetInspected(target)
	cmds := []tea.Cmd{m.inspectCmd(t, off, itok)}

	win := int64(c.WindowSize())
	wo := c.WindowOffset()
	if off < wo {
		tok := c.SetWindowOffset(rowStart(off, c.Step()))
		cmds = append(cmds, m.settleCmd(t, tok))
	} else if off >= wo+win {
		tok := c.SetWindowOffset(rowStart(off, c.Step()) - win + c.Step())
		cmds = append(cmds, m.settleCmd(t, tok))
	}
	return tea.Batch(cmds...)
}

// slideTo is the scroll-control path: the window offset moves (debounced)
// and the inspected offset is re-derived from its cell index.
func (m *Model) slideTo(t *Tab, target int64) tea.Cmd {
	c := t.Ctrl
	m.hexNibble = 0

	cell := c.Cell()
	if cell < 0 {
		cell = 0
	}
	tok := c.SetWindowOffset(rowStart(target, c.Step()))
	cmds := []tea.Cmd{m.settleCmd(t, tok)}

	off, itok := c.InspectCell(cell)
	cmds = append(cmds, m.inspectCmd(t, off, itok))
	return tea.Batch(cmds...)
}

func rowStart(off, step int64) int64 {
	if off < 0 {
		return 0
	}
	return (off / step) * step
}

func (m *Model) handleHexInput(t *Tab, char string) (tea.Model, tea.Cmd) {
	c := t.Ctrl
	if c.Window().Offset() != c.WindowOffset() {
		m.notify(levelWarn, "window still loading")
		return m, nil
	}
	cell := c.Cell()
	b, ok := c.Window().Byte(cell)
	if cell < 0 || !ok {
		m.notify(levelWarn, "no byte under cursor to edit")
		return m, nil
	}

	nibble := hexCharToNibble(char)
	if m.hexNibble == 0 {
		c.SetByte(cell, (nibble<<4)|(b&0x0F))
		m.hexNibble = 1
		return m, nil
	}
	c.SetByte(cell, (b&0xF0)|nibble)
	m.hexNibble = 0
	return m, m.inspectAt(t, c.Inspected()+1)
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEscape || msg.String() == "h" || msg.String() == "H" {
		m.view = ViewMain
	}
	return m, nil
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyEnter:
		m.view = ViewMain
		return m.doGoto()
	case tea.KeyBackspace:
		if len(m.gotoInput) > 0 {
			m.gotoInput = m.gotoInput[:len(m.gotoInput)-1]
		}
	default:
		char := msg.String()
		if len(char) == 1 && (isHexChar(char) || char == "x" || char == "X") {
			m.gotoInput += char
		}
	}
	return m, nil
}

func (m *Model) doGoto() (tea.Model, tea.Cmd) {
	t := m.currentTab()
	if t == nil || m.gotoInput == "" {
		return m, nil
	}

	var offset int64
	input := strings.ToLower(m.gotoInput)
	if strings.HasPrefix(input, "0x") {
		offset, _ = strconv.ParseInt(input[2:], 16, 64)
	} else {
		offset, _ = strconv.ParseInt(input, 10, 64)
	}

	return m, m.inspectAt(t, offset)
}

func (m *Model) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyUp:
		modes := findModes
		for i, mode := range modes {
			if mode == m.findMode && i > 0 {
				m.findMode = modes[i-1]
				m.findInput = ""
				break
			}
		}
	case tea.KeyDown:
		modes := findModes
		for i, mode := range modes {
			if mode == m.findMode && i < len(modes)-1 {
				m.findMode = modes[i+1]
				m.findInput = ""
				break
			}
		}
	case tea.KeyEnter:
		m.view = ViewMain
		return m.doFind()
	case tea.KeyBackspace:
		if len(m.findInput) > 0 {
			m.findInput = m.findInput[:len(m.findInput)-1]
		}
	default:
		char := msg.String()
		if m.isValidFindChar(char) {
			m.findInput += char
		}
	}
	return m, nil
}

func (m *Model) doFind() (tea.Model, tea.Cmd) {
	t := m.currentTab()
	if t == nil || m.findInput == "" {
		return m, nil
	}
	pattern := m.findPattern()
	if len(pattern) == 0 {
		m.notify(levelWarn, "empty search pattern")
		return m, nil
	}
	m.lastPattern = pattern
	return m, m.findCmd(t, pattern, t.Ctrl.Inspected()+1, true)
}

func isHexChar(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexCharToNibble(s string) byte {
	c := s[0]
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	}
	if c >= 'A' && c <= 'F' {
		return c - 'A' + 10
	}
	return 0
}
