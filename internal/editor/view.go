package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"hexpane/internal/fileservice"
	"hexpane/internal/hexview"
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderLegend())
	b.WriteString("\n")

	switch m.view {
	case ViewHelp:
		b.WriteString(m.renderHelp())
	case ViewFind:
		b.WriteString(m.renderFind())
	case ViewGoto:
		b.WriteString(m.renderGoto())
	default:
		b.WriteString(m.renderMainView())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		switch m.statusLevel {
		case levelError:
			b.WriteString(m.styles.StatusError.Render(m.statusMsg))
		case levelWarn:
			b.WriteString(m.styles.StatusWarn.Render(m.statusMsg))
		default:
			b.WriteString(m.statusMsg)
		}
	}

	return b.String()
}

func (m *Model) renderLegend() string {
	var items []string

	hl := func(text string, highlightIdx int) string {
		var result strings.Builder
		for i, ch := range text {
			if i == highlightIdx {
				result.WriteString(m.styles.LegendHighlight.Render(string(ch)))
			} else {
				result.WriteString(m.styles.Legend.Render(string(ch)))
			}
		}
		return result.String()
	}

	items = append(items, hl("Quit", 0))
	items = append(items, hl("Help", 0))

	if m.view == ViewMain {
		items = append(items, hl("Replace", 0))
		items = append(items, hl("Find", 0))
		items = append(items, hl("Goto", 0))
		items = append(items, hl("Endian", 0))
		items = append(items, hl("heX case", 2))
		items = append(items, m.styles.LegendHighlight.Render("[ ]")+" "+m.styles.Legend.Render("Scroll"))
		if len(m.tabs) > 1 {
			items = append(items, m.styles.LegendHighlight.Render("TAB"))
		}
	} else {
		items = append(items, m.styles.LegendHighlight.Render("ESC")+" Back")
	}

	legend := strings.Join(items, m.styles.Legend.Render(" | "))
	return m.styles.Legend.Width(m.width).Render(legend)
}

func (m *Model) renderMainView() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	t := m.currentTab()
	if t == nil {
		return b.String()
	}

	b.WriteString(m.renderColumnHeader(t))
	b.WriteString("\n")
	b.WriteString(m.renderGrid(t))
	b.WriteString("\n")
	b.WriteString(m.renderSlider(t))
	b.WriteString("\n")
	b.WriteString(m.renderInspector(t))

	return b.String()
}

func (m *Model) renderTabs() string {
	var tabs []string
	for i, t := range m.tabs {
		name := filepath.Base(t.Info.Path)
		style := m.styles.InactiveTab
		if i == m.active {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(name))
	}
	return strings.Join(tabs, " | ")
}

func (m *Model) renderColumnHeader(t *Tab) string {
	c := t.Ctrl
	cols := c.Cols()

	header := strings.Repeat(" ", 10)
	cursorCol := -1
	if cell := c.Cell(); cell >= 0 {
		cursorCol = cell % cols
	}
	for i := 0; i < cols; i++ {
		hex := hexview.HexByte(byte(i), m.upperCase)
		if i == cursorCol {
			hex = m.styles.IndexMarker.Render(hex)
		}
		header += hex
		if i < cols-1 {
			if (i+1)%8 == 0 {
				header += "  "
			} else if (i+1)%4 == 0 {
				header += " "
			}
			header += " "
		}
	}

	return header
}

func (m *Model) renderGrid(t *Tab) string {
	c := t.Ctrl
	w := c.Window()
	cols := c.Cols()

	// During a debounced move the buffer still holds the previous page;
	// the cursor marker is suppressed until the new window lands.
	stale := w.Offset() != c.WindowOffset()
	cell := c.Cell()

	var lines []string
	for row := 0; row < c.Rows(); row++ {
		rowOffset := w.Offset() + int64(row*cols)

		offsetStr := hexview.Hex(uint64(rowOffset), 4, m.upperCase) + "  "
		if !stale && cell >= 0 && cell/cols == row {
			offsetStr = m.styles.IndexMarker.Render(offsetStr)
		}

		var hexLine strings.Builder
		var asciiLine strings.Builder

		for col := 0; col < cols; col++ {
			idx := row*cols + col
			v, ok := w.Byte(idx)

			hexStr := "  "
			asciiStr := " "
			if ok {
				hexStr = hexview.HexByte(v, m.upperCase)
				if v >= 32 && v < 127 {
					asciiStr = string(rune(v))
				} else {
					asciiStr = "."
				}
			}

			style := m.styles.Normal
			if !stale && idx == cell {
				if m.replaceMode {
					style = m.styles.MarkerReplace
				} else {
					style = m.styles.MarkerNormal
				}
			} else if ok && !stale && cell >= 0 && idx > cell && idx < cell+fileservice.Lookahead {
				// The run the inspector decodes from.
				style = m.styles.Endian
			}

			hexLine.WriteString(style.Render(hexStr))
			asciiLine.WriteString(style.Render(asciiStr))

			// Spacing must match renderColumnHeader exactly.
			if col < cols-1 {
				if (col+1)%8 == 0 {
					hexLine.WriteString("  ")
				} else if (col+1)%4 == 0 {
					hexLine.WriteString(" ")
				}
				hexLine.WriteString(" ")
			}
		}

		lines = append(lines, offsetStr+hexLine.String()+"  "+asciiLine.String())
	}

	return strings.Join(lines, "\n")
}

const sliderWidth = 48

// renderSlider draws the scroll control. Its tooltip is the window offset
// through the display formatter, so it follows the case toggle.
func (m *Model) renderSlider(t *Tab) string {
	c := t.Ctrl

	pos := 0
	if c.FileSize() > 0 {
		pos = int(c.WindowOffset() * int64(sliderWidth-1) / c.FileSize())
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Repeat("=", pos))
	b.WriteString("|")
	b.WriteString(strings.Repeat("-", sliderWidth-1-pos))
	b.WriteString("] ")

	off := uint64(c.WindowOffset())
	b.WriteString(hexview.HexMaybe(&off, 4, m.upperCase))

	if c.Loading() {
		b.WriteString(" " + m.styles.Disabled.Render("reading..."))
	} else if c.LoadFailed() {
		b.WriteString(" " + m.styles.StatusError.Render("read failed"))
	}

	return b.String()
}

func (m *Model) renderInspector(t *Tab) string {
	c := t.Ctrl
	b := c.Bundle()

	var sb strings.Builder

	endianStr := "Big"
	if !m.bigEndian {
		endianStr = "Little"
	}
	sb.WriteString(m.styles.PanelLabel.Render("Endianness: "))
	sb.WriteString(m.styles.PanelValue.Render(endianStr))

	if b == nil {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Disabled.Render("no position inspected"))
		return sb.String()
	}

	// The toggle reselects the precomputed half; nothing is refetched.
	s := b.BE
	if !m.bigEndian {
		s = b.LE
	}

	sb.WriteString("  ")
	sb.WriteString(m.styles.PanelLabel.Render("Offset: "))
	sb.WriteString(m.styles.PanelValue.Render(hexview.Hex(uint64(b.Offset), 4, m.upperCase)))
	sb.WriteString("\n")

	pair := func(label, value string) string {
		return m.styles.PanelLabel.Render(label+": ") + m.styles.PanelValue.Render(value) + "  "
	}

	sb.WriteString(pair("u8", b.U8))
	sb.WriteString(pair("i8", b.I8))
	sb.WriteString(pair("u16", s.U16))
	sb.WriteString(pair("i16", s.I16))
	sb.WriteString(pair("u32", s.U32))
	sb.WriteString(pair("i32", s.I32))
	sb.WriteString("\n")

	sb.WriteString(pair("u64", s.U64))
	sb.WriteString(pair("i64", s.I64))
	sb.WriteString("\n")

	sb.WriteString(pair("u128", s.U128))
	sb.WriteString(pair("i128", s.I128))
	sb.WriteString("\n")

	sb.WriteString(pair("f32", s.F32))
	sb.WriteString(pair("f64", s.F64))
	sb.WriteString("\n")

	sb.WriteString(pair("ascii", b.ASCII))
	sb.WriteString(pair("utf8", b.UTF8))
	sb.WriteString(pair("utf16", s.UTF16))
	sb.WriteString(pair("utf32", s.UTF32))

	return sb.String()
}

func (m *Model) renderHelp() string {
	return `
HELP - hexpane

NAVIGATION
  Arrow keys      Move inspected byte
  Home/End        Start/end of row
  Ctrl+Home/End   Start/end of file
  PgUp/PgDown     Page up/down
  [ / ]           Scroll one row (debounced read)
  G               Goto offset
  TAB/Shift+TAB   Switch file

EDITING
  R               Enter replace mode (hex digits overwrite the cell)
  ESC             Leave replace mode
  Edits stay in the window buffer; nothing is written to the file.

INSPECTOR
  E               Toggle endianness (little/big)
  X               Toggle hex case

SEARCH
  F               Find (ascii/hex/bits/decimal)
  N / P           Next / previous match

OTHER
  Ctrl+W          Close file
  H               This screen
  Q               Quit

Press ESC or H to close this help screen.
`
}

func (m *Model) renderFind() string {
	var b strings.Builder
	b.WriteString("\nFIND\n\n")

	labels := map[string]string{
		"ascii":   "ASCII",
		"hex":     "Hex",
		"bits":    "Bitstring",
		"decimal": "Decimal",
	}
	for _, mode := range findModes {
		prefix := "  "
		if mode == m.findMode {
			prefix = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s: ", prefix, labels[mode]))
		if mode == m.findMode {
			b.WriteString(m.findInput)
			b.WriteString("_")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nUp/Down switches mode, Enter searches, ESC closes\n")
	return b.String()
}

func (m *Model) renderGoto() string {
	var b strings.Builder
	b.WriteString("\nGOTO OFFSET\n\n")
	b.WriteString("Offset: ")
	b.WriteString(m.gotoInput)
	b.WriteString("_\n\n")
	b.WriteString("(Prefix with 0x for hex offset)\n")
	b.WriteString("\nPress Enter to go, ESC to close\n")
	return b.String()
}
