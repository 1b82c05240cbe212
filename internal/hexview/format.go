package hexview

import "fmt"

// Hex renders v as zero-padded hexadecimal, two digits per byte.
func Hex(v uint64, width int, upper bool) string {
	if upper {
		return fmt.Sprintf("%0*X", width*2, v)
	}
	return fmt.Sprintf("%0*x", width*2, v)
}

// HexByte renders a single byte.
func HexByte(v byte, upper bool) string {
	return Hex(uint64(v), 1, upper)
}

// HexMaybe renders an absent value as zero rather than failing; the slider
// tooltip uses it before any position exists.
func HexMaybe(v *uint64, width int, upper bool) string {
	if v == nil {
		return Hex(0, width, upper)
	}
	return Hex(*v, width, upper)
}
