package editor

import (
	"strconv"
	"strings"
)

var findModes = []string{"ascii", "hex", "bits", "decimal"}

func (m *Model) isValidFindChar(char string) bool {
	if len(char) != 1 {
		return false
	}
	switch m.findMode {
	case "hex":
		return isHexChar(char) || char == " "
	case "bits":
		return char == "0" || char == "1" || char == " "
	case "decimal":
		return char >= "0" && char <= "9"
	default:
		return true
	}
}

// findPattern converts the dialog input to the byte pattern sent to the
// file service. Decimal values honor the endianness toggle.
func (m *Model) findPattern() []byte {
	switch m.findMode {
	case "hex":
		s := strings.ReplaceAll(m.findInput, " ", "")
		if len(s)%2 != 0 {
			s = "0" + s
		}
		result := make([]byte, len(s)/2)
		for i := 0; i < len(s); i += 2 {
			b, _ := strconv.ParseUint(s[i:i+2], 16, 8)
			result[i/2] = byte(b)
		}
		return result
	case "bits":
		s := strings.ReplaceAll(m.findInput, " ", "")
		for len(s)%8 != 0 {
			s = "0" + s
		}
		result := make([]byte, len(s)/8)
		for i := 0; i < len(s); i += 8 {
			var b byte
			for j := 0; j < 8; j++ {
				if s[i+j] == '1' {
					b |= 1 << (7 - j)
				}
			}
			result[i/8] = b
		}
		return result
	case "decimal":
		n, _ := strconv.ParseUint(m.findInput, 10, 64)
		result := make([]byte, m.findWidth)
		for i := 0; i < m.findWidth; i++ {
			if m.bigEndian {
				result[m.findWidth-1-i] = byte(n >> (i * 8))
			} else {
				result[i] = byte(n >> (i * 8))
			}
		}
		return result
	default: // ascii
		return []byte(m.findInput)
	}
}
