package fileservice

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Lookahead is how many bytes past the inspected offset feed the bundle:
// enough for the widest scalar (128 bits).
const Lookahead = 16

const missing = "-"

// Scalars holds one byte order's rendering of the multi-byte fields. The
// character fields may carry a short decoded sequence; consumers keep the
// leading code point.
type Scalars struct {
	U16   string `json:"u16"`
	I16   string `json:"i16"`
	U32   string `json:"u32"`
	I32   string `json:"i32"`
	U64   string `json:"u64"`
	I64   string `json:"i64"`
	U128  string `json:"u128"`
	I128  string `json:"i128"`
	F32   string `json:"f32"`
	F64   string `json:"f64"`
	UTF16 string `json:"utf16"`
	UTF32 string `json:"utf32"`
}

// Bundle is the full decoded view of one byte position. Every value is
// pre-formatted text; widths the file cannot fill near end-of-file hold "-".
type Bundle struct {
	Offset int64   `json:"offset"`
	U8     string  `json:"u8"`
	I8     string  `json:"i8"`
	ASCII  string  `json:"ascii"`
	UTF8   string  `json:"utf8"`
	LE     Scalars `json:"le"`
	BE     Scalars `json:"be"`
}

// BuildBundle decodes the byte run starting at offset. Both byte orders are
// read from the same forward run, so the big-endian value of a field equals
// the little-endian value of the byte-reversed run.
func BuildBundle(offset int64, b []byte) *Bundle {
	bundle := &Bundle{
		Offset: offset,
		U8:     missing,
		I8:     missing,
		ASCII:  missing,
		UTF8:   missing,
		LE:     missingScalars(),
		BE:     missingScalars(),
	}
	if len(b) == 0 {
		return bundle
	}

	bundle.U8 = strconv.FormatUint(uint64(b[0]), 10)
	bundle.I8 = strconv.FormatInt(int64(int8(b[0])), 10)
	bundle.ASCII = asciiChar(b[0])
	bundle.UTF8 = utf8Chars(b)

	fillScalars(&bundle.LE, binary.LittleEndian, b)
	fillScalars(&bundle.BE, binary.BigEndian, b)

	bundle.LE.U128, bundle.LE.I128 = int128(b, false)
	bundle.BE.U128, bundle.BE.I128 = int128(b, true)

	bundle.LE.UTF16 = utf16Chars(b, xunicode.LittleEndian)
	bundle.BE.UTF16 = utf16Chars(b, xunicode.BigEndian)
	bundle.LE.UTF32 = utf32Chars(b, utf32.LittleEndian)
	bundle.BE.UTF32 = utf32Chars(b, utf32.BigEndian)

	return bundle
}

func missingScalars() Scalars {
	return Scalars{
		U16: missing, I16: missing,
		U32: missing, I32: missing,
		U64: missing, I64: missing,
		U128: missing, I128: missing,
		F32: missing, F64: missing,
		UTF16: missing, UTF32: missing,
	}
}

func fillScalars(s *Scalars, order binary.ByteOrder, b []byte) {
	if len(b) >= 2 {
		v := order.Uint16(b)
		s.U16 = strconv.FormatUint(uint64(v), 10)
		s.I16 = strconv.FormatInt(int64(int16(v)), 10)
	}
	if len(b) >= 4 {
		v := order.Uint32(b)
		s.U32 = strconv.FormatUint(uint64(v), 10)
		s.I32 = strconv.FormatInt(int64(int32(v)), 10)
		s.F32 = formatFloat32(v)
	}
	if len(b) >= 8 {
		v := order.Uint64(b)
		s.U64 = strconv.FormatUint(v, 10)
		s.I64 = strconv.FormatInt(int64(v), 10)
		s.F64 = formatFloat64(v)
	}
}

func int128(b []byte, bigEndian bool) (string, string) {
	if len(b) < 16 {
		return missing, missing
	}

	var high, low uint64
	if bigEndian {
		high = binary.BigEndian.Uint64(b[:8])
		low = binary.BigEndian.Uint64(b[8:16])
	} else {
		low = binary.LittleEndian.Uint64(b[:8])
		high = binary.LittleEndian.Uint64(b[8:16])
	}

	n := new(big.Int).SetUint64(high)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(low))
	unsigned := n.String()

	signed := unsigned
	if high&(1<<63) != 0 {
		// Two's complement
		span := new(big.Int).Lsh(big.NewInt(1), 128)
		signed = new(big.Int).Sub(n, span).String()
	}
	return unsigned, signed
}

func formatFloat32(bits uint32) string {
	f := math.Float32frombits(bits)
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return fmt.Sprintf("%v", f)
	}
	return fmt.Sprintf("%g", f)
}

func formatFloat64(bits uint64) string {
	f := math.Float64frombits(bits)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("%v", f)
	}
	return fmt.Sprintf("%g", f)
}

func asciiChar(b byte) string {
	if b >= 32 && b < 127 {
		return string(rune(b))
	}
	return "."
}

// utf8Chars decodes up to four bytes as UTF-8. The result may span more than
// one character; reducing it to the leading one is the reader's job.
func utf8Chars(b []byte) string {
	if len(b) > 4 {
		b = b[:4]
	}
	return sanitize(string(b))
}

func utf16Chars(b []byte, e xunicode.Endianness) string {
	n := len(b) &^ 1
	if n == 0 {
		return missing
	}
	if n > 4 {
		n = 4
	}
	dec := xunicode.UTF16(e, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b[:n])
	if err != nil || len(out) == 0 {
		return missing
	}
	return sanitize(string(out))
}

func utf32Chars(b []byte, e utf32.Endianness) string {
	n := len(b) &^ 3
	if n == 0 {
		return missing
	}
	if n > 8 {
		n = 8
	}
	dec := utf32.UTF32(e, utf32.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b[:n])
	if err != nil || len(out) == 0 {
		return missing
	}
	return sanitize(string(out))
}

// sanitize replaces unprintable code points with "." so the inspector panel
// never receives control characters.
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsPrint(r) {
			out = append(out, r)
		} else {
			out = append(out, '.')
		}
	}
	return string(out)
}
