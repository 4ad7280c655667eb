// Package fonts holds the typeface embedded in every notice and tells which
// characters it can draw.
package fonts

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/evidenceledger/noticegen/internal/errl"
)

// Family is the name the typeface is registered under in a PDF.
const Family = "DejaVu"

// Regular and Bold are DejaVu Sans Condensed, under the Bitstream Vera / DejaVu licence.
//
//go:embed DejaVuSansCondensed.ttf
var Regular []byte

//go:embed DejaVuSansCondensed-Bold.ttf
var Bold []byte

var errMalformed = errors.New("malformed TrueType font")

var coverage = sync.OnceValues(func() (map[rune]bool, error) {
	return cmapRunes(Regular)
})

// Unsupported returns the characters of s that the regular face has no glyph
// for, each once and in order of appearance. Line breaks, carriage returns and
// tabs are laid out as whitespace and are never reported.
func Unsupported(s string) ([]rune, error) {
	covered, err := coverage()
	if err != nil {
		return nil, err
	}

	var missing []rune
	seen := map[rune]bool{}
	for _, r := range s {
		switch r {
		case '\n', '\r', '\t':
			continue
		}
		if covered[r] || seen[r] {
			continue
		}
		seen[r] = true
		missing = append(missing, r)
	}
	return missing, nil
}

// cmapRunes lists the characters mapped to a glyph by the Windows Unicode BMP
// subtable (platform 3, encoding 1, format 4) of a TrueType font.
// Characters outside the BMP are left out since the PDF writer cannot map them.
func cmapRunes(font []byte) (map[rune]bool, error) {
	cmap, err := table(font, "cmap")
	if err != nil {
		return nil, err
	}

	if len(cmap) < 4 {
		return nil, errl.Error(errMalformed)
	}
	n := int(binary.BigEndian.Uint16(cmap[2:]))

	sub := -1
	for i := 0; i < n; i++ {
		rec := 4 + 8*i
		if rec+8 > len(cmap) {
			return nil, errl.Error(errMalformed)
		}
		platform := binary.BigEndian.Uint16(cmap[rec:])
		encoding := binary.BigEndian.Uint16(cmap[rec+2:])
		if platform == 3 && encoding == 1 {
			sub = int(binary.BigEndian.Uint32(cmap[rec+4:]))
			break
		}
	}
	if sub < 0 || sub+14 > len(cmap) {
		return nil, errl.Errorf("%w: no Unicode BMP character map", errMalformed)
	}
	if format := binary.BigEndian.Uint16(cmap[sub:]); format != 4 {
		return nil, errl.Errorf("%w: character map format %d", errMalformed, format)
	}

	u16 := func(off int) (int, bool) {
		if off < 0 || off+2 > len(cmap) {
			return 0, false
		}
		return int(binary.BigEndian.Uint16(cmap[off:])), true
	}

	segX2, _ := u16(sub + 6)
	ends := sub + 14
	starts := ends + segX2 + 2
	deltas := starts + segX2
	rangeOffsets := deltas + segX2

	runes := make(map[rune]bool)
	for i := 0; i < segX2/2; i++ {
		end, ok1 := u16(ends + 2*i)
		start, ok2 := u16(starts + 2*i)
		delta, ok3 := u16(deltas + 2*i)
		ro, ok4 := u16(rangeOffsets + 2*i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, errl.Error(errMalformed)
		}

		for c := start; c <= end && c < 0xFFFF; c++ {
			glyph := 0
			if ro == 0 {
				glyph = (c + delta) & 0xFFFF
			} else {
				g, ok := u16(rangeOffsets + 2*i + ro + 2*(c-start))
				if !ok {
					return nil, errl.Error(errMalformed)
				}
				if g != 0 {
					glyph = (g + delta) & 0xFFFF
				}
			}
			if glyph != 0 {
				runes[rune(c)] = true
			}
		}
	}

	return runes, nil
}

// table returns the bytes of the named top-level table of a TrueType font.
func table(font []byte, tag string) ([]byte, error) {
	if len(font) < 12 {
		return nil, errl.Error(errMalformed)
	}
	n := int(binary.BigEndian.Uint16(font[4:]))
	for i := 0; i < n; i++ {
		rec := 12 + 16*i
		if rec+16 > len(font) {
			return nil, errl.Error(errMalformed)
		}
		if string(font[rec:rec+4]) != tag {
			continue
		}
		off := int(binary.BigEndian.Uint32(font[rec+8:]))
		length := int(binary.BigEndian.Uint32(font[rec+12:]))
		if off+length > len(font) {
			return nil, errl.Error(errMalformed)
		}
		return font[off : off+length], nil
	}
	return nil, errl.Errorf("%w: no %s table", errMalformed, tag)
}
