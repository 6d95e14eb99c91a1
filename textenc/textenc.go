// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package textenc decodes and encodes the text encodings used across the
// ID3v2 frame taxonomy: Latin-1, UTF-8, UTF-16 with a BOM (read as
// little-endian when the BOM is missing), and UTF-16BE without a BOM.
package textenc

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Encoding identifies a text encoding used by an ID3v2 frame.
type Encoding byte

const (
	Latin1         Encoding = 0
	Utf16WithBom   Encoding = 1
	Utf16BeNoBom   Encoding = 2
	Utf8           Encoding = 3
)

// ErrInvalidEncoding is returned for an encoding byte outside 0..3.
var ErrInvalidEncoding = errors.New("textenc: invalid encoding byte")

// ErrInvalidBOM is returned when a UTF-16-with-BOM string's first two
// bytes are neither FE FF nor FF FE. Per spec.md §4.B this is tolerated
// at decode (treated as LE), so this error is only used internally where
// a strict check is wanted.
var ErrInvalidBOM = errors.New("textenc: invalid byte order marker")

// Delimiter returns the null-terminator sequence used by enc: one 0x00
// byte for Latin1/UTF8, two for the UTF-16 variants.
func Delimiter(enc Encoding) ([]byte, error) {
	switch enc {
	case Latin1, Utf8:
		return []byte{0}, nil
	case Utf16WithBom, Utf16BeNoBom:
		return []byte{0, 0}, nil
	default:
		return nil, ErrInvalidEncoding
	}
}

// Decode decodes b (which must not include any encoding byte) using enc
// into a Unicode string.
func Decode(enc Encoding, b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	switch enc {
	case Latin1:
		return decodeLatin1(b), nil
	case Utf16WithBom:
		return decodeUTF16WithBOM(b)
	case Utf16BeNoBom:
		return decodeUTF16(b, binary.BigEndian), nil
	case Utf8:
		return string(b), nil
	default:
		return "", ErrInvalidEncoding
	}
}

func decodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, x := range b {
		r[i] = rune(x)
	}
	return string(r)
}

func decodeUTF16WithBOM(b []byte) (string, error) {
	if len(b) < 2 {
		return "", nil
	}
	bo := binary.ByteOrder(binary.LittleEndian)
	rest := b
	switch {
	case b[0] == 0xFE && b[1] == 0xFF:
		bo = binary.BigEndian
		rest = b[2:]
	case b[0] == 0xFF && b[1] == 0xFE:
		bo = binary.LittleEndian
		rest = b[2:]
	default:
		// Observed interop: no BOM present, treat as little-endian
		// rather than failing. See spec.md §4.B.
		rest = b
	}
	return decodeUTF16(rest, bo), nil
}

func decodeUTF16(b []byte, bo binary.ByteOrder) string {
	n := len(b) / 2
	s := make([]uint16, 0, n)
	for i := 0; i+1 < len(b); i += 2 {
		s = append(s, bo.Uint16(b[i:i+2]))
	}
	return string(utf16.Decode(s))
}

// Encode renders s using enc. UTF-16 output is always little-endian with
// a leading BOM when enc is Utf16WithBom; Utf16BeNoBom emits big-endian
// without a BOM. Latin1 replaces any code point above 0xFF with '?'.
func Encode(enc Encoding, s string) ([]byte, error) {
	switch enc {
	case Latin1:
		return encodeLatin1(s), nil
	case Utf8:
		return []byte(s), nil
	case Utf16WithBom:
		b := encodeUTF16(s, binary.LittleEndian)
		return append([]byte{0xFF, 0xFE}, b...), nil
	case Utf16BeNoBom:
		return encodeUTF16(s, binary.BigEndian), nil
	default:
		return nil, ErrInvalidEncoding
	}
}

func encodeLatin1(s string) []byte {
	r := []rune(s)
	b := make([]byte, len(r))
	for i, c := range r {
		if c > 0xFF {
			b[i] = '?'
			continue
		}
		b[i] = byte(c)
	}
	return b
}

func encodeUTF16(s string, bo binary.ByteOrder) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, len(u)*2)
	for i, v := range u {
		bo.PutUint16(b[i*2:], v)
	}
	return b
}

// SplitNullTerminated splits b at the first occurrence of enc's
// null-terminator sequence, aligned to the encoding's unit size for the
// UTF-16 variants (a lone 0x00 at an odd offset is not a terminator).
// It returns the text before the terminator, the remainder after it, and
// whether a terminator was found.
func SplitNullTerminated(enc Encoding, b []byte) (head, tail []byte, found bool) {
	switch enc {
	case Latin1, Utf8:
		for i, c := range b {
			if c == 0 {
				return b[:i], b[i+1:], true
			}
		}
		return b, nil, false
	case Utf16WithBom, Utf16BeNoBom:
		for i := 0; i+1 < len(b); i += 2 {
			if b[i] == 0 && b[i+1] == 0 {
				return b[:i], b[i+2:], true
			}
		}
		return b, nil, false
	default:
		return b, nil, false
	}
}
