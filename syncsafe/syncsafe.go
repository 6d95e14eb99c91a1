// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syncsafe implements the ID3v2 syncsafe integer codec and the
// unsynchronization byte-stuffing transform (spec.md §4.C).
package syncsafe

import "github.com/pkg/errors"

// ErrInvalid is returned by Decode when a byte's MSB is set.
var ErrInvalid = errors.New("syncsafe: byte has MSB set")

// ErrOutOfRange is returned by Encode when n does not fit in 28 bits.
var ErrOutOfRange = errors.New("syncsafe: value out of 28-bit range")

// Decode decodes a 4-byte syncsafe big-endian integer. Every byte's MSB
// must be 0, or ErrInvalid is returned.
func Decode(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, errors.New("syncsafe: need exactly 4 bytes")
	}
	var v uint32
	for _, x := range b {
		if x&0x80 != 0 {
			return 0, ErrInvalid
		}
		v = v<<7 | uint32(x)
	}
	return v, nil
}

// Encode encodes n (which must be in [0, 2^28)) as a 4-byte syncsafe
// big-endian integer.
func Encode(n uint32) ([]byte, error) {
	if n >= 1<<28 {
		return nil, ErrOutOfRange
	}
	return []byte{
		byte((n >> 21) & 0x7F),
		byte((n >> 14) & 0x7F),
		byte((n >> 7) & 0x7F),
		byte(n & 0x7F),
	}, nil
}

// DecodeUnsynchronized removes ID3v2 unsynchronization byte-stuffing: any
// occurrence of the two-byte sequence 0xFF 0x00 is replaced by the single
// byte 0xFF.
func DecodeUnsynchronized(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// EncodeUnsynchronized applies ID3v2 unsynchronization byte-stuffing: a
// 0x00 byte is inserted after every 0xFF byte that is the last byte of
// the buffer, is followed by a byte with its top three bits set (which
// would otherwise look like an MPEG frame sync or a syncsafe violation),
// or is followed by 0x00 (so that an original 0xFF 0x00 pair survives
// decoding).
func EncodeUnsynchronized(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/32+1)
	for i, c := range b {
		out = append(out, c)
		if c != 0xFF {
			continue
		}
		if i == len(b)-1 || b[i+1]&0xE0 == 0xE0 || b[i+1] == 0x00 {
			out = append(out, 0x00)
		}
	}
	return out
}
