// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binutil provides the shared binary-buffer value used by every
// codec package: an immutable, shareable byte view with endian-aware
// readers, plus a fluent builder for rendering.
package binutil

import (
	"encoding/hex"
	"hash/crc32"

	"github.com/pkg/errors"
)

// ErrInsufficientData is returned whenever a read would run past the end
// of a Buffer. No reader in this package ever returns a partial result.
var ErrInsufficientData = errors.New("binutil: insufficient data")

// Buffer is an immutable, shareable sequence of bytes. Slicing a Buffer
// yields another Buffer sharing the same underlying array: the source
// bytes must remain alive as long as any view into them does.
type Buffer struct {
	b []byte
}

// New wraps b as a Buffer. The returned Buffer shares b's backing array;
// callers must not mutate b afterwards if they need the Buffer to remain
// stable.
func New(b []byte) Buffer {
	if b == nil {
		b = []byte{}
	}
	return Buffer{b: b}
}

// Filled returns a Buffer of n bytes, each set to v.
func Filled(n int, v byte) Buffer {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return Buffer{b: b}
}

// Len returns the number of bytes in the buffer.
func (b Buffer) Len() int { return len(b.b) }

// Empty reports whether the buffer has zero length. This is distinct from
// a nil/absent buffer at the call site: Buffer itself never distinguishes
// the two, callers track absence with an additional bool or pointer.
func (b Buffer) Empty() bool { return len(b.b) == 0 }

// At returns the byte at index i.
func (b Buffer) At(i int) (byte, error) {
	if i < 0 || i >= len(b.b) {
		return 0, ErrInsufficientData
	}
	return b.b[i], nil
}

// Slice returns a view of length bytes starting at offset. The returned
// Buffer shares the backing array with b.
func (b Buffer) Slice(offset, length int) (Buffer, error) {
	if offset < 0 || length < 0 || offset+length > len(b.b) {
		return Buffer{}, ErrInsufficientData
	}
	return Buffer{b: b.b[offset : offset+length]}, nil
}

// From returns a view of all bytes from offset to the end of b.
func (b Buffer) From(offset int) (Buffer, error) {
	return b.Slice(offset, len(b.b)-offset)
}

// Bytes returns the raw bytes backing the buffer. The caller must treat
// the result as read-only: it shares storage with b and any other view
// derived from the same source.
func (b Buffer) Bytes() []byte { return b.b }

// Hex renders the buffer as a lowercase hex dump.
func (b Buffer) Hex() string { return hex.EncodeToString(b.b) }

// CRC8 computes a CRC-8 (poly 0x07, matching the APE/FLAC ecosystem
// convention) over the whole buffer.
func (b Buffer) CRC8() byte {
	var crc byte
	for _, v := range b.b {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC16CCITT computes the CCITT variant of CRC-16 (poly 0x1021, initial
// value 0) used by FLAC's frame/seekpoint checksums.
func (b Buffer) CRC16CCITT() uint16 {
	var crc uint16
	for _, v := range b.b {
		crc ^= uint16(v) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC32 computes the standard (IEEE) CRC-32 over the whole buffer.
func (b Buffer) CRC32() uint32 {
	return crc32.ChecksumIEEE(b.b)
}

func (b Buffer) checkRead(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(b.b) {
		return ErrInsufficientData
	}
	return nil
}

// Uint16BE reads a big-endian 16-bit unsigned integer at offset.
func (b Buffer) Uint16BE(offset int) (uint16, error) {
	if err := b.checkRead(offset, 2); err != nil {
		return 0, err
	}
	return uint16(b.b[offset])<<8 | uint16(b.b[offset+1]), nil
}

// Uint16LE reads a little-endian 16-bit unsigned integer at offset.
func (b Buffer) Uint16LE(offset int) (uint16, error) {
	if err := b.checkRead(offset, 2); err != nil {
		return 0, err
	}
	return uint16(b.b[offset+1])<<8 | uint16(b.b[offset]), nil
}

// Uint24BE reads a big-endian 24-bit unsigned integer at offset.
func (b Buffer) Uint24BE(offset int) (uint32, error) {
	if err := b.checkRead(offset, 3); err != nil {
		return 0, err
	}
	return uint32(b.b[offset])<<16 | uint32(b.b[offset+1])<<8 | uint32(b.b[offset+2]), nil
}

// Uint24LE reads a little-endian 24-bit unsigned integer at offset.
func (b Buffer) Uint24LE(offset int) (uint32, error) {
	if err := b.checkRead(offset, 3); err != nil {
		return 0, err
	}
	return uint32(b.b[offset]) | uint32(b.b[offset+1])<<8 | uint32(b.b[offset+2])<<16, nil
}

// Uint32BE reads a big-endian 32-bit unsigned integer at offset.
func (b Buffer) Uint32BE(offset int) (uint32, error) {
	if err := b.checkRead(offset, 4); err != nil {
		return 0, err
	}
	return uint32(b.b[offset])<<24 | uint32(b.b[offset+1])<<16 | uint32(b.b[offset+2])<<8 | uint32(b.b[offset+3]), nil
}

// Uint32LE reads a little-endian 32-bit unsigned integer at offset.
func (b Buffer) Uint32LE(offset int) (uint32, error) {
	if err := b.checkRead(offset, 4); err != nil {
		return 0, err
	}
	return uint32(b.b[offset]) | uint32(b.b[offset+1])<<8 | uint32(b.b[offset+2])<<16 | uint32(b.b[offset+3])<<24, nil
}

// Uint64BE reads a big-endian 64-bit unsigned integer at offset.
func (b Buffer) Uint64BE(offset int) (uint64, error) {
	if err := b.checkRead(offset, 8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b.b[offset+i])
	}
	return v, nil
}

// Uint64LE reads a little-endian 64-bit unsigned integer at offset.
func (b Buffer) Uint64LE(offset int) (uint64, error) {
	if err := b.checkRead(offset, 8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b.b[offset+i])
	}
	return v, nil
}

// Syncsafe28 reads a 28-bit syncsafe big-endian integer (four bytes, each
// with its MSB masked off) at offset. Returns ErrInvalidSyncsafe if any
// byte has its MSB set.
func (b Buffer) Syncsafe28(offset int) (uint32, error) {
	if err := b.checkRead(offset, 4); err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < 4; i++ {
		x := b.b[offset+i]
		if x&0x80 != 0 {
			return 0, ErrInvalidSyncsafe
		}
		v = v<<7 | uint32(x)
	}
	return v, nil
}

// ErrInvalidSyncsafe is returned by Syncsafe28 when a byte's MSB is set.
var ErrInvalidSyncsafe = errors.New("binutil: syncsafe byte has MSB set")
