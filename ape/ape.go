// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ape implements the APEv1/APEv2 tag codec: 32-byte header/footer,
// item key/value records, and the picture encoding convention (spec.md
// §4.F).
package ape

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

// Error kinds, matching spec.md §7.
var (
	ErrInsufficientData  = errors.New("ape: insufficient data")
	ErrBadMagic          = errors.New("ape: bad magic")
	ErrNotFound          = errors.New("ape: not found")
	ErrUnsupportedVersion = errors.New("ape: unsupported version")
	ErrInvalidFieldValue = errors.New("ape: invalid field value")
	ErrOverflow          = errors.New("ape: overflow")
	ErrInconsistent      = errors.New("ape: inconsistent")
)

const footerHeaderSize = 32

const magic = "APETAGEX"

// ItemType is the APE item value-type enumerant (flag bits 1-2).
type ItemType byte

const (
	ItemText             ItemType = 0
	ItemBinary           ItemType = 1
	ItemExternalLocator  ItemType = 2
	itemReserved         ItemType = 3
)

var reservedKeys = map[string]bool{
	"ID3": true, "TAG": true, "OggS": true, "MP+": true,
}

// Item is a single APE key/value record.
type Item struct {
	Key      string
	Type     ItemType
	ReadOnly bool
	Value    []byte // raw value bytes; Text/ExternalLocator decode as UTF-8
}

// Text returns the item's value decoded as UTF-8 (valid for Text and
// ExternalLocator items).
func (i Item) Text() string { return string(i.Value) }

// BinaryParts splits a Binary item into its filename and data per the
// "filename + 0x00 + data" convention. Absence of the null terminator is
// tolerated (all bytes are treated as data, per spec.md §3).
func (i Item) BinaryParts() (filename string, data []byte) {
	if idx := indexByte(i.Value, 0); idx >= 0 {
		return string(i.Value[:idx]), i.Value[idx+1:]
	}
	return "", i.Value
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func validKey(key string) bool {
	if len(key) < 2 || len(key) > 255 {
		return false
	}
	lower := strings.ToLower(key)
	for r := range reservedKeys {
		if strings.ToLower(r) == lower {
			return false
		}
	}
	for _, c := range []byte(key) {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// Tag is a fully parsed (or freshly constructed) APEv1/APEv2 tag.
type Tag struct {
	Version   uint32 // 1000 or 2000
	HasHeader bool
	Items     []Item
}

// Footer mirrors the 32-byte wire struct (header and footer share layout,
// distinguished only by the is-header flag bit).
type footer struct {
	version   uint32
	tagSize   uint32
	itemCount uint32
	flags     uint32
}

const (
	flagHasHeader = 1 << 31
	flagIsHeader  = 1 << 29
)

func parseFooterBytes(b binutil.Buffer) (*footer, error) {
	if b.Len() < footerHeaderSize {
		return nil, errors.Wrap(ErrInsufficientData, "ape footer")
	}
	if string(b.Bytes()[0:8]) != magic {
		return nil, errors.Wrap(ErrBadMagic, "expected APETAGEX")
	}
	version, err := b.Uint32LE(8)
	if err != nil {
		return nil, err
	}
	if version != 1000 && version != 2000 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	tagSize, err := b.Uint32LE(12)
	if err != nil {
		return nil, err
	}
	itemCount, err := b.Uint32LE(16)
	if err != nil {
		return nil, err
	}
	flags, err := b.Uint32LE(20)
	if err != nil {
		return nil, err
	}
	return &footer{version: version, tagSize: tagSize, itemCount: itemCount, flags: flags}, nil
}

// Locate scans the final 32 bytes of b for an APE footer, returning the
// byte offset within b where the tag (header-or-not, items through
// footer) begins, or ErrNotFound if absent — this is an optional
// structure at an optional location, per spec.md §7.
func Locate(b binutil.Buffer) (int, error) {
	if b.Len() < footerHeaderSize {
		return 0, errors.Wrap(ErrNotFound, "buffer shorter than a footer")
	}
	tail, err := b.Slice(b.Len()-footerHeaderSize, footerHeaderSize)
	if err != nil {
		return 0, err
	}
	f, err := parseFooterBytes(tail)
	if err != nil {
		return 0, errors.Wrap(ErrNotFound, "no APE footer at end of buffer")
	}
	if f.flags&flagIsHeader != 0 {
		return 0, errors.Wrap(ErrNotFound, "trailing block is a header, not a footer")
	}
	start := b.Len() - footerHeaderSize - int(f.tagSize) + footerHeaderSize
	if f.flags&flagHasHeader != 0 {
		start -= footerHeaderSize
	}
	if start < 0 {
		return 0, errors.Wrap(ErrInconsistent, "tag size exceeds buffer")
	}
	return start, nil
}

// Parse decodes an APE tag. b must start at the tag's first byte (either
// the optional header, if present, or the first item) and extend through
// the footer.
func Parse(b binutil.Buffer) (*Tag, error) {
	tail, err := b.Slice(b.Len()-footerHeaderSize, footerHeaderSize)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "missing footer")
	}
	f, err := parseFooterBytes(tail)
	if err != nil {
		return nil, err
	}

	itemsEnd := b.Len() - footerHeaderSize
	itemsStart := 0
	if f.flags&flagHasHeader != 0 {
		itemsStart = footerHeaderSize
	}

	t := &Tag{Version: f.version, HasHeader: f.flags&flagHasHeader != 0}

	offset := itemsStart
	for offset < itemsEnd {
		item, consumed, err := parseItem(b, offset, itemsEnd)
		if err != nil {
			// A malformed item is a tag-level structural problem for APE
			// (spec.md §7 treats a bad APE tag as invalidating that tag's
			// parse only, not the whole file) — abort this tag.
			return nil, err
		}
		t.Items = append(t.Items, *item)
		offset += consumed
	}

	if int(f.itemCount) != len(t.Items) {
		return nil, errors.Wrapf(ErrInconsistent, "footer declares %d items, found %d", f.itemCount, len(t.Items))
	}
	return t, nil
}

func parseItem(b binutil.Buffer, offset, limit int) (*Item, int, error) {
	valueSize, err := b.Uint32LE(offset)
	if err != nil {
		return nil, 0, errors.Wrap(ErrInsufficientData, "item value size")
	}
	if valueSize > 1<<31-1 {
		return nil, 0, errors.Wrap(ErrOverflow, "item value size too large")
	}
	flags, err := b.Uint32LE(offset + 4)
	if err != nil {
		return nil, 0, err
	}

	keyStart := offset + 8
	keyEnd := -1
	raw := b.Bytes()
	for i := keyStart; i < limit && i < b.Len(); i++ {
		if raw[i] == 0 {
			keyEnd = i
			break
		}
	}
	if keyEnd < 0 {
		return nil, 0, errors.Wrap(ErrInsufficientData, "item key terminator")
	}
	key := string(raw[keyStart:keyEnd])
	if !validKey(key) {
		return nil, 0, errors.Wrapf(ErrInvalidFieldValue, "invalid or reserved key %q", key)
	}

	valueStart := keyEnd + 1
	valueEnd := valueStart + int(valueSize)
	if valueEnd > limit {
		return nil, 0, errors.Wrap(ErrInsufficientData, "item value")
	}

	item := &Item{
		Key:      key,
		Type:     ItemType((flags >> 1) & 0x3),
		ReadOnly: flags&0x1 != 0,
		Value:    cloneBytes(raw[valueStart:valueEnd]),
	}
	return item, valueEnd - offset, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// RenderOptions controls Tag.Render.
type RenderOptions struct {
	EmitHeader bool
}

// Render serializes the tag: items sorted by rendered length ascending
// (spec.md §4.F recommendation — readers must not depend on this order),
// optional 32-byte header first, then items, then footer.
func (t *Tag) Render(opts RenderOptions) ([]byte, error) {
	rendered := make([][]byte, len(t.Items))
	for i, item := range t.Items {
		b, err := renderItem(item)
		if err != nil {
			return nil, err
		}
		rendered[i] = b
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		return len(rendered[i]) < len(rendered[j])
	})

	var itemBytes []byte
	for _, b := range rendered {
		itemBytes = append(itemBytes, b...)
	}

	tagSize := uint32(len(itemBytes) + footerHeaderSize)

	footerFlags := uint32(0) // has-footer is implicit/always true for APEv2 consumers
	if opts.EmitHeader {
		footerFlags |= flagHasHeader
	}

	footerBytes := renderFooterBytes(t.Version, tagSize, uint32(len(t.Items)), footerFlags, false)

	out := make([]byte, 0, len(itemBytes)+2*footerHeaderSize)
	if opts.EmitHeader {
		headerFlags := footerFlags | flagIsHeader
		out = append(out, renderFooterBytes(t.Version, tagSize, uint32(len(t.Items)), headerFlags, true)...)
	}
	out = append(out, itemBytes...)
	out = append(out, footerBytes...)
	return out, nil
}

func renderFooterBytes(version, tagSize, itemCount, flags uint32, isHeaderSlot bool) []byte {
	b := binutil.NewBuilder().
		WriteString(magic).
		WriteUint32LE(version).
		WriteUint32LE(tagSize).
		WriteUint32LE(itemCount).
		WriteUint32LE(flags).
		WriteBytes(make([]byte, 8))
	return b.Bytes().Bytes()
}

func renderItem(item Item) ([]byte, error) {
	if !validKey(item.Key) {
		return nil, errors.Wrapf(ErrInvalidFieldValue, "invalid or reserved key %q", item.Key)
	}
	if len(item.Value) > 1<<31-1 {
		return nil, errors.Wrap(ErrOverflow, "item value too large")
	}
	var flags uint32
	if item.ReadOnly {
		flags |= 0x1
	}
	flags |= uint32(item.Type) << 1

	b := binutil.NewBuilder().
		WriteUint32LE(uint32(len(item.Value))).
		WriteUint32LE(flags).
		WriteString(item.Key).
		WriteByte(0).
		WriteBytes(item.Value)
	return b.Bytes().Bytes(), nil
}

// pictureKindToType maps the "Cover Art (<Kind>)" key suffix to the
// ID3v2-style picture-type enumerant used across the façade.
var pictureKindToType = map[string]byte{
	"front": 0x03, "back": 0x04, "media": 0x06, "artist": 0x08,
}

// PictureKind derives the picture-type byte from a "Cover Art (<Kind>)"
// item key, or 0x00 ("Other") if the kind is not recognized.
func PictureKind(key string) byte {
	const prefix = "cover art ("
	lower := strings.ToLower(key)
	if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, ")") {
		return 0x00
	}
	kind := lower[len(prefix) : len(lower)-1]
	if t, ok := pictureKindToType[kind]; ok {
		return t
	}
	return 0x00
}

// PictureItemKey renders the "Cover Art (<Kind>)" key for a given
// ID3v2-style picture-type byte.
func PictureItemKey(pictureType byte) string {
	switch pictureType {
	case 0x03:
		return "Cover Art (Front)"
	case 0x04:
		return "Cover Art (Back)"
	case 0x06:
		return "Cover Art (Media)"
	case 0x08:
		return "Cover Art (Artist)"
	default:
		return "Cover Art (Other)"
	}
}
