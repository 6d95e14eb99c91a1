// Package mp4 implements the MP4/ISO-BMFF atom tree used by M4A/M4B
// files: box parsing with 32/64-bit sizes, the FullBox version+flags
// prefix, the moov/udta/meta/ilst iTunes metadata subtree (including
// freeform "----" atoms and the trkn/disk/covr binary encodings), per
// spec.md §4.I.
package mp4

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

var (
	ErrInsufficientData  = errors.New("mp4: insufficient data")
	ErrInvalidFieldValue = errors.New("mp4: invalid field value")
	ErrOverflow          = errors.New("mp4: overflow")
	ErrNotFound          = errors.New("mp4: not found")
)

// Box is one parsed atom. Container boxes (moov, udta, meta, ilst, and
// the item atoms inside ilst, freeform or not) expose Children; leaf boxes expose Payload (the
// bytes after the 8- or 16-byte size/type header, and after the 4-byte
// meta FullBox prefix where applicable).
type Box struct {
	Type     string
	Payload  []byte
	Children []Box

	// Extended is true for "----" freeform metadata items whose Children
	// are the synthetic mean/name/data triplet.
	Extended bool
}

// containerTypes lists the atom types this codec descends into rather
// than treating as opaque leaves, per spec.md §4.I.
var containerTypes = map[string]bool{
	"moov": true, "udta": true, "ilst": true, "----": true,
}

const metaType = "meta"

// ParseTree parses the full top-level atom sequence from b, descending
// into moov/udta/meta/ilst and the item atoms inside ilst (including
// freeform "----" atoms). Other boxes
// (mdat, free, ftyp, ...) are kept as opaque leaves so they can be
// passed through byte-exact on Render.
func ParseTree(b binutil.Buffer) ([]Box, error) {
	return parseBoxes(b, 0, b.Len())
}

func parseBoxes(b binutil.Buffer, start, end int) ([]Box, error) {
	var boxes []Box
	offset := start
	for offset < end {
		box, consumed, err := parseBox(b, offset, end)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, *box)
		offset += consumed
	}
	return boxes, nil
}

func parseBox(b binutil.Buffer, offset, limit int) (*Box, int, error) {
	if limit-offset < 8 {
		return nil, 0, errors.Wrap(ErrInsufficientData, "box header")
	}
	size32, err := b.Uint32BE(offset)
	if err != nil {
		return nil, 0, err
	}
	boxType := string(b.Bytes()[offset+4 : offset+8])

	headerSize := 8
	var size int64
	switch size32 {
	case 0:
		size = int64(limit - offset) // extends to end of parent
	case 1:
		if limit-offset < 16 {
			return nil, 0, errors.Wrap(ErrInsufficientData, "64-bit box size")
		}
		size64, err := b.Uint64BE(offset + 8)
		if err != nil {
			return nil, 0, err
		}
		size = int64(size64)
		headerSize = 16
	default:
		size = int64(size32)
	}
	if size < int64(headerSize) || offset+int(size) > limit {
		return nil, 0, errors.Wrapf(ErrInvalidFieldValue, "box %q has invalid size %d", boxType, size)
	}

	bodyStart := offset + headerSize
	bodyEnd := offset + int(size)

	box := &Box{Type: boxType}

	switch {
	case boxType == metaType:
		// meta is a FullBox: 4-byte version+flags prefix before children.
		if bodyEnd-bodyStart < 4 {
			return nil, 0, errors.Wrap(ErrInsufficientData, "meta FullBox prefix")
		}
		box.Payload = cloneBytes(b.Bytes()[bodyStart : bodyStart+4])
		children, err := parseBoxes(b, bodyStart+4, bodyEnd)
		if err != nil {
			return nil, 0, err
		}
		box.Children = children
	case containerTypes[boxType]:
		children, err := parseBoxes(b, bodyStart, bodyEnd)
		if err != nil {
			return nil, 0, err
		}
		box.Children = children
		if boxType == "----" {
			box.Extended = true
		}
		if boxType == "ilst" {
			// Each ilst item atom holds its own "data" sub-atoms.
			for i := range box.Children {
				item := &box.Children[i]
				if item.Children != nil {
					continue
				}
				sub, err := parseBoxes(binutil.New(item.Payload), 0, len(item.Payload))
				if err != nil {
					continue // a malformed item stays an opaque leaf
				}
				item.Children, item.Payload = sub, nil
			}
		}
	default:
		box.Payload = cloneBytes(b.Bytes()[bodyStart:bodyEnd])
	}

	return box, int(size), nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Render serializes a box tree back to wire form, always using the
// 32-bit size form (spec.md does not require preserving an original
// file's use of the rare 64-bit/extended-size encoding on rewrite).
func Render(boxes []Box) ([]byte, error) {
	var out []byte
	for _, box := range boxes {
		rendered, err := renderBox(box)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	return out, nil
}

func renderBox(box Box) ([]byte, error) {
	var body []byte
	if box.Type == metaType {
		body = append(body, box.Payload...)
		children, err := Render(box.Children)
		if err != nil {
			return nil, err
		}
		body = append(body, children...)
	} else if box.Children != nil || containerTypes[box.Type] {
		children, err := Render(box.Children)
		if err != nil {
			return nil, err
		}
		body = children
	} else {
		body = box.Payload
	}

	total := 8 + len(body)
	if total > 1<<32-1 {
		return nil, errors.Wrap(ErrOverflow, "box too large for 32-bit size")
	}
	out := binutil.NewBuilder().
		WriteUint32BE(uint32(total)).
		WriteString(box.Type).
		WriteBytes(body)
	return out.Bytes().Bytes(), nil
}

// FindChild returns the first direct child of parent matching typ.
func FindChild(parent []Box, typ string) (*Box, bool) {
	for i := range parent {
		if parent[i].Type == typ {
			return &parent[i], true
		}
	}
	return nil, false
}

// navigate follows types (e.g. "moov", "udta", "meta", "ilst") down from
// the root box list, returning the final box's Children (the ilst item list,
// typically).
func navigate(boxes []Box, types ...string) ([]Box, bool) {
	cur := boxes
	for _, t := range types {
		box, ok := FindChild(cur, t)
		if !ok {
			return nil, false
		}
		cur = box.Children
	}
	return cur, true
}

// ILST returns the ilst item-list children, descending
// moov -> udta -> meta -> ilst.
func ILST(boxes []Box) ([]Box, bool) {
	return navigate(boxes, "moov", "udta", "meta", "ilst")
}

// EnsureILST returns the ilst children list when the whole
// moov/udta/meta/ilst chain is present, and nil when any link is
// missing; it creates no boxes. Callers mutate the list and store it
// back through SetILST.
func EnsureILST(boxes []Box) []Box {
	if ilst, ok := ILST(boxes); ok {
		return ilst
	}
	return nil
}

// SetILST replaces (or creates) the moov.udta.meta.ilst item list with
// items.
func SetILST(boxes []Box, items []Box) []Box {
	moovIdx := -1
	for i, b := range boxes {
		if b.Type == "moov" {
			moovIdx = i
			break
		}
	}
	if moovIdx < 0 {
		boxes = append(boxes, Box{Type: "moov", Children: nil})
		moovIdx = len(boxes) - 1
	}
	boxes[moovIdx].Children = setChildChain(boxes[moovIdx].Children, items, "udta", "meta", "ilst")
	return boxes
}

func setChildChain(children []Box, leaf []Box, path ...string) []Box {
	if len(path) == 0 {
		return leaf
	}
	typ := path[0]
	idx := -1
	for i, b := range children {
		if b.Type == typ {
			idx = i
			break
		}
	}
	if idx < 0 {
		nb := Box{Type: typ, Extended: typ == "----"}
		if typ == metaType {
			nb.Payload = make([]byte, 4)
		}
		children = append(children, nb)
		idx = len(children) - 1
	}
	children[idx].Children = setChildChain(children[idx].Children, leaf, path[1:]...)
	return children
}

// ItemValue holds a single ilst item's decoded "data" atom payload:
// a type indicator (iTunes well-known-type code) and the raw bytes.
type ItemValue struct {
	TypeCode uint32 // 1 = UTF-8 text, 13/14 = JPEG/PNG, 21 = signed int, 0 = implicit
	Locale   uint32
	Data     []byte
}

// GetItem returns the decoded "data" atom payload of the ilst item
// named key (e.g. "\xa9nam", "trkn", "covr"), or ok=false if absent.
func GetItem(ilst []Box, key string) (ItemValue, bool) {
	item, ok := FindChild(ilst, key)
	if !ok {
		return ItemValue{}, false
	}
	data, ok := FindChild(item.Children, "data")
	if !ok {
		return ItemValue{}, false
	}
	return decodeDataAtom(data.Payload)
}

func decodeDataAtom(payload []byte) (ItemValue, bool) {
	b := binutil.New(payload)
	typeCode, err := b.Uint32BE(0)
	if err != nil {
		return ItemValue{}, false
	}
	locale, err := b.Uint32BE(4)
	if err != nil {
		return ItemValue{}, false
	}
	if len(payload) < 8 {
		return ItemValue{}, false
	}
	return ItemValue{TypeCode: typeCode, Locale: locale, Data: cloneBytes(payload[8:])}, true
}

// SetItem replaces (or inserts) the ilst item named key with a single
// "data" atom holding v.
func SetItem(ilst []Box, key string, v ItemValue) []Box {
	payload := binutil.NewBuilder().
		WriteUint32BE(v.TypeCode).
		WriteUint32BE(v.Locale).
		WriteBytes(v.Data).
		Bytes().Bytes()
	dataBox := Box{Type: "data", Payload: payload}
	itemBox := Box{Type: key, Children: []Box{dataBox}}

	for i, b := range ilst {
		if b.Type == key {
			ilst[i] = itemBox
			return ilst
		}
	}
	return append(ilst, itemBox)
}

// RemoveItem deletes the ilst item named key, if present.
func RemoveItem(ilst []Box, key string) []Box {
	out := ilst[:0]
	for _, b := range ilst {
		if b.Type != key {
			out = append(out, b)
		}
	}
	return out
}

// FreeformValue is a decoded "----" atom: reverse-DNS mean namespace,
// name, and data payload.
type FreeformValue struct {
	Mean string
	Name string
	Data []byte
}

// GetFreeforms returns every "----" item whose mean/name pair is
// present, decoded.
func GetFreeforms(ilst []Box) []FreeformValue {
	var out []FreeformValue
	for _, item := range ilst {
		if item.Type != "----" {
			continue
		}
		var mean, name string
		var data []byte
		for _, c := range item.Children {
			switch c.Type {
			case "mean":
				if len(c.Payload) > 4 {
					mean = string(c.Payload[4:])
				}
			case "name":
				if len(c.Payload) > 4 {
					name = string(c.Payload[4:])
				}
			case "data":
				if v, ok := decodeDataAtom(c.Payload); ok {
					data = v.Data
				}
			}
		}
		if mean != "" || name != "" {
			out = append(out, FreeformValue{Mean: mean, Name: name, Data: data})
		}
	}
	return out
}

// AddFreeform appends a new "----" item with the standard
// mean/name/data triplet, each prefixed by the 4-byte FullBox
// version+flags field iTunes uses (always zero here).
func AddFreeform(ilst []Box, mean, name string, data []byte) []Box {
	fullBoxPrefix := []byte{0, 0, 0, 0}
	meanBox := Box{Type: "mean", Payload: append(append([]byte{}, fullBoxPrefix...), mean...)}
	nameBox := Box{Type: "name", Payload: append(append([]byte{}, fullBoxPrefix...), name...)}
	dataPayload := binutil.NewBuilder().
		WriteUint32BE(1). // UTF-8 text
		WriteUint32BE(0).
		WriteBytes(data).
		Bytes().Bytes()
	dataBox := Box{Type: "data", Payload: dataPayload}
	item := Box{Type: "----", Extended: true, Children: []Box{meanBox, nameBox, dataBox}}
	return append(ilst, item)
}

// DecodeTrackOrDisc decodes a "trkn"/"disk"-style binary payload:
// 2 reserved bytes, 2-byte index, 2-byte total, 2 reserved bytes.
func DecodeTrackOrDisc(data []byte) (index, total uint16, err error) {
	if len(data) < 6 {
		return 0, 0, errors.Wrap(ErrInsufficientData, "trkn/disk payload")
	}
	b := binutil.New(data)
	index, _ = b.Uint16BE(2)
	total, _ = b.Uint16BE(4)
	return index, total, nil
}

// EncodeTrackOrDisc renders a trkn/disk-style binary payload.
func EncodeTrackOrDisc(index, total uint16) []byte {
	return binutil.NewBuilder().
		WriteUint16BE(0).
		WriteUint16BE(index).
		WriteUint16BE(total).
		WriteUint16BE(0).
		Bytes().Bytes()
}

// Well-known ilst keys (spec.md §4.I), text unless noted.
const (
	KeyTitle       = "\xa9nam"
	KeyAlbum       = "\xa9alb"
	KeyArtist      = "\xa9ART"
	KeyAlbumArtist = "aART"
	KeyComposer    = "\xa9wrt"
	KeyGenre       = "\xa9gen"
	KeyYear        = "\xa9day"
	KeyComment     = "\xa9cmt"
	KeyLyrics      = "\xa9lyr"
	KeyTrack       = "trkn" // binary
	KeyDisc        = "disk" // binary
	KeyCover       = "covr" // binary (JPEG/PNG)
	KeyCompilation = "cpil" // binary bool
)
