package id3v2

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/syncsafe"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/textenc"
)

// Tag is a fully parsed (or freshly constructed) ID3v2 tag: header flags,
// the version, and the ordered frame list.
type Tag struct {
	Version           Version
	Unsynchronisation bool
	Experimental      bool
	FooterPresent     bool
	Frames            []Frame

	// HasDuplicateTag is set by Parse when a second, valid ID3v2 header is
	// found immediately following this tag. The first tag is authoritative
	// on read; the duplicate is neither merged nor consumed here (spec.md
	// §4.E "Duplicate-tag detection", and the Open Question in spec.md §9).
	HasDuplicateTag bool
}

// RenderOptions controls Tag.Render.
type RenderOptions struct {
	// PaddingSize overrides the default padding (1024 bytes, or 10% of
	// content up to a 64KiB cap). Ignored when FooterPresent is true
	// (footer and padding are mutually exclusive, spec.md §4.E).
	PaddingSize int
	// HasPaddingSizeOverride distinguishes "explicitly zero padding" from
	// "use the default".
	HasPaddingSizeOverride bool
}

const (
	defaultPaddingMin = 1024
	defaultPaddingCap = 65536
)

// Parse decodes an ID3v2 tag starting at offset 0 of b. b may contain
// trailing bytes beyond the tag (e.g. the audio stream); only the header's
// declared Size is consumed in addition to the fixed 10-byte header and
// optional footer.
func Parse(b binutil.Buffer) (*Tag, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}

	body, err := b.Slice(headerSize, int(h.Size))
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "tag body shorter than declared size")
	}
	if h.Unsynchronisation {
		// Tag-level unsynchronization (spec.md §4.C/§4.E) is undone once,
		// over the whole body, before any frame header or size is read —
		// the FF-00 stuffing spans frame boundaries, not just payloads.
		body = binutil.New(syncsafe.DecodeUnsynchronized(body.Bytes()))
	}

	offset := 0
	if h.ExtendedHeader {
		var consumed int
		switch h.Version {
		case Version3:
			ehBuf, err := body.From(0)
			if err != nil {
				return nil, err
			}
			_, consumed, err = parseExtendedHeaderV3(ehBuf)
			if err != nil {
				return nil, err
			}
		case Version4:
			ehBuf, err := body.From(0)
			if err != nil {
				return nil, err
			}
			_, consumed, err = parseExtendedHeaderV4(ehBuf)
			if err != nil {
				return nil, err
			}
		}
		offset += consumed
	}

	t := &Tag{
		Version:           h.Version,
		Unsynchronisation: h.Unsynchronisation,
		Experimental:      h.Experimental,
		FooterPresent:     h.FooterPresent,
	}

	full := body
	for offset < full.Len() {
		if offset+4 > full.Len() {
			break
		}
		// Padding is a run of 0x00 bytes; the first frame ID byte being
		// zero signals the start of padding (spec.md id3v2.go teacher
		// behavior: size==0 / zero name terminates frame scanning).
		if full.Bytes()[offset] == 0 {
			break
		}

		frameBuf, err := full.From(offset)
		if err != nil {
			return nil, err
		}
		fh, err := parseFrameHeader(frameBuf, h.Version, full, offset)
		if err != nil {
			return nil, err
		}
		if fh.Size == 0 && fh.ID == "" {
			break
		}
		if !validFrameID(fh.ID) {
			break
		}

		payloadStart := offset + fh.HeaderSize
		payloadBuf, err := full.Slice(payloadStart, fh.Size)
		if err != nil {
			// Structural inconsistency in one frame does not invalidate
			// the whole tag-level parse of the header; but we cannot
			// safely continue scanning past a frame whose size we cannot
			// trust, so we stop here (spec.md §7 propagation policy).
			break
		}
		payload := cloneBytes(payloadBuf.Bytes())

		if fh.Flags.Unsynchronisation {
			payload = syncsafe.DecodeUnsynchronized(payload)
		}
		if fh.Flags.DataLengthIndicator && len(payload) >= 4 {
			// The 4-byte syncsafe length indicator precedes the payload
			// after all other transforms; we have already applied
			// unsynchronisation above, so strip it now.
			payload = payload[4:]
		}

		frame, err := decodeFramePayload(fh.ID, fh.Flags, payload)
		if err != nil {
			// Frame-level errors are recoverable: keep the frame opaque
			// and continue (spec.md §7).
			frame = &OpaqueFrame{ID: fh.ID, Flags: fh.Flags, Payload: payload}
		}
		if tf, ok := frame.(*TextFrame); ok && h.Version != Version4 && len(tf.Values) > 1 {
			// Pre-v2.4 readers consolidate multiple values into one.
			tf.Values = []string{joinValues(tf.Values)}
		}
		t.Frames = append(t.Frames, frame)

		offset = payloadStart + fh.Size
	}

	// Duplicate-tag detection: peek immediately after this tag (and its
	// footer, if any) for another valid ID3v2 header.
	dupOffset := h.TotalSize()
	if dupOffset+headerSize <= b.Len() {
		if dupBuf, err := b.Slice(dupOffset, headerSize); err == nil {
			if _, err := ParseHeader(dupBuf); err == nil {
				t.HasDuplicateTag = true
			}
		}
	}

	return t, nil
}

// decodeFramePayload dispatches on frame ID to the polymorphic frame
// variant described in spec.md §4.E. Frames using compression or
// encryption are passed through as opaque (transform not applied).
func decodeFramePayload(id string, flags FrameFlags, b []byte) (Frame, error) {
	if flags.Compression || flags.Encryption {
		return &OpaqueFrame{ID: id, Flags: flags, Payload: b}, nil
	}

	switch {
	case len(id) > 0 && id[0] == 'T' && id != "TXXX" && id != "TXX":
		return decodeTextFrame(id, b)
	case id == "TXXX" || id == "TXX":
		return decodeUserTextFrame(id, b)
	case len(id) > 0 && id[0] == 'W' && id != "WXXX" && id != "WXX":
		return decodeURLFrame(id, b)
	case id == "WXXX" || id == "WXX":
		return decodeUserURLFrame(id, b)
	case id == "COMM" || id == "COM" || id == "USLT" || id == "ULT":
		return decodeCommentFrame(id, b)
	case id == "SYLT" || id == "SLT":
		return decodeSyncedLyricsFrame(id, b)
	case id == "APIC" || id == "PIC":
		return decodeAPICFrame(id, b)
	case id == "GEOB" || id == "GEO":
		return decodeGEOBFrame(id, b)
	case id == "PRIV":
		return decodePRIVFrame(b)
	case id == "POPM":
		return decodePOPMFrame(b)
	case id == "UFID" || id == "UFI":
		return decodeUFIDFrame(id, b)
	case id == "CHAP":
		return decodeChapterFrame(b)
	case id == "CTOC":
		return decodeTOCFrame(b)
	default:
		return &OpaqueFrame{ID: id, Payload: b}, nil
	}
}

func decodeChapterFrame(b []byte) (*ChapterFrame, error) {
	elementID, rest, found := textenc.SplitNullTerminated(textenc.Latin1, b)
	if !found || len(rest) < 16 {
		return nil, errors.Wrap(ErrInsufficientData, "CHAP")
	}
	f := &ChapterFrame{
		ElementID:   string(elementID),
		StartTimeMs: be32(rest[0:4]),
		EndTimeMs:   be32(rest[4:8]),
		StartOffset: be32(rest[8:12]),
		EndOffset:   be32(rest[12:16]),
	}
	subs, err := parseSubFrames(rest[16:])
	if err != nil {
		return nil, err
	}
	f.SubFrames = subs
	return f, nil
}

func decodeTOCFrame(b []byte) (*TOCFrame, error) {
	elementID, rest, found := textenc.SplitNullTerminated(textenc.Latin1, b)
	if !found || len(rest) < 2 {
		return nil, errors.Wrap(ErrInsufficientData, "CTOC")
	}
	flags := rest[0]
	childCount := int(rest[1])
	rest = rest[2:]
	f := &TOCFrame{
		ElementID: string(elementID),
		TopLevel:  flags&0x01 != 0,
		Ordered:   flags&0x02 != 0,
	}
	for i := 0; i < childCount; i++ {
		child, tail, found := textenc.SplitNullTerminated(textenc.Latin1, rest)
		if !found {
			return nil, errors.Wrap(ErrInsufficientData, "CTOC child element id")
		}
		f.ChildElementIDs = append(f.ChildElementIDs, string(child))
		rest = tail
	}
	subs, err := parseSubFrames(rest)
	if err != nil {
		return nil, err
	}
	f.SubFrames = subs
	return f, nil
}

// parseSubFrames parses a sequence of v2.3-style 10-byte-header
// sub-frames embedded inside CHAP/CTOC, stopping when the buffer is
// exhausted.
func parseSubFrames(b []byte) ([]Frame, error) {
	var out []Frame
	buf := binutil.New(b)
	offset := 0
	for offset+10 <= buf.Len() {
		if buf.Bytes()[offset] == 0 {
			break
		}
		sub, err := buf.From(offset)
		if err != nil {
			break
		}
		fh, err := parseFrameHeader(sub, Version3, buf, offset)
		if err != nil || !validFrameID(fh.ID) {
			break
		}
		payloadStart := offset + fh.HeaderSize
		payloadBuf, err := buf.Slice(payloadStart, fh.Size)
		if err != nil {
			break
		}
		frame, err := decodeFramePayload(fh.ID, fh.Flags, cloneBytes(payloadBuf.Bytes()))
		if err != nil {
			frame = &OpaqueFrame{ID: fh.ID, Flags: fh.Flags, Payload: cloneBytes(payloadBuf.Bytes())}
		}
		out = append(out, frame)
		offset = payloadStart + fh.Size
	}
	return out, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func encodeSubFrame(f Frame, enc textenc.Encoding, version Version) ([]byte, error) {
	payload, err := f.encode(enc, version)
	if err != nil {
		return nil, err
	}
	header, err := renderFrameHeader(f.FrameID(), len(payload), FrameFlags{}, Version3)
	if err != nil {
		return nil, err
	}
	return append(header, payload...), nil
}

// preferredOrder lists primary text frames in the order they should be
// rendered first (spec.md §4.E "Rendering"); all other frames follow in
// insertion order.
var preferredOrder = []string{
	"TIT2", "TPE1", "TALB", "TPE2", "TRCK", "TPOS", "TDRC", "TYER", "TCON",
}

func preferredRank(id string) int {
	for i, v := range preferredOrder {
		if v == id {
			return i
		}
	}
	return len(preferredOrder)
}

// defaultTextEncoding returns the encoding used for newly-rendered text
// fields: Latin-1 when the string round-trips losslessly, else the
// richest encoding available for the tag version.
func defaultTextEncoding(s string, version Version) textenc.Encoding {
	ascii := true
	for _, r := range s {
		if r > 0xFF {
			ascii = false
			break
		}
	}
	if ascii {
		return textenc.Latin1
	}
	if version == Version4 {
		return textenc.Utf8
	}
	return textenc.Utf16WithBom
}

// Render serializes the tag to bytes: header, extended-header-free frame
// stream (re-encoding text per the tag's version), and padding. Footer is
// never emitted together with padding.
func (t *Tag) Render(opts RenderOptions) ([]byte, error) {
	frames := make([]Frame, len(t.Frames))
	copy(frames, t.Frames)

	// Stable-sort by preferred rank, preserving insertion order otherwise.
	order := make([]int, len(frames))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := frames[order[j-1]], frames[order[j]]
			if preferredRank(a.FrameID()) > preferredRank(b.FrameID()) {
				order[j-1], order[j] = order[j], order[j-1]
			} else {
				break
			}
		}
	}

	var body []byte
	for _, idx := range order {
		f := frames[idx]
		enc := defaultTextEncoding("", t.Version)
		if tf, ok := f.(*TextFrame); ok {
			joined := ""
			for _, v := range tf.Values {
				joined += v
			}
			enc = defaultTextEncoding(joined, t.Version)
		}
		if enc == textenc.Utf8 && t.Version != Version4 {
			enc = textenc.Utf16WithBom
		}
		payload, err := f.encode(enc, t.Version)
		if err != nil {
			return nil, err
		}

		var flags FrameFlags
		if of, ok := f.(*OpaqueFrame); ok {
			flags = of.Flags
		}
		header, err := renderFrameHeader(f.FrameID(), len(payload), flags, t.Version)
		if err != nil {
			return nil, err
		}
		body = append(body, header...)
		body = append(body, payload...)
	}

	if t.Unsynchronisation {
		body = syncsafe.EncodeUnsynchronized(body)
	}

	padding := opts.PaddingSize
	if !opts.HasPaddingSizeOverride {
		padding = defaultPaddingMin
		if tenPct := len(body) / 10; tenPct > padding {
			padding = tenPct
		}
		if padding > defaultPaddingCap {
			padding = defaultPaddingCap
		}
	}
	if t.FooterPresent {
		padding = 0
	}

	h := &Header{
		Version:           t.Version,
		Unsynchronisation: t.Unsynchronisation,
		Experimental:      t.Experimental,
		FooterPresent:     t.FooterPresent,
		Size:              uint32(len(body) + padding),
	}
	headerBytes, err := h.Render()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(headerBytes)+len(body)+padding)
	out = append(out, headerBytes...)
	out = append(out, body...)
	out = append(out, make([]byte, padding)...)

	if t.FooterPresent {
		f := &Footer{Header: *h}
		footerBytes, err := f.Render()
		if err != nil {
			return nil, err
		}
		out = append(out, footerBytes...)
	}
	return out, nil
}

// Get returns the first frame matching key (ID, or ID+discriminant for
// multi-instance frame kinds), or nil if absent.
func (t *Tag) Get(key string) Frame {
	for _, f := range t.Frames {
		if f.Key() == key {
			return f
		}
	}
	return nil
}

// GetAll returns every frame with the given frame ID (not discriminant-
// filtered), preserving relative order.
func (t *Tag) GetAll(id string) []Frame {
	var out []Frame
	for _, f := range t.Frames {
		if f.FrameID() == id {
			out = append(out, f)
		}
	}
	return out
}

// Set inserts or replaces the single-instance frame matching f.Key(),
// preserving the original slot's position if replacing, else appending.
func (t *Tag) Set(f Frame) {
	for i, existing := range t.Frames {
		if existing.Key() == f.Key() {
			t.Frames[i] = f
			return
		}
	}
	t.Frames = append(t.Frames, f)
}

// Remove deletes every frame matching key.
func (t *Tag) Remove(key string) {
	out := t.Frames[:0]
	for _, f := range t.Frames {
		if f.Key() != key {
			out = append(out, f)
		}
	}
	t.Frames = out
}

// SplitMultiInstanceID reports whether id is a frame ID that may legally
// repeat within a tag (keyed by a discriminant rather than by ID alone).
func SplitMultiInstanceID(id string) bool {
	return multiInstanceIDs[id]
}
