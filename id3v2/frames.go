package id3v2

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/textenc"
)

// Frame is the closed sum of ID3v2 frame payload kinds. Unknown or
// unsupported-transform frames are carried as OpaqueFrame so that a
// parse/render round-trip is always lossless (spec.md §9).
type Frame interface {
	FrameID() string
	// Key returns the façade's lookup key: the frame ID alone for
	// single-instance frames, or ID + a discriminant for multi-instance
	// frames (TXXX, WXXX, COMM, USLT, SYLT, APIC, GEOB, UFID, PRIV, POPM,
	// CHAP, CTOC), per spec.md §3.
	Key() string
	encode(enc textenc.Encoding, version Version) ([]byte, error)
}

// multiInstanceIDs lists the v2.3/2.4 frame IDs that may legally repeat
// within a tag, keyed by a discriminant rather than ID alone.
var multiInstanceIDs = map[string]bool{
	"TXXX": true, "WXXX": true, "COMM": true, "USLT": true, "SYLT": true,
	"APIC": true, "GEOB": true, "UFID": true, "PRIV": true, "POPM": true,
	"CHAP": true, "CTOC": true,
	// v2.2 equivalents
	"TXX": true, "WXX": true, "COM": true, "ULT": true, "SLT": true,
	"PIC": true, "GEO": true, "UFI": true,
}

// --- Text frame (T*, excluding TXXX/TXX) ---

type TextFrame struct {
	ID     string
	Values []string // multi-value (v2.4 null-separated; v2.3 joined to one element on parse)
}

func (f *TextFrame) FrameID() string { return f.ID }
func (f *TextFrame) Key() string     { return f.ID }

func decodeTextFrame(id string, b []byte) (*TextFrame, error) {
	if len(b) == 0 {
		return &TextFrame{ID: id}, nil
	}
	enc := textenc.Encoding(b[0])
	body := b[1:]
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "text frame encoding byte")
	}
	var values []string
	for len(body) > 0 {
		head, tail, found := textenc.SplitNullTerminated(enc, body)
		s, err := textenc.Decode(enc, head)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
		if !found {
			break
		}
		body = tail
	}
	return &TextFrame{ID: id, Values: values}, nil
}

func (f *TextFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	values := f.Values
	if version != Version4 && len(values) > 1 {
		// v2.3 writers emit only the joined form (spec.md §4.E).
		values = []string{joinValues(values)}
	}
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	for i, v := range values {
		enc2, err := textenc.Encode(enc, v)
		if err != nil {
			return nil, err
		}
		out = append(out, enc2...)
		if i < len(values)-1 {
			out = append(out, delim...)
		}
	}
	return out, nil
}

func joinValues(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += "/"
		}
		out += v
	}
	return out
}

// --- URL frame (W*, excluding WXXX/WXX) ---

type URLFrame struct {
	ID  string
	URL string
}

func (f *URLFrame) FrameID() string { return f.ID }
func (f *URLFrame) Key() string     { return f.ID }

func decodeURLFrame(id string, b []byte) (*URLFrame, error) {
	return &URLFrame{ID: id, URL: string(b)}, nil
}

func (f *URLFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	return []byte(f.URL), nil
}

// --- User-defined text (TXXX / TXX) ---

type UserTextFrame struct {
	ID          string // "TXXX" or "TXX"
	Description string
	Value       string
}

func (f *UserTextFrame) FrameID() string { return f.ID }
func (f *UserTextFrame) Key() string     { return f.ID + "\x00" + f.Description }

func decodeUserTextFrame(id string, b []byte) (*UserTextFrame, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrInsufficientData, "TXXX")
	}
	enc := textenc.Encoding(b[0])
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "TXXX encoding byte")
	}
	descBytes, valBytes, _ := textenc.SplitNullTerminated(enc, b[1:])
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	val, err := textenc.Decode(enc, valBytes)
	if err != nil {
		return nil, err
	}
	return &UserTextFrame{ID: id, Description: desc, Value: val}, nil
}

func (f *UserTextFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	val, err := textenc.Encode(enc, f.Value)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	out = append(out, desc...)
	out = append(out, delim...)
	out = append(out, val...)
	return out, nil
}

// --- User-defined URL (WXXX / WXX) ---

type UserURLFrame struct {
	ID          string
	Description string
	URL         string
}

func (f *UserURLFrame) FrameID() string { return f.ID }
func (f *UserURLFrame) Key() string     { return f.ID + "\x00" + f.Description }

func decodeUserURLFrame(id string, b []byte) (*UserURLFrame, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrInsufficientData, "WXXX")
	}
	enc := textenc.Encoding(b[0])
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "WXXX encoding byte")
	}
	descBytes, urlBytes, _ := textenc.SplitNullTerminated(enc, b[1:])
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	return &UserURLFrame{ID: id, Description: desc, URL: string(urlBytes)}, nil
}

func (f *UserURLFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	out = append(out, desc...)
	out = append(out, delim...)
	out = append(out, []byte(f.URL)...)
	return out, nil
}

// --- Comment / Unsynchronized lyrics (COMM, USLT / COM, ULT) ---

type CommentFrame struct {
	ID          string // "COMM"/"COM" or "USLT"/"ULT"
	Language    string // 3 bytes
	Description string
	Text        string
}

func (f *CommentFrame) FrameID() string { return f.ID }
func (f *CommentFrame) Key() string     { return f.ID + "\x00" + f.Language + "\x00" + f.Description }

func decodeCommentFrame(id string, b []byte) (*CommentFrame, error) {
	if len(b) < 4 {
		return nil, errors.Wrap(ErrInsufficientData, "COMM/USLT")
	}
	enc := textenc.Encoding(b[0])
	lang := string(b[1:4])
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "COMM/USLT encoding byte")
	}
	descBytes, textBytes, _ := textenc.SplitNullTerminated(enc, b[4:])
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	text, err := textenc.Decode(enc, textBytes)
	if err != nil {
		return nil, err
	}
	return &CommentFrame{ID: id, Language: lang, Description: desc, Text: text}, nil
}

func (f *CommentFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	lang := f.Language
	for len(lang) < 3 {
		lang += "\x00"
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	text, err := textenc.Encode(enc, f.Text)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	out = append(out, lang[:3]...)
	out = append(out, desc...)
	out = append(out, delim...)
	out = append(out, text...)
	return out, nil
}

// --- Synchronized lyrics (SYLT / SLT) ---

type SyncedLyricsLine struct {
	Text      string
	Timestamp uint32
}

type SyncedLyricsFrame struct {
	ID              string
	Language        string
	TimestampFormat byte // 1=MPEG frames, 2=milliseconds
	ContentType     byte
	Description     string
	Lines           []SyncedLyricsLine
}

func (f *SyncedLyricsFrame) FrameID() string { return f.ID }
func (f *SyncedLyricsFrame) Key() string {
	return f.ID + "\x00" + f.Language + "\x00" + f.Description + "\x00" + string(rune(f.ContentType))
}

func decodeSyncedLyricsFrame(id string, b []byte) (*SyncedLyricsFrame, error) {
	if len(b) < 6 {
		return nil, errors.Wrap(ErrInsufficientData, "SYLT")
	}
	enc := textenc.Encoding(b[0])
	lang := string(b[1:4])
	tsFormat := b[4]
	contentType := b[5]
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "SYLT encoding byte")
	}
	descBytes, rest, _ := textenc.SplitNullTerminated(enc, b[6:])
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	f := &SyncedLyricsFrame{ID: id, Language: lang, TimestampFormat: tsFormat, ContentType: contentType, Description: desc}
	for len(rest) > 0 {
		textBytes, tail, found := textenc.SplitNullTerminated(enc, rest)
		if !found || len(tail) < 4 {
			break
		}
		text, err := textenc.Decode(enc, textBytes)
		if err != nil {
			return nil, err
		}
		ts := binary.BigEndian.Uint32(tail[0:4])
		f.Lines = append(f.Lines, SyncedLyricsLine{Text: text, Timestamp: ts})
		rest = tail[4:]
	}
	return f, nil
}

func (f *SyncedLyricsFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	lang := f.Language
	for len(lang) < 3 {
		lang += "\x00"
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	out = append(out, lang[:3]...)
	out = append(out, f.TimestampFormat, f.ContentType)
	out = append(out, desc...)
	out = append(out, delim...)
	for _, line := range f.Lines {
		t, err := textenc.Encode(enc, line.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, t...)
		out = append(out, delim...)
		var ts [4]byte
		binary.BigEndian.PutUint32(ts[:], line.Timestamp)
		out = append(out, ts[:]...)
	}
	return out, nil
}

// --- Attached picture (APIC / PIC) ---

// pictureTypes maps the 21-value ID3v2 APIC picture-type enumerant to a
// human label, used for debugging/diagnostics only.
var pictureTypes = map[byte]string{
	0x00: "Other", 0x01: "32x32 file icon (PNG only)", 0x02: "Other file icon",
	0x03: "Cover (front)", 0x04: "Cover (back)", 0x05: "Leaflet page",
	0x06: "Media", 0x07: "Lead artist/performer/soloist", 0x08: "Artist/performer",
	0x09: "Conductor", 0x0A: "Band/Orchestra", 0x0B: "Composer",
	0x0C: "Lyricist/text writer", 0x0D: "Recording Location", 0x0E: "During recording",
	0x0F: "During performance", 0x10: "Movie/video screen capture", 0x11: "A bright coloured fish",
	0x12: "Illustration", 0x13: "Band/artist logotype", 0x14: "Publisher/Studio logotype",
}

type PictureFrame struct {
	ID          string // "APIC" or "PIC"
	MIMEType    string // v2.2 uses a 3-char format code ("PNG"/"JPG") mapped to/from a MIME type
	PictureType byte
	Description string
	Data        []byte
}

func (f *PictureFrame) FrameID() string { return f.ID }
func (f *PictureFrame) Key() string     { return f.ID + "\x00" + f.Description }

var v22PictureFormats = map[string]string{"PNG": "image/png", "JPG": "image/jpeg"}

func mimeToV22Format(mime string) string {
	switch mime {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	default:
		return "JPG"
	}
}

func decodeAPICFrame(id string, b []byte) (*PictureFrame, error) {
	if len(b) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "APIC")
	}
	enc := textenc.Encoding(b[0])
	rest := b[1:]

	var mime string
	if id == "PIC" {
		if len(rest) < 3 {
			return nil, errors.Wrap(ErrInsufficientData, "PIC image format")
		}
		code := string(rest[0:3])
		mime = v22PictureFormats[code]
		rest = rest[3:]
	} else {
		mimeBytes, tail, found := textenc.SplitNullTerminated(textenc.Latin1, rest)
		if !found {
			return nil, errors.Wrap(ErrInvalidFieldValue, "APIC missing MIME terminator")
		}
		mime = string(mimeBytes)
		rest = tail
	}

	if len(rest) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "APIC picture type")
	}
	picType := rest[0]
	rest = rest[1:]

	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "APIC encoding byte")
	}
	descBytes, data, _ := textenc.SplitNullTerminated(enc, rest)
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	return &PictureFrame{ID: id, MIMEType: mime, PictureType: picType, Description: desc, Data: cloneBytes(data)}, nil
}

func (f *PictureFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	if f.ID == "PIC" {
		out = append(out, []byte(mimeToV22Format(f.MIMEType))...)
	} else {
		out = append(out, []byte(f.MIMEType)...)
		out = append(out, 0)
	}
	out = append(out, f.PictureType)
	out = append(out, desc...)
	out = append(out, delim...)
	out = append(out, f.Data...)
	return out, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// --- General encapsulated object (GEOB / GEO) ---

type GeneralObjectFrame struct {
	ID          string
	MIMEType    string
	Filename    string
	Description string
	Data        []byte
}

func (f *GeneralObjectFrame) FrameID() string { return f.ID }
func (f *GeneralObjectFrame) Key() string     { return f.ID + "\x00" + f.Description }

func decodeGEOBFrame(id string, b []byte) (*GeneralObjectFrame, error) {
	if len(b) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "GEOB")
	}
	enc := textenc.Encoding(b[0])
	mimeBytes, rest, found := textenc.SplitNullTerminated(textenc.Latin1, b[1:])
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "GEOB missing MIME terminator")
	}
	if _, err := textenc.Delimiter(enc); err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "GEOB encoding byte")
	}
	fileBytes, rest, found := textenc.SplitNullTerminated(enc, rest)
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "GEOB missing filename terminator")
	}
	descBytes, data, found := textenc.SplitNullTerminated(enc, rest)
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "GEOB missing description terminator")
	}
	filename, err := textenc.Decode(enc, fileBytes)
	if err != nil {
		return nil, err
	}
	desc, err := textenc.Decode(enc, descBytes)
	if err != nil {
		return nil, err
	}
	return &GeneralObjectFrame{ID: id, MIMEType: string(mimeBytes), Filename: filename, Description: desc, Data: cloneBytes(data)}, nil
}

func (f *GeneralObjectFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	delim, err := textenc.Delimiter(enc)
	if err != nil {
		return nil, err
	}
	filename, err := textenc.Encode(enc, f.Filename)
	if err != nil {
		return nil, err
	}
	desc, err := textenc.Encode(enc, f.Description)
	if err != nil {
		return nil, err
	}
	out := []byte{byte(enc)}
	out = append(out, []byte(f.MIMEType)...)
	out = append(out, 0)
	out = append(out, filename...)
	out = append(out, delim...)
	out = append(out, desc...)
	out = append(out, delim...)
	out = append(out, f.Data...)
	return out, nil
}

// --- Private (PRIV) ---

type PrivateFrame struct {
	Owner string
	Data  []byte
}

func (f *PrivateFrame) FrameID() string { return "PRIV" }
func (f *PrivateFrame) Key() string     { return "PRIV\x00" + f.Owner }

func decodePRIVFrame(b []byte) (*PrivateFrame, error) {
	owner, data, found := textenc.SplitNullTerminated(textenc.Latin1, b)
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "PRIV missing owner terminator")
	}
	return &PrivateFrame{Owner: string(owner), Data: cloneBytes(data)}, nil
}

func (f *PrivateFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	out := append([]byte(f.Owner), 0)
	out = append(out, f.Data...)
	return out, nil
}

// --- Popularimeter (POPM) ---

type PopularimeterFrame struct {
	Email     string
	Rating    byte
	PlayCount uint64
	HasCount  bool
}

func (f *PopularimeterFrame) FrameID() string { return "POPM" }
func (f *PopularimeterFrame) Key() string     { return "POPM\x00" + f.Email }

func decodePOPMFrame(b []byte) (*PopularimeterFrame, error) {
	email, rest, found := textenc.SplitNullTerminated(textenc.Latin1, b)
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "POPM missing email terminator")
	}
	if len(rest) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "POPM rating")
	}
	f2 := &PopularimeterFrame{Email: string(email), Rating: rest[0]}
	if len(rest) > 1 {
		var n uint64
		for _, c := range rest[1:] {
			n = n<<8 | uint64(c)
		}
		f2.PlayCount = n
		f2.HasCount = true
	}
	return f2, nil
}

func (f *PopularimeterFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	out := append([]byte(f.Email), 0, f.Rating)
	if f.HasCount {
		n := f.PlayCount
		var buf []byte
		for n > 0 || len(buf) == 0 {
			buf = append([]byte{byte(n)}, buf...)
			n >>= 8
		}
		out = append(out, buf...)
	}
	return out, nil
}

// --- Unique file identifier (UFID / UFI) ---

type UniqueFileIDFrame struct {
	ID         string
	Owner      string
	Identifier []byte
}

func (f *UniqueFileIDFrame) FrameID() string { return f.ID }
func (f *UniqueFileIDFrame) Key() string     { return f.ID + "\x00" + f.Owner }

func decodeUFIDFrame(id string, b []byte) (*UniqueFileIDFrame, error) {
	owner, data, found := textenc.SplitNullTerminated(textenc.Latin1, b)
	if !found {
		return nil, errors.Wrap(ErrInvalidFieldValue, "UFID missing owner terminator")
	}
	return &UniqueFileIDFrame{ID: id, Owner: string(owner), Identifier: cloneBytes(data)}, nil
}

func (f *UniqueFileIDFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	out := append([]byte(f.Owner), 0)
	out = append(out, f.Identifier...)
	return out, nil
}

// --- Chapter (CHAP) ---

type ChapterFrame struct {
	ElementID    string
	StartTimeMs  uint32
	EndTimeMs    uint32
	StartOffset  uint32 // 0xFFFFFFFF = unused
	EndOffset    uint32
	SubFrames    []Frame
}

func (f *ChapterFrame) FrameID() string { return "CHAP" }
func (f *ChapterFrame) Key() string     { return "CHAP\x00" + f.ElementID }

func (f *ChapterFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	out := append([]byte(f.ElementID), 0)
	var tmp [16]byte
	binary.BigEndian.PutUint32(tmp[0:4], f.StartTimeMs)
	binary.BigEndian.PutUint32(tmp[4:8], f.EndTimeMs)
	binary.BigEndian.PutUint32(tmp[8:12], f.StartOffset)
	binary.BigEndian.PutUint32(tmp[12:16], f.EndOffset)
	out = append(out, tmp[:]...)
	for _, sub := range f.SubFrames {
		b, err := encodeSubFrame(sub, enc, version)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// --- Table of contents (CTOC) ---

type TOCFrame struct {
	ElementID      string
	TopLevel       bool
	Ordered        bool
	ChildElementIDs []string
	SubFrames      []Frame
}

func (f *TOCFrame) FrameID() string { return "CTOC" }
func (f *TOCFrame) Key() string     { return "CTOC\x00" + f.ElementID }

func (f *TOCFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	out := append([]byte(f.ElementID), 0)
	var flags byte
	if f.TopLevel {
		flags |= 0x01
	}
	if f.Ordered {
		flags |= 0x02
	}
	out = append(out, flags, byte(len(f.ChildElementIDs)))
	for _, c := range f.ChildElementIDs {
		out = append(out, []byte(c)...)
		out = append(out, 0)
	}
	for _, sub := range f.SubFrames {
		b, err := encodeSubFrame(sub, enc, version)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// --- Opaque (unknown ID, or a frame using an unsupported transform) ---

type OpaqueFrame struct {
	ID      string
	Flags   FrameFlags
	Payload []byte
}

func (f *OpaqueFrame) FrameID() string { return f.ID }
func (f *OpaqueFrame) Key() string     { return f.ID + "\x00" + f.MIMEUnique() }

// MIMEUnique returns the frame ID, so opaque frames that share an ID also
// share one Key and are not told apart by Get/Set/Remove; it is an
// implementation detail and carries no external meaning.
func (f *OpaqueFrame) MIMEUnique() string {
	return f.ID
}

func (f *OpaqueFrame) encode(enc textenc.Encoding, version Version) ([]byte, error) {
	return f.Payload, nil
}
