// Package vorbis implements the Xiph Vorbis Comment codec shared by Ogg
// Vorbis, Ogg Opus and FLAC streams: a vendor string followed by a
// length-prefixed field vector, plus the METADATA_BLOCK_PICTURE
// convention (spec.md §4.G).
package vorbis

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

var (
	ErrInsufficientData = errors.New("vorbis: insufficient data")
	ErrInvalidFieldValue = errors.New("vorbis: invalid field value")
	ErrOverflow          = errors.New("vorbis: overflow")
)

// Comment is a single "NAME=value" field. Name is preserved exactly as
// written for Render, but lookups are case-insensitive per spec.md §4.G.
type Comment struct {
	Name  string
	Value string
}

// Tag is a fully parsed (or freshly constructed) Vorbis comment block.
type Tag struct {
	Vendor   string
	Comments []Comment
}

// Parse decodes a Vorbis comment block: 4-byte LE vendor length, vendor
// string, 4-byte LE comment count, then that many length-prefixed
// "NAME=value" fields.
func Parse(b binutil.Buffer) (*Tag, error) {
	vendorLen, err := b.Uint32LE(0)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "vendor length")
	}
	off := 4
	if b.Len() < off+int(vendorLen) {
		return nil, errors.Wrap(ErrInsufficientData, "vendor string")
	}
	vendor := string(b.Bytes()[off : off+int(vendorLen)])
	off += int(vendorLen)

	count, err := b.Uint32LE(off)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "comment count")
	}
	off += 4

	t := &Tag{Vendor: vendor}
	for i := uint32(0); i < count; i++ {
		fieldLen, err := b.Uint32LE(off)
		if err != nil {
			return nil, errors.Wrapf(ErrInsufficientData, "field %d length", i)
		}
		off += 4
		if b.Len() < off+int(fieldLen) {
			return nil, errors.Wrapf(ErrInsufficientData, "field %d body", i)
		}
		field := string(b.Bytes()[off : off+int(fieldLen)])
		off += int(fieldLen)

		eq := strings.IndexByte(field, '=')
		if eq < 0 {
			return nil, errors.Wrapf(ErrInvalidFieldValue, "field %q missing '='", field)
		}
		t.Comments = append(t.Comments, Comment{Name: field[:eq], Value: field[eq+1:]})
	}
	return t, nil
}

// Render serializes the tag back to its wire form.
func (t *Tag) Render() ([]byte, error) {
	b := binutil.NewBuilder().
		WriteUint32LE(uint32(len(t.Vendor))).
		WriteString(t.Vendor).
		WriteUint32LE(uint32(len(t.Comments)))
	for _, c := range t.Comments {
		field := c.Name + "=" + c.Value
		if len(field) > 1<<31-1 {
			return nil, errors.Wrap(ErrOverflow, "comment field too large")
		}
		b = b.WriteUint32LE(uint32(len(field))).WriteString(field)
	}
	return b.Bytes().Bytes(), nil
}

// Get returns the first comment matching name (case-insensitive), and
// whether one was found.
func (t *Tag) Get(name string) (string, bool) {
	for _, c := range t.Comments {
		if strings.EqualFold(c.Name, name) {
			return c.Value, true
		}
	}
	return "", false
}

// GetAll returns every comment value matching name (case-insensitive),
// in original order — Vorbis Comment explicitly allows repeated fields
// (spec.md §4.G), e.g. multiple ARTIST entries.
func (t *Tag) GetAll(name string) []string {
	var out []string
	for _, c := range t.Comments {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c.Value)
		}
	}
	return out
}

// Set replaces all existing comments matching name with a single new
// one, uppercasing name per the convention used by most Xiph-comment
// writers. To store multiple values under one name, use Add repeatedly
// after Remove.
func (t *Tag) Set(name, value string) {
	t.Remove(name)
	t.Add(name, value)
}

// Add appends a new comment without removing existing ones with the
// same name, for fields that legitimately repeat (ARTIST, GENRE, ...).
func (t *Tag) Add(name, value string) {
	t.Comments = append(t.Comments, Comment{Name: strings.ToUpper(name), Value: value})
}

// Remove deletes every comment matching name (case-insensitive).
func (t *Tag) Remove(name string) {
	out := t.Comments[:0]
	for _, c := range t.Comments {
		if !strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	t.Comments = out
}

// Picture is a decoded METADATA_BLOCK_PICTURE payload, sharing layout
// with the FLAC PICTURE metadata block (spec.md §4.H).
type Picture struct {
	Type        uint32
	MIMEType    string
	Description string
	Width       uint32
	Height      uint32
	Depth       uint32
	Colors      uint32
	Data        []byte
}

// DecodePictureBlock parses the raw (already base64-decoded) bytes of a
// METADATA_BLOCK_PICTURE value.
func DecodePictureBlock(raw []byte) (*Picture, error) {
	b := binutil.New(raw)
	picType, err := b.Uint32BE(0)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "picture type")
	}
	off := 4
	mimeLen, err := b.Uint32BE(off)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "mime length")
	}
	off += 4
	if b.Len() < off+int(mimeLen) {
		return nil, errors.Wrap(ErrInsufficientData, "mime string")
	}
	mime := string(b.Bytes()[off : off+int(mimeLen)])
	off += int(mimeLen)

	descLen, err := b.Uint32BE(off)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "description length")
	}
	off += 4
	if b.Len() < off+int(descLen) {
		return nil, errors.Wrap(ErrInsufficientData, "description string")
	}
	desc := string(b.Bytes()[off : off+int(descLen)])
	off += int(descLen)

	fields := make([]uint32, 4)
	for i := range fields {
		v, err := b.Uint32BE(off)
		if err != nil {
			return nil, errors.Wrap(ErrInsufficientData, "picture dimension field")
		}
		fields[i] = v
		off += 4
	}
	dataLen, err := b.Uint32BE(off)
	if err != nil {
		return nil, errors.Wrap(ErrInsufficientData, "picture data length")
	}
	off += 4
	if b.Len() < off+int(dataLen) {
		return nil, errors.Wrap(ErrInsufficientData, "picture data")
	}
	data := make([]byte, dataLen)
	copy(data, b.Bytes()[off:off+int(dataLen)])

	return &Picture{
		Type:        picType,
		MIMEType:    mime,
		Description: desc,
		Width:       fields[0],
		Height:      fields[1],
		Depth:       fields[2],
		Colors:      fields[3],
		Data:        data,
	}, nil
}

// Render serializes the picture back to its raw (pre-base64) wire form.
func (p *Picture) Render() []byte {
	b := binutil.NewBuilder().
		WriteUint32BE(p.Type).
		WriteUint32BE(uint32(len(p.MIMEType))).
		WriteString(p.MIMEType).
		WriteUint32BE(uint32(len(p.Description))).
		WriteString(p.Description).
		WriteUint32BE(p.Width).
		WriteUint32BE(p.Height).
		WriteUint32BE(p.Depth).
		WriteUint32BE(p.Colors).
		WriteUint32BE(uint32(len(p.Data))).
		WriteBytes(p.Data)
	return b.Bytes().Bytes()
}

// GetPictures decodes every METADATA_BLOCK_PICTURE comment into a
// Picture, skipping (not failing on) entries that fail to base64-decode
// or parse, consistent with the codec's lenient-skip posture elsewhere.
func (t *Tag) GetPictures() []Picture {
	var out []Picture
	for _, raw := range t.GetAll("METADATA_BLOCK_PICTURE") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			continue
		}
		pic, err := DecodePictureBlock(decoded)
		if err != nil {
			continue
		}
		out = append(out, *pic)
	}
	return out
}

// AddPicture appends a new METADATA_BLOCK_PICTURE comment encoding pic.
func (t *Tag) AddPicture(pic Picture) {
	encoded := base64.StdEncoding.EncodeToString(pic.Render())
	t.Add("METADATA_BLOCK_PICTURE", encoded)
}

// knownKeys maps the façade's canonical property names to the Vorbis
// field names that carry them, per spec.md §4.G and §4.D.
var knownKeys = map[string]string{
	"title":       "TITLE",
	"album":       "ALBUM",
	"artist":      "ARTIST",
	"albumArtist": "ALBUMARTIST",
	"composer":    "COMPOSER",
	"genre":       "GENRE",
	"year":        "DATE",
	"comment":     "COMMENT",
	"track":       "TRACKNUMBER",
	"trackTotal":  "TRACKTOTAL",
	"disc":        "DISCNUMBER",
	"discTotal":   "DISCTOTAL",
	"lyrics":      "LYRICS",
	"copyright":   "COPYRIGHT",
	"mbTrackID":         "MUSICBRAINZ_TRACKID",
	"mbAlbumID":         "MUSICBRAINZ_ALBUMID",
	"mbArtistID":        "MUSICBRAINZ_ARTISTID",
	"mbReleaseGroupID":  "MUSICBRAINZ_RELEASEGROUPID",
	"replayGainTrackGain": "REPLAYGAIN_TRACK_GAIN",
	"replayGainTrackPeak": "REPLAYGAIN_TRACK_PEAK",
	"replayGainAlbumGain": "REPLAYGAIN_ALBUM_GAIN",
	"replayGainAlbumPeak": "REPLAYGAIN_ALBUM_PEAK",
}

// FieldName returns the Vorbis comment field name for a façade property
// key, or "" if unknown.
func FieldName(property string) string {
	return knownKeys[property]
}
