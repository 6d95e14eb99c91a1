// Package tag provides the cross-format façade: a single abstract
// property surface (spec.md §4.D) backed by zero or more of the
// id3v2/ape/vorbis/mp4 codecs, composed in priority order when more
// than one tag is present in a file.
package tag

import (
	"strconv"
	"strings"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/ape"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/id3v2"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/mp4"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/vorbis"
)

// Picture is the façade's backend-independent cover-art representation.
type Picture struct {
	MIMEType    string
	Description string
	PictureType byte
	Data        []byte
}

// Clone returns a deep copy of p so callers can hold onto a Picture
// independent of the tag it came from.
func (p Picture) Clone() Picture {
	data := make([]byte, len(p.Data))
	copy(data, p.Data)
	return Picture{MIMEType: p.MIMEType, Description: p.Description, PictureType: p.PictureType, Data: data}
}

// MusicBrainzIDs groups the MusicBrainz identifier set (spec.md §4.D).
type MusicBrainzIDs struct {
	TrackID        string
	RecordingID    string
	ReleaseID      string
	ReleaseGroupID string
	ArtistID       string
	AlbumArtistID  string
	WorkID         string
	DiscID         string
	ReleaseStatus  string
	ReleaseType    string
	ReleaseCountry string
}

// ReplayGain groups the four ReplayGain fields (spec.md §4.D); values
// are the original textual dB/ratio representation, unparsed, since
// backends disagree on formatting precision.
type ReplayGain struct {
	TrackGain string
	TrackPeak string
	AlbumGain string
	AlbumPeak string
}

// Backend is implemented by each format-specific tag so the façade can
// read/write it generically.
type Backend interface {
	Get(property string) (string, bool)
	GetAll(property string) []string
	Set(property, value string)
	Pictures() []Picture
	AddPicture(Picture)
	Priority() int // higher wins when composing multiple backends
}

// Tag composes one or more backend tags into the unified façade.
// Reads consult backends in descending Priority order and return the
// first match; writes apply to every backend present so that all tags
// in a file stay mutually consistent, matching the common practice of
// writing ID3v2 and APE side by side in the same file.
type Tag struct {
	backends []Backend
	// HasDuplicateTag surfaces the id3v2 package's duplicate-header
	// diagnostic at the façade layer, since it's otherwise invisible
	// once backends are composed.
	HasDuplicateTag bool
}

// New composes backends in priority order (ID3v2 > APE > Xiph > MP4
// ilst, per spec.md's property-precedence guidance for files that
// happen to carry more than one tag type).
func New(backends ...Backend) *Tag {
	t := &Tag{backends: backends}
	for _, b := range backends {
		if id3, ok := b.(*id3v2Backend); ok && id3.tag.HasDuplicateTag {
			t.HasDuplicateTag = true
		}
	}
	return t
}

func (t *Tag) get(property string) (string, bool) {
	best := -1
	var value string
	found := false
	for _, b := range t.backends {
		if v, ok := b.Get(property); ok && b.Priority() > best {
			best = b.Priority()
			value = v
			found = true
		}
	}
	return value, found
}

func (t *Tag) set(property, value string) {
	for _, b := range t.backends {
		b.Set(property, value)
	}
}

func (t *Tag) Title() string        { v, _ := t.get("title"); return v }
func (t *Tag) SetTitle(v string)    { t.set("title", v) }
func (t *Tag) Album() string         { v, _ := t.get("album"); return v }
func (t *Tag) SetAlbum(v string)    { t.set("album", v) }
func (t *Tag) Artist() string        { v, _ := t.get("artist"); return v }
func (t *Tag) SetArtist(v string)   { t.set("artist", v) }
func (t *Tag) AlbumArtist() string   { v, _ := t.get("albumArtist"); return v }
func (t *Tag) SetAlbumArtist(v string) { t.set("albumArtist", v) }
func (t *Tag) Composer() string      { v, _ := t.get("composer"); return v }
func (t *Tag) SetComposer(v string) { t.set("composer", v) }
func (t *Tag) Conductor() string     { v, _ := t.get("conductor"); return v }
func (t *Tag) Genre() string         { v, _ := t.get("genre"); return v }
func (t *Tag) SetGenre(v string)    { t.set("genre", v) }
func (t *Tag) Year() string          { v, _ := t.get("year"); return v }
func (t *Tag) SetYear(v string)     { t.set("year", v) }
func (t *Tag) Comment() string       { v, _ := t.get("comment"); return v }
func (t *Tag) SetComment(v string)  { t.set("comment", v) }
func (t *Tag) Lyrics() string        { v, _ := t.get("lyrics"); return v }
func (t *Tag) SetLyrics(v string)   { t.set("lyrics", v) }
func (t *Tag) BPM() string           { v, _ := t.get("bpm"); return v }
func (t *Tag) Key() string           { v, _ := t.get("key"); return v }
func (t *Tag) Mood() string          { v, _ := t.get("mood"); return v }
func (t *Tag) Grouping() string      { v, _ := t.get("grouping"); return v }
func (t *Tag) Subtitle() string      { v, _ := t.get("subtitle"); return v }
func (t *Tag) ISRC() string          { v, _ := t.get("isrc"); return v }
func (t *Tag) Publisher() string     { v, _ := t.get("publisher"); return v }
func (t *Tag) Copyright() string     { v, _ := t.get("copyright"); return v }
func (t *Tag) EncodedBy() string     { v, _ := t.get("encodedBy"); return v }
func (t *Tag) EncoderSettings() string { v, _ := t.get("encoderSettings"); return v }
func (t *Tag) Language() string      { v, _ := t.get("language"); return v }
func (t *Tag) Barcode() string       { v, _ := t.get("barcode"); return v }
func (t *Tag) CatalogNumber() string { v, _ := t.get("catalogNumber"); return v }
func (t *Tag) AcoustIDID() string    { v, _ := t.get("acoustidID"); return v }
func (t *Tag) AcoustIDFingerprint() string { v, _ := t.get("acoustidFingerprint"); return v }
func (t *Tag) PodcastFeedURL() string { v, _ := t.get("podcastFeedURL"); return v }

// Compilation reports the compilation/"part of a compilation" flag.
func (t *Tag) Compilation() bool {
	v, _ := t.get("compilation")
	return v == "1" || strings.EqualFold(v, "true")
}

// SetCompilation sets the compilation flag.
func (t *Tag) SetCompilation(v bool) {
	if v {
		t.set("compilation", "1")
	} else {
		t.set("compilation", "0")
	}
}

// Track returns the track number and total (0 if absent/unparseable).
func (t *Tag) Track() (n, total int) {
	return parseIntPair(t.get("track"))
}

// Disc returns the disc number and total.
func (t *Tag) Disc() (n, total int) {
	return parseIntPair(t.get("disc"))
}

// parseIntPair splits a "n", "n/total" or "n/0" property value (the shape
// every backend stores track/disc numbers in, e.g. mp4Backend.trackOrDisc's
// "n/total" formatting) into its number and total.
func parseIntPair(v string, ok bool) (n, total int) {
	if !ok {
		return 0, 0
	}
	if slash := strings.IndexByte(v, '/'); slash >= 0 {
		total, _ = strconv.Atoi(strings.TrimSpace(v[slash+1:]))
		v = v[:slash]
	}
	n, _ = strconv.Atoi(strings.TrimSpace(v))
	return n, total
}

// SetTrack sets the track number and (if total > 0) its total.
func (t *Tag) SetTrack(n, total int) {
	if total > 0 {
		t.set("track", strconv.Itoa(n)+"/"+strconv.Itoa(total))
	} else {
		t.set("track", strconv.Itoa(n))
	}
}

// SetDisc sets the disc number and (if total > 0) its total.
func (t *Tag) SetDisc(n, total int) {
	if total > 0 {
		t.set("disc", strconv.Itoa(n)+"/"+strconv.Itoa(total))
	} else {
		t.set("disc", strconv.Itoa(n))
	}
}

// ReplayGainValues returns the ReplayGain quad.
func (t *Tag) ReplayGainValues() ReplayGain {
	trackGain, _ := t.get("replayGainTrackGain")
	trackPeak, _ := t.get("replayGainTrackPeak")
	albumGain, _ := t.get("replayGainAlbumGain")
	albumPeak, _ := t.get("replayGainAlbumPeak")
	return ReplayGain{TrackGain: trackGain, TrackPeak: trackPeak, AlbumGain: albumGain, AlbumPeak: albumPeak}
}

// SetReplayGainValues writes the non-empty fields of rg to every backend.
func (t *Tag) SetReplayGainValues(rg ReplayGain) {
	if rg.TrackGain != "" {
		t.set("replayGainTrackGain", rg.TrackGain)
	}
	if rg.TrackPeak != "" {
		t.set("replayGainTrackPeak", rg.TrackPeak)
	}
	if rg.AlbumGain != "" {
		t.set("replayGainAlbumGain", rg.AlbumGain)
	}
	if rg.AlbumPeak != "" {
		t.set("replayGainAlbumPeak", rg.AlbumPeak)
	}
}

// MusicBrainz returns every MusicBrainz identifier field the façade
// understands (the supplemented convenience reader generalized across
// backends, rather than the teacher's single-format helper).
func (t *Tag) MusicBrainz() MusicBrainzIDs {
	get := func(k string) string { v, _ := t.get(k); return v }
	return MusicBrainzIDs{
		TrackID:        get("mbTrackID"),
		RecordingID:    get("mbRecordingID"),
		ReleaseID:      get("mbAlbumID"),
		ReleaseGroupID: get("mbReleaseGroupID"),
		ArtistID:       get("mbArtistID"),
		AlbumArtistID:  get("mbAlbumArtistID"),
		WorkID:         get("mbWorkID"),
		DiscID:         get("mbDiscID"),
		ReleaseStatus:  get("mbReleaseStatus"),
		ReleaseType:    get("mbReleaseType"),
		ReleaseCountry: get("mbReleaseCountry"),
	}
}

// Pictures returns every picture from every backend, in the order the
// backends were passed to New (Priority does not reorder them).
func (t *Tag) Pictures() []Picture {
	var out []Picture
	for _, b := range t.backends {
		out = append(out, b.Pictures()...)
	}
	return out
}

// AddPicture appends pic to every backend present.
func (t *Tag) AddPicture(pic Picture) {
	for _, b := range t.backends {
		b.AddPicture(pic)
	}
}

// --- id3v2 backend -------------------------------------------------

type id3v2Backend struct {
	tag      *id3v2.Tag
	priority int
}

// NewID3v2Backend wraps an already-parsed id3v2.Tag.
func NewID3v2Backend(t *id3v2.Tag, priority int) Backend {
	return &id3v2Backend{tag: t, priority: priority}
}

func (b *id3v2Backend) Priority() int { return b.priority }

var id3v2FrameIDs = map[string]string{
	"title": "TIT2", "album": "TALB", "artist": "TPE1", "albumArtist": "TPE2",
	"composer": "TCOM", "conductor": "TPE3", "genre": "TCON", "year": "TYER",
	"track": "TRCK", "disc": "TPOS", "bpm": "TBPM", "key": "TKEY",
	"grouping": "TIT1", "subtitle": "TIT3", "isrc": "TSRC", "publisher": "TPUB",
	"copyright": "TCOP", "encodedBy": "TENC", "encoderSettings": "TSSE",
	"language": "TLAN", "compilation": "TCMP",
	"replayGainTrackGain": "TXXX:replaygain_track_gain",
	"replayGainTrackPeak": "TXXX:replaygain_track_peak",
	"replayGainAlbumGain": "TXXX:replaygain_album_gain",
	"replayGainAlbumPeak": "TXXX:replaygain_album_peak",
	"mbTrackID":         "UFID:http://musicbrainz.org",
	"mbAlbumID":         "TXXX:MusicBrainz Album Id",
	"mbArtistID":        "TXXX:MusicBrainz Artist Id",
	"mbReleaseGroupID":  "TXXX:MusicBrainz Release Group Id",
	"acoustidID":          "TXXX:Acoustid Id",
	"acoustidFingerprint": "TXXX:Acoustid Fingerprint",
}

func (b *id3v2Backend) Get(property string) (string, bool) {
	id, ok := id3v2FrameIDs[property]
	if !ok {
		if property == "comment" {
			return b.getComment()
		}
		if property == "lyrics" {
			return b.getLyrics()
		}
		return "", false
	}
	return b.getByID(id)
}

func (b *id3v2Backend) getByID(id string) (string, bool) {
	if strings.HasPrefix(id, "TXXX:") {
		desc := id[len("TXXX:"):]
		for _, f := range b.tag.Frames {
			if ut, ok := f.(*id3v2.UserTextFrame); ok && strings.EqualFold(ut.Description, desc) {
				return ut.Value, true
			}
		}
		return "", false
	}
	if strings.HasPrefix(id, "UFID:") {
		owner := id[len("UFID:"):]
		for _, f := range b.tag.Frames {
			if u, ok := f.(*id3v2.UniqueFileIDFrame); ok && u.Owner == owner {
				return string(u.Identifier), true
			}
		}
		return "", false
	}
	f := b.tag.Get(id)
	if f == nil {
		return "", false
	}
	if tf, ok := f.(*id3v2.TextFrame); ok {
		if len(tf.Values) == 0 {
			return "", false
		}
		return tf.Values[0], true
	}
	return "", false
}

func (b *id3v2Backend) getComment() (string, bool) {
	for _, f := range b.tag.Frames {
		if c, ok := f.(*id3v2.CommentFrame); ok {
			return c.Text, true
		}
	}
	return "", false
}

func (b *id3v2Backend) getLyrics() (string, bool) {
	for _, f := range b.tag.Frames {
		if c, ok := f.(*id3v2.CommentFrame); ok && c.FrameID() == "USLT" {
			return c.Text, true
		}
	}
	return "", false
}

func (b *id3v2Backend) GetAll(property string) []string {
	if v, ok := b.Get(property); ok {
		return []string{v}
	}
	return nil
}

func (b *id3v2Backend) Set(property, value string) {
	id, ok := id3v2FrameIDs[property]
	if !ok {
		return
	}
	if strings.HasPrefix(id, "TXXX:") {
		desc := id[len("TXXX:"):]
		b.tag.Set(&id3v2.UserTextFrame{ID: "TXXX", Description: desc, Value: value})
		return
	}
	if strings.HasPrefix(id, "UFID:") {
		owner := id[len("UFID:"):]
		b.tag.Set(&id3v2.UniqueFileIDFrame{ID: "UFID", Owner: owner, Identifier: []byte(value)})
		return
	}
	b.tag.Set(&id3v2.TextFrame{ID: id, Values: []string{value}})
}

func (b *id3v2Backend) Pictures() []Picture {
	var out []Picture
	for _, f := range b.tag.Frames {
		if p, ok := f.(*id3v2.PictureFrame); ok {
			out = append(out, Picture{MIMEType: p.MIMEType, Description: p.Description, PictureType: p.PictureType, Data: p.Data})
		}
	}
	return out
}

func (b *id3v2Backend) AddPicture(pic Picture) {
	b.tag.Frames = append(b.tag.Frames, &id3v2.PictureFrame{
		ID: "APIC", MIMEType: pic.MIMEType, Description: pic.Description, PictureType: pic.PictureType, Data: pic.Data,
	})
}

// --- APE backend -----------------------------------------------------

type apeBackend struct {
	tag      *ape.Tag
	priority int
}

// NewAPEBackend wraps an already-parsed ape.Tag.
func NewAPEBackend(t *ape.Tag, priority int) Backend {
	return &apeBackend{tag: t, priority: priority}
}

func (b *apeBackend) Priority() int { return b.priority }

var apeItemKeys = map[string]string{
	"title": "Title", "album": "Album", "artist": "Artist", "albumArtist": "Album Artist",
	"composer": "Composer", "genre": "Genre", "year": "Year", "comment": "Comment",
	"track": "Track", "disc": "Disc", "lyrics": "Lyrics", "copyright": "Copyright",
	"isrc": "ISRC", "publisher": "Label", "bpm": "BPM",
	"replayGainTrackGain": "REPLAYGAIN_TRACK_GAIN", "replayGainTrackPeak": "REPLAYGAIN_TRACK_PEAK",
	"replayGainAlbumGain": "REPLAYGAIN_ALBUM_GAIN", "replayGainAlbumPeak": "REPLAYGAIN_ALBUM_PEAK",
	"mbTrackID": "MUSICBRAINZ_TRACKID", "mbAlbumID": "MUSICBRAINZ_ALBUMID",
}

func (b *apeBackend) Get(property string) (string, bool) {
	key, ok := apeItemKeys[property]
	if !ok {
		return "", false
	}
	for _, item := range b.tag.Items {
		if strings.EqualFold(item.Key, key) {
			return item.Text(), true
		}
	}
	return "", false
}

func (b *apeBackend) GetAll(property string) []string {
	key, ok := apeItemKeys[property]
	if !ok {
		return nil
	}
	var out []string
	for _, item := range b.tag.Items {
		if strings.EqualFold(item.Key, key) {
			out = append(out, item.Text())
		}
	}
	return out
}

func (b *apeBackend) Set(property, value string) {
	key, ok := apeItemKeys[property]
	if !ok {
		return
	}
	for i, item := range b.tag.Items {
		if strings.EqualFold(item.Key, key) {
			b.tag.Items[i].Value = []byte(value)
			return
		}
	}
	b.tag.Items = append(b.tag.Items, ape.Item{Key: key, Type: ape.ItemText, Value: []byte(value)})
}

func (b *apeBackend) Pictures() []Picture {
	var out []Picture
	for _, item := range b.tag.Items {
		if item.Type != ape.ItemBinary || !strings.HasPrefix(strings.ToLower(item.Key), "cover art") {
			continue
		}
		_, data := item.BinaryParts()
		out = append(out, Picture{PictureType: ape.PictureKind(item.Key), Data: data})
	}
	return out
}

func (b *apeBackend) AddPicture(pic Picture) {
	key := ape.PictureItemKey(pic.PictureType)
	value := append([]byte(pic.Description+"\x00"), pic.Data...)
	b.tag.Items = append(b.tag.Items, ape.Item{Key: key, Type: ape.ItemBinary, Value: value})
}

// --- Vorbis backend ----------------------------------------------------

type vorbisBackend struct {
	tag      *vorbis.Tag
	priority int
}

// NewVorbisBackend wraps an already-parsed vorbis.Tag.
func NewVorbisBackend(t *vorbis.Tag, priority int) Backend {
	return &vorbisBackend{tag: t, priority: priority}
}

func (b *vorbisBackend) Priority() int { return b.priority }

func (b *vorbisBackend) Get(property string) (string, bool) {
	field := vorbis.FieldName(property)
	if field == "" {
		return "", false
	}
	return b.tag.Get(field)
}

func (b *vorbisBackend) GetAll(property string) []string {
	field := vorbis.FieldName(property)
	if field == "" {
		return nil
	}
	return b.tag.GetAll(field)
}

func (b *vorbisBackend) Set(property, value string) {
	field := vorbis.FieldName(property)
	if field == "" {
		return
	}
	b.tag.Set(field, value)
}

func (b *vorbisBackend) Pictures() []Picture {
	var out []Picture
	for _, p := range b.tag.GetPictures() {
		out = append(out, Picture{MIMEType: p.MIMEType, Description: p.Description, PictureType: byte(p.Type), Data: p.Data})
	}
	return out
}

func (b *vorbisBackend) AddPicture(pic Picture) {
	b.tag.AddPicture(vorbis.Picture{
		Type: uint32(pic.PictureType), MIMEType: pic.MIMEType, Description: pic.Description, Data: pic.Data,
	})
}

// --- MP4 backend -------------------------------------------------------

type mp4Backend struct {
	ilst     []mp4.Box
	priority int
}

// NewMP4Backend wraps an already-located ilst item list. Callers must
// pull the (possibly mutated) ilst back out via ILST after writes.
func NewMP4Backend(ilst []mp4.Box, priority int) Backend {
	return &mp4Backend{ilst: ilst, priority: priority}
}

// ILST returns the backend's current (possibly mutated) item list, for
// splicing back into the box tree with mp4.SetILST.
func (b *mp4Backend) ILST() []mp4.Box { return b.ilst }

func (b *mp4Backend) Priority() int { return b.priority }

var mp4ItemKeys = map[string]string{
	"title": mp4.KeyTitle, "album": mp4.KeyAlbum, "artist": mp4.KeyArtist,
	"albumArtist": mp4.KeyAlbumArtist, "composer": mp4.KeyComposer, "genre": mp4.KeyGenre,
	"year": mp4.KeyYear, "comment": mp4.KeyComment, "lyrics": mp4.KeyLyrics,
}

func (b *mp4Backend) Get(property string) (string, bool) {
	if property == "compilation" {
		v, ok := mp4.GetItem(b.ilst, mp4.KeyCompilation)
		if !ok || len(v.Data) == 0 {
			return "", false
		}
		if v.Data[0] != 0 {
			return "1", true
		}
		return "0", true
	}
	if property == "track" {
		return b.trackOrDisc(mp4.KeyTrack)
	}
	if property == "disc" {
		return b.trackOrDisc(mp4.KeyDisc)
	}
	key, ok := mp4ItemKeys[property]
	if !ok {
		if freeform := freeformKeyFor(property); freeform != nil {
			for _, ff := range mp4.GetFreeforms(b.ilst) {
				if ff.Mean == freeform.mean && ff.Name == freeform.name {
					return string(ff.Data), true
				}
			}
		}
		return "", false
	}
	v, ok := mp4.GetItem(b.ilst, key)
	if !ok {
		return "", false
	}
	return string(v.Data), true
}

func (b *mp4Backend) trackOrDisc(key string) (string, bool) {
	v, ok := mp4.GetItem(b.ilst, key)
	if !ok {
		return "", false
	}
	n, total, err := mp4.DecodeTrackOrDisc(v.Data)
	if err != nil {
		return "", false
	}
	if total > 0 {
		return strconv.Itoa(int(n)) + "/" + strconv.Itoa(int(total)), true
	}
	return strconv.Itoa(int(n)), true
}

func (b *mp4Backend) GetAll(property string) []string {
	if v, ok := b.Get(property); ok {
		return []string{v}
	}
	return nil
}

func (b *mp4Backend) Set(property, value string) {
	if property == "compilation" {
		v := byte(0)
		if value == "1" || strings.EqualFold(value, "true") {
			v = 1
		}
		b.ilst = mp4.SetItem(b.ilst, mp4.KeyCompilation, mp4.ItemValue{TypeCode: 21, Data: []byte{v}})
		return
	}
	if property == "track" || property == "disc" {
		n, total := splitFraction(value)
		key := mp4.KeyTrack
		if property == "disc" {
			key = mp4.KeyDisc
		}
		b.ilst = mp4.SetItem(b.ilst, key, mp4.ItemValue{TypeCode: 0, Data: mp4.EncodeTrackOrDisc(uint16(n), uint16(total))})
		return
	}
	key, ok := mp4ItemKeys[property]
	if !ok {
		if freeform := freeformKeyFor(property); freeform != nil {
			b.ilst = mp4.AddFreeform(b.ilst, freeform.mean, freeform.name, []byte(value))
		}
		return
	}
	b.ilst = mp4.SetItem(b.ilst, key, mp4.ItemValue{TypeCode: 1, Data: []byte(value)})
}

func splitFraction(value string) (n, total int) {
	parts := strings.SplitN(value, "/", 2)
	n, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return n, total
}

type freeformKey struct{ mean, name string }

var mp4Freeforms = map[string]freeformKey{
	"replayGainTrackGain": {"com.apple.iTunes", "replaygain_track_gain"},
	"replayGainTrackPeak": {"com.apple.iTunes", "replaygain_track_peak"},
	"replayGainAlbumGain": {"com.apple.iTunes", "replaygain_album_gain"},
	"replayGainAlbumPeak": {"com.apple.iTunes", "replaygain_album_peak"},
	"mbTrackID":           {"com.apple.iTunes", "MusicBrainz Track Id"},
	"mbAlbumID":           {"com.apple.iTunes", "MusicBrainz Album Id"},
	"mbArtistID":          {"com.apple.iTunes", "MusicBrainz Artist Id"},
	"isrc":                {"com.apple.iTunes", "ISRC"},
}

func freeformKeyFor(property string) *freeformKey {
	if k, ok := mp4Freeforms[property]; ok {
		return &k
	}
	return nil
}

func (b *mp4Backend) Pictures() []Picture {
	v, ok := mp4.GetItem(b.ilst, mp4.KeyCover)
	if !ok {
		return nil
	}
	mime := "image/jpeg"
	if v.TypeCode == 14 {
		mime = "image/png"
	}
	return []Picture{{MIMEType: mime, Data: v.Data}}
}

func (b *mp4Backend) AddPicture(pic Picture) {
	typeCode := uint32(13) // JPEG
	if pic.MIMEType == "image/png" {
		typeCode = 14
	}
	b.ilst = mp4.SetItem(b.ilst, mp4.KeyCover, mp4.ItemValue{TypeCode: typeCode, Data: pic.Data})
}
