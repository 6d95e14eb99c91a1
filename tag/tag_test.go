package tag

import (
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/ape"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/id3v2"
)

func TestID3v2BackendGetSet(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4}
	backend := NewID3v2Backend(idTag, 100)
	facade := New(backend)

	facade.SetTitle("Hello")
	facade.SetArtist("Artist")
	facade.SetTrack(3, 12)

	if facade.Title() != "Hello" {
		t.Errorf("Title() = %q, expected %q", facade.Title(), "Hello")
	}
	if facade.Artist() != "Artist" {
		t.Errorf("Artist() = %q, expected %q", facade.Artist(), "Artist")
	}
	n, total := facade.Track()
	if n != 3 || total != 12 {
		t.Errorf("Track() = (%d, %d), expected (3, 12)", n, total)
	}
}

func TestAPEBackendGetSet(t *testing.T) {
	apeTag := &ape.Tag{Version: 2000}
	backend := NewAPEBackend(apeTag, 100)
	facade := New(backend)

	facade.SetAlbum("Demo")
	if facade.Album() != "Demo" {
		t.Errorf("Album() = %q, expected %q", facade.Album(), "Demo")
	}
}

func TestPriorityComposition(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4}
	apeTag := &ape.Tag{Version: 2000}

	id3 := NewID3v2Backend(idTag, 100) // higher priority
	apeB := NewAPEBackend(apeTag, 50)

	facade := New(apeB, id3)
	idTag.Set(&id3v2.TextFrame{ID: "TIT2", Values: []string{"ID3 Title"}})
	apeTag.Items = append(apeTag.Items, ape.Item{Key: "Title", Type: ape.ItemText, Value: []byte("APE Title")})

	if got := facade.Title(); got != "ID3 Title" {
		t.Errorf("Title() = %q, expected the higher-priority id3v2 value %q", got, "ID3 Title")
	}
}

func TestDuplicateTagSurfaced(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4, HasDuplicateTag: true}
	backend := NewID3v2Backend(idTag, 100)
	facade := New(backend)
	if !facade.HasDuplicateTag {
		t.Errorf("expected HasDuplicateTag to be surfaced from the id3v2 backend")
	}
}

func TestCompilationRoundTrip(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4}
	facade := New(NewID3v2Backend(idTag, 100))
	facade.SetCompilation(true)
	if !facade.Compilation() {
		t.Errorf("Compilation() = false, expected true after SetCompilation(true)")
	}
}

func TestID3v2BackendAddPicture(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4}
	facade := New(NewID3v2Backend(idTag, 100))
	facade.AddPicture(Picture{MIMEType: "image/jpeg", PictureType: 0x03, Data: []byte{0xFF, 0xD8}})

	pics := facade.Pictures()
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d", len(pics))
	}
	if pics[0].MIMEType != "image/jpeg" || pics[0].PictureType != 0x03 {
		t.Errorf("picture = %+v, expected MIMEType=image/jpeg PictureType=0x03", pics[0])
	}

	f := idTag.Get("APIC\x00")
	if f == nil {
		t.Fatalf("expected an APIC frame to be addressable by key after AddPicture")
	}
}

func TestReplayGainValues(t *testing.T) {
	idTag := &id3v2.Tag{Version: id3v2.Version4}
	facade := New(NewID3v2Backend(idTag, 100))
	facade.SetReplayGainValues(ReplayGain{TrackGain: "-3.5 dB", AlbumPeak: "0.98"})
	rg := facade.ReplayGainValues()
	if rg.TrackGain != "-3.5 dB" || rg.AlbumPeak != "0.98" {
		t.Errorf("ReplayGainValues() = %+v, expected TrackGain=-3.5 dB AlbumPeak=0.98", rg)
	}
}
