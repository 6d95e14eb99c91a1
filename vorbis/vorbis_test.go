package vorbis

import (
	"bytes"
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

func TestGetAllRepeatedField(t *testing.T) {
	// spec.md §8 S6.
	tag := &Tag{
		Vendor: "Lavc",
		Comments: []Comment{
			{Name: "ARTIST", Value: "A"},
			{Name: "ARTIST", Value: "B"},
		},
	}
	artists := tag.GetAll("ARTIST")
	if len(artists) != 2 || artists[0] != "A" || artists[1] != "B" {
		t.Errorf("GetAll(ARTIST) = %v, expected [A B]", artists)
	}

	rendered, err := tag.Render()
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got.Vendor != "Lavc" {
		t.Errorf("Vendor = %q, expected %q", got.Vendor, "Lavc")
	}
	if len(got.Comments) != 2 {
		t.Fatalf("expected exactly 2 fields after re-render, got %d", len(got.Comments))
	}
	if got.Comments[0] != (Comment{Name: "ARTIST", Value: "A"}) {
		t.Errorf("Comments[0] = %+v, expected ARTIST=A", got.Comments[0])
	}
	if got.Comments[1] != (Comment{Name: "ARTIST", Value: "B"}) {
		t.Errorf("Comments[1] = %+v, expected ARTIST=B", got.Comments[1])
	}
}

func TestSetReplacesExisting(t *testing.T) {
	tag := &Tag{Vendor: "x"}
	tag.Add("title", "First")
	tag.Set("title", "Second")
	if v, ok := tag.Get("TITLE"); !ok || v != "Second" {
		t.Errorf("Get(TITLE) = %q, %v, expected Second, true", v, ok)
	}
	if len(tag.Comments) != 1 {
		t.Errorf("expected Set to leave exactly 1 comment, got %d", len(tag.Comments))
	}
}

func TestPictureBlockRoundTrip(t *testing.T) {
	pic := Picture{
		Type: 3, MIMEType: "image/jpeg", Description: "cover",
		Width: 100, Height: 200, Depth: 24, Colors: 0,
		Data: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}
	raw := pic.Render()
	got, err := DecodePictureBlock(raw)
	if err != nil {
		t.Fatalf("DecodePictureBlock returned error: %v", err)
	}
	if got.Type != pic.Type || got.MIMEType != pic.MIMEType || got.Description != pic.Description ||
		got.Width != pic.Width || got.Height != pic.Height || got.Depth != pic.Depth || got.Colors != pic.Colors ||
		!bytes.Equal(got.Data, pic.Data) {
		t.Errorf("round trip = %+v, expected %+v", got, pic)
	}
}

func TestFieldName(t *testing.T) {
	tests := []struct {
		property string
		want     string
	}{
		{"title", "TITLE"},
		{"albumArtist", "ALBUMARTIST"},
		{"mbTrackID", "MUSICBRAINZ_TRACKID"},
	}
	for ii, tt := range tests {
		if got := FieldName(tt.property); got != tt.want {
			t.Errorf("[%d] FieldName(%q) = %q, expected %q", ii, tt.property, got, tt.want)
		}
	}
}
