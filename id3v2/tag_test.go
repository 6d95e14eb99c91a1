package id3v2

import (
	"bytes"
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

func TestParseSimpleTextFrame(t *testing.T) {
	// spec.md §8 S1: ID3v2.4 header followed by a TIT2 frame containing
	// UTF-8 "Hello" with no terminator.
	raw := []byte{
		0x49, 0x44, 0x33, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, // header, size=16
	}
	frame := append([]byte("TIT2"), 0x00, 0x00, 0x00, 0x06, 0x00, 0x00)
	frame = append(frame, 0x03)
	frame = append(frame, []byte("Hello")...)
	raw = append(raw, frame...)

	tag, err := Parse(binutil.New(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	f := tag.Get("TIT2")
	if f == nil {
		t.Fatalf("TIT2 frame not found")
	}
	tf, ok := f.(*TextFrame)
	if !ok || len(tf.Values) != 1 || tf.Values[0] != "Hello" {
		t.Errorf("TIT2 = %#v, expected TextFrame{Values: [\"Hello\"]}", f)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	tag := &Tag{
		Version: Version4,
		Frames: []Frame{
			&TextFrame{ID: "TIT2", Values: []string{"Hello"}},
			&TextFrame{ID: "TPE1", Values: []string{"Artist"}},
			&CommentFrame{ID: "COMM", Language: "eng", Description: "", Text: "a comment"},
		},
	}
	rendered, err := tag.Render(RenderOptions{})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse of rendered tag returned error: %v", err)
	}

	if f := got.Get("TIT2"); f == nil || f.(*TextFrame).Values[0] != "Hello" {
		t.Errorf("round trip lost TIT2, got %#v", f)
	}
	if f := got.Get("TPE1"); f == nil || f.(*TextFrame).Values[0] != "Artist" {
		t.Errorf("round trip lost TPE1, got %#v", f)
	}
	comm := got.Get("COMM\x00eng\x00")
	if comm == nil || comm.(*CommentFrame).Text != "a comment" {
		t.Errorf("round trip lost COMM, got %#v", comm)
	}
}

func TestRenderAddsPadding(t *testing.T) {
	tag := &Tag{Version: Version3, Frames: []Frame{&TextFrame{ID: "TIT2", Values: []string{"X"}}}}
	rendered, err := tag.Render(RenderOptions{})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	h, err := ParseHeader(binutil.New(rendered))
	if err != nil {
		t.Fatalf("ParseHeader returned error: %v", err)
	}
	if int(h.Size) < defaultPaddingMin {
		t.Errorf("rendered tag size %d is smaller than the default padding floor %d", h.Size, defaultPaddingMin)
	}
}

func TestRenderExplicitZeroPadding(t *testing.T) {
	tag := &Tag{Version: Version4, Frames: []Frame{&TextFrame{ID: "TIT2", Values: []string{"X"}}}}
	rendered, err := tag.Render(RenderOptions{HasPaddingSizeOverride: true, PaddingSize: 0})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got.Frames) != 1 {
		t.Errorf("expected exactly 1 frame after round trip, got %d", len(got.Frames))
	}
}

func TestDuplicateTagDetection(t *testing.T) {
	one := mustRenderMinimal(t, "First")
	two := mustRenderMinimal(t, "Second")
	raw := append(append([]byte{}, one...), two...)

	tag, err := Parse(binutil.New(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !tag.HasDuplicateTag {
		t.Errorf("expected HasDuplicateTag to be true when a second valid header follows")
	}
	if f := tag.Get("TIT2"); f == nil || f.(*TextFrame).Values[0] != "First" {
		t.Errorf("expected the first tag's frames to be authoritative, got %#v", f)
	}
}

func mustRenderMinimal(t *testing.T, title string) []byte {
	t.Helper()
	tag := &Tag{Version: Version4, Frames: []Frame{&TextFrame{ID: "TIT2", Values: []string{title}}}}
	b, err := tag.Render(RenderOptions{HasPaddingSizeOverride: true, PaddingSize: 0})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	return b
}

func TestV3FrameSizeQuirk(t *testing.T) {
	// A v2.3 tag rendered and parsed back through the v2.3 frame-size
	// handling. The TIT2 payload is 36 bytes (size bytes 00 00 00 24),
	// which reads the same as big-endian and as syncsafe.
	tag := &Tag{
		Version: Version3,
		Frames: []Frame{
			&TextFrame{ID: "TIT2", Values: []string{"Hello World Hello World Hello World"}},
			&TextFrame{ID: "TPE1", Values: []string{"Artist"}},
		},
	}
	rendered, err := tag.Render(RenderOptions{HasPaddingSizeOverride: true, PaddingSize: 0})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got.Frames))
	}
	if f := got.Get("TPE1"); f == nil || f.(*TextFrame).Values[0] != "Artist" {
		t.Errorf("TPE1 frame lost or wrong after v2.3 size round trip: %#v", f)
	}
}

func TestOpaqueFrameRoundTrip(t *testing.T) {
	tag := &Tag{
		Version: Version4,
		Frames:  []Frame{&OpaqueFrame{ID: "XXXX", Payload: []byte{0x01, 0x02, 0x03}}},
	}
	rendered, err := tag.Render(RenderOptions{HasPaddingSizeOverride: true, PaddingSize: 0})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	of, ok := got.Frames[0].(*OpaqueFrame)
	if !ok || !bytes.Equal(of.Payload, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("opaque frame round trip = %#v", got.Frames[0])
	}
}
