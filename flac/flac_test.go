package flac

import (
	"bytes"
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/vorbis"
)

func buildStreamInfoPayload(sampleRate uint32, channels, bps uint8, totalSamples uint64) []byte {
	si := &StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		MinFrameSize: 1000, MaxFrameSize: 2000,
		SampleRate: sampleRate, Channels: channels, BitsPerSample: bps,
		TotalSamples: totalSamples,
	}
	return si.Render()
}

func TestParseStreamInfoAndVorbisComment(t *testing.T) {
	// spec.md §8 S3.
	siPayload := buildStreamInfoPayload(44100, 2, 16, 441000)

	vTag := &vorbis.Tag{Vendor: "", Comments: []vorbis.Comment{{Name: "TITLE", Value: "T"}}}
	vPayload, err := vTag.Render()
	if err != nil {
		t.Fatalf("vorbis Render returned error: %v", err)
	}

	var raw bytes.Buffer
	raw.WriteString(magic)
	raw.WriteByte(byte(BlockStreamInfo)) // not last
	raw.Write(encodeLen24(len(siPayload)))
	raw.Write(siPayload)
	raw.WriteByte(0x80 | byte(BlockVorbisComment)) // last
	raw.Write(encodeLen24(len(vPayload)))
	raw.Write(vPayload)

	stream, err := Parse(binutil.New(raw.Bytes()))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if stream.AudioStart != raw.Len() {
		t.Errorf("AudioStart = %d, expected %d (no audio bytes present)", stream.AudioStart, raw.Len())
	}

	si, err := stream.StreamInfo()
	if err != nil {
		t.Fatalf("StreamInfo returned error: %v", err)
	}
	if si.SampleRate != 44100 || si.Channels != 2 || si.BitsPerSample != 16 || si.TotalSamples != 441000 {
		t.Errorf("StreamInfo = %+v, expected rate=44100 channels=2 bps=16 samples=441000", si)
	}
	duration := float64(si.TotalSamples) / float64(si.SampleRate)
	if duration != 10 {
		t.Errorf("duration = %v seconds, expected 10", duration)
	}

	vc, err := stream.VorbisComment()
	if err != nil {
		t.Fatalf("VorbisComment returned error: %v", err)
	}
	if vc.Vendor != "" || vc.Get("TITLE") != "T" {
		t.Errorf("VorbisComment = %+v, expected vendor=\"\" TITLE=T", vc)
	}
}

func encodeLen24(n int) []byte {
	return []byte{byte(n >> 16), byte(n >> 8), byte(n)}
}

func TestStreamInfoRoundTrip(t *testing.T) {
	want := &StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		MinFrameSize: 1234, MaxFrameSize: 5678,
		SampleRate: 48000, Channels: 6, BitsPerSample: 24,
		TotalSamples: 123456789,
		MD5:          [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	got, err := ParseStreamInfo(want.Render())
	if err != nil {
		t.Fatalf("ParseStreamInfo returned error: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, expected %+v", got, want)
	}
}

func TestRenderPreservesOtherBlocks(t *testing.T) {
	siPayload := buildStreamInfoPayload(44100, 2, 16, 0)
	stream := &Stream{
		Blocks: []Block{
			{Type: BlockStreamInfo, Raw: siPayload},
			{Type: BlockApplication, Raw: []byte("XXXXhello")},
			{Type: BlockPadding, Raw: make([]byte, 10)},
		},
	}
	rendered, err := stream.Render(RenderOptions{PaddingSize: 4}, nil)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	got, err := Parse(binutil.New(rendered))
	if err != nil {
		t.Fatalf("Parse of rendered stream returned error: %v", err)
	}
	if len(got.Blocks) != 3 {
		t.Fatalf("expected 3 blocks (STREAMINFO, APPLICATION, fresh PADDING), got %d", len(got.Blocks))
	}
	if got.Blocks[0].Type != BlockStreamInfo {
		t.Errorf("expected STREAMINFO first, got %v", got.Blocks[0].Type)
	}
	if got.Blocks[1].Type != BlockApplication || !bytes.Equal(got.Blocks[1].Raw, []byte("XXXXhello")) {
		t.Errorf("APPLICATION block not preserved: %+v", got.Blocks[1])
	}
	if got.Blocks[2].Type != BlockPadding || len(got.Blocks[2].Raw) != 4 {
		t.Errorf("expected fresh 4-byte PADDING, got %+v", got.Blocks[2])
	}
}
