package mpegaudio

import (
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

func TestParseFrameHeader(t *testing.T) {
	// spec.md §8 S4.
	raw := []byte{0xFF, 0xFB, 0x90, 0x00}
	h, err := ParseFrameHeader(binutil.New(raw))
	if err != nil {
		t.Fatalf("ParseFrameHeader returned error: %v", err)
	}
	if h.Version != Version1 {
		t.Errorf("Version = %v, expected Version1", h.Version)
	}
	if h.Layer != Layer3 {
		t.Errorf("Layer = %v, expected Layer3", h.Layer)
	}
	if h.Protected {
		t.Errorf("Protected = true, expected false (no CRC)")
	}
	if h.BitrateKbps != 128 {
		t.Errorf("BitrateKbps = %d, expected 128", h.BitrateKbps)
	}
	if h.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, expected 44100", h.SampleRate)
	}
	if h.Channel != ChannelStereo {
		t.Errorf("Channel = %v, expected ChannelStereo", h.Channel)
	}
	if h.Padding {
		t.Errorf("Padding = true, expected false")
	}
}

func TestParseFrameHeaderRejectsReservedBitrate(t *testing.T) {
	raw := []byte{0xFF, 0xFB, 0xF0, 0x00}
	if _, err := ParseFrameHeader(binutil.New(raw)); err == nil {
		t.Errorf("expected an error for a reserved bitrate index")
	}
}

func TestParseFrameHeaderRejectsBadSync(t *testing.T) {
	raw := []byte{0x00, 0xFB, 0x90, 0x00}
	if _, err := ParseFrameHeader(binutil.New(raw)); err == nil {
		t.Errorf("expected an error for a missing frame sync")
	}
}

func TestFindSync(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF, 0xFB, 0x90, 0x00}
	if got := FindSync(raw, 0); got != 2 {
		t.Errorf("FindSync = %d, expected 2", got)
	}
	if got := FindSync(raw, 3); got != -1 {
		t.Errorf("FindSync from offset 3 = %d, expected -1", got)
	}
}

func TestFrameSizeLayer3(t *testing.T) {
	raw := []byte{0xFF, 0xFB, 0x90, 0x00}
	h, err := ParseFrameHeader(binutil.New(raw))
	if err != nil {
		t.Fatalf("ParseFrameHeader returned error: %v", err)
	}
	// 144 * bitrate*1000/samplerate + padding, for Layer2/3 (1152 samples/frame / 8 = 144).
	want := 1152/8*128*1000/44100 + 0
	if h.FrameSize != want {
		t.Errorf("FrameSize = %d, expected %d", h.FrameSize, want)
	}
}
