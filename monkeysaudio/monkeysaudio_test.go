package monkeysaudio

import (
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

func buildCurrentHeader() []byte {
	descriptor := binutil.NewBuilder().
		WriteString("MAC ").
		WriteUint16LE(3990).
		WriteUint16LE(0).
		WriteUint32LE(16). // descriptorLen
		WriteUint32LE(24). // headerLen
		Bytes().Bytes()

	header := binutil.NewBuilder().
		WriteUint16LE(2000). // compression level
		WriteUint16LE(0).    // format flags, unused
		WriteUint32LE(73728).
		WriteUint32LE(5000).
		WriteUint32LE(10).
		WriteUint16LE(16).
		WriteUint16LE(2).
		WriteUint32LE(44100).
		Bytes().Bytes()

	return append(descriptor, header...)
}

func TestParseCurrentHeader(t *testing.T) {
	raw := buildCurrentHeader()
	h, err := Parse(binutil.New(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if h.Version != 3990 {
		t.Errorf("Version = %d, expected 3990", h.Version)
	}
	if h.SampleRate != 44100 || h.Channels != 2 || h.BitsPerSample != 16 {
		t.Errorf("Header = %+v, expected rate=44100 channels=2 bps=16", h)
	}
	if h.BlocksPerFrame != 73728 || h.FinalFrameBlocks != 5000 || h.TotalFrames != 10 {
		t.Errorf("Header = %+v, expected blocksPerFrame=73728 finalFrameBlocks=5000 totalFrames=10", h)
	}

	wantSamples := uint64(9)*73728 + 5000
	if h.TotalSamples() != wantSamples {
		t.Errorf("TotalSamples = %d, expected %d", h.TotalSamples(), wantSamples)
	}
	wantDuration := float64(wantSamples) / 44100
	if h.Duration() != wantDuration {
		t.Errorf("Duration = %v, expected %v", h.Duration(), wantDuration)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := append([]byte("XYZ "), make([]byte, 40)...)
	if _, err := Parse(binutil.New(raw)); err == nil {
		t.Errorf("expected an error for bad magic")
	}
}

func TestParseLegacyBitsPerSample(t *testing.T) {
	raw := make([]byte, 32)
	copy(raw[0:4], "MAC ")
	b := binutil.NewBuilder().
		WriteUint16LE(3950).
		WriteUint16LE(100).
		WriteUint16LE(0x08). // MONKEY_FLAG_24_BIT
		WriteUint16LE(2).
		WriteUint32LE(44100).
		WriteUint32LE(0).
		WriteUint32LE(0).
		WriteUint32LE(5).
		WriteUint32LE(1000).
		Bytes().Bytes()
	copy(raw[4:], b)

	h, err := Parse(binutil.New(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if h.BitsPerSample != 24 {
		t.Errorf("BitsPerSample = %d, expected 24", h.BitsPerSample)
	}
	if h.BlocksPerFrame != 73728*4 {
		t.Errorf("BlocksPerFrame = %d, expected %d (version >= 3950)", h.BlocksPerFrame, 73728*4)
	}
}
