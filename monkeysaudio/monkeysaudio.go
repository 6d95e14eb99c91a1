// Package monkeysaudio implements Monkey's Audio (.ape) header parsing:
// the legacy (pre-3.98) and current fixed-size descriptor+header layout,
// enough to report audio properties without decompressing frames
// (spec.md §4.L).
package monkeysaudio

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

var (
	ErrInsufficientData = errors.New("monkeysaudio: insufficient data")
	ErrBadMagic          = errors.New("monkeysaudio: bad magic")
	ErrUnsupportedVersion = errors.New("monkeysaudio: unsupported version")
)

const magic = "MAC "

// Header holds the properties needed to report duration/channels/rate,
// normalized across the legacy and current header layouts.
type Header struct {
	Version          uint16 // e.g. 3990 means 3.99
	CompressionLevel uint16
	SampleRate       uint32
	Channels         uint16
	BitsPerSample    uint16
	TotalFrames      uint32
	FinalFrameBlocks uint32
	BlocksPerFrame   uint32
}

// Parse decodes a Monkey's Audio header starting at the "MAC " magic.
// Versions >= 3980 use the fixed-size descriptor+header layout; earlier
// versions pack the same information into a shorter legacy layout.
func Parse(b binutil.Buffer) (*Header, error) {
	if b.Len() < 6 || string(b.Bytes()[0:4]) != magic {
		return nil, errors.Wrap(ErrBadMagic, "expected \"MAC \"")
	}
	version, err := b.Uint16LE(4)
	if err != nil {
		return nil, err
	}
	if version >= 3980 {
		return parseCurrent(b, version)
	}
	return parseLegacy(b, version)
}

// parseCurrent decodes the >= 3.98 descriptor (its own length-prefixed
// block) followed by the fixed-size header block.
func parseCurrent(b binutil.Buffer, version uint16) (*Header, error) {
	// Descriptor: magic(4) version(2) padding(2) descriptorLen(4)
	// headerLen(4) seekTableLen(4) headerDataLen(4) apeFrameDataLen(4)
	// apeFrameDataHighLen(4) terminatingDataLen(4) md5(16) ...
	const descriptorFixed = 4 + 2 + 2 + 4 + 4
	if b.Len() < descriptorFixed {
		return nil, errors.Wrap(ErrInsufficientData, "descriptor")
	}
	descriptorLen, err := b.Uint32LE(8)
	if err != nil {
		return nil, err
	}
	headerLen, err := b.Uint32LE(12)
	if err != nil {
		return nil, err
	}
	headerStart := int(descriptorLen)
	if b.Len() < headerStart+int(headerLen) {
		return nil, errors.Wrap(ErrInsufficientData, "header block")
	}
	hb, err := b.Slice(headerStart, int(headerLen))
	if err != nil {
		return nil, err
	}
	if hb.Len() < 24 {
		return nil, errors.Wrap(ErrInsufficientData, "header block too short")
	}
	compLevel, _ := hb.Uint16LE(0)
	blocksPerFrame, _ := hb.Uint32LE(4)
	finalFrameBlocks, _ := hb.Uint32LE(8)
	totalFrames, _ := hb.Uint32LE(12)
	bitsPerSample, _ := hb.Uint16LE(16)
	channels, _ := hb.Uint16LE(18)
	sampleRate, _ := hb.Uint32LE(20)

	return &Header{
		Version:          version,
		CompressionLevel: compLevel,
		SampleRate:       sampleRate,
		Channels:         channels,
		BitsPerSample:    bitsPerSample,
		TotalFrames:      totalFrames,
		FinalFrameBlocks: finalFrameBlocks,
		BlocksPerFrame:   blocksPerFrame,
	}, nil
}

// parseLegacy decodes the pre-3.98 layout, a fixed 26-byte header after
// the magic and version (32 bytes from the magic), where compression level, format flags, channels, sample rate, frame
// count and final-frame-block-count all sit at fixed offsets after the
// version field.
func parseLegacy(b binutil.Buffer, version uint16) (*Header, error) {
	if b.Len() < 32 {
		return nil, errors.Wrap(ErrInsufficientData, "legacy header")
	}
	compLevel, _ := b.Uint16LE(6)
	formatFlags, _ := b.Uint16LE(8)
	channels, _ := b.Uint16LE(10)
	sampleRate, _ := b.Uint32LE(12)
	_, _ = b.Uint32LE(16) // header bytes (WAV header, unused here)
	_, _ = b.Uint32LE(20) // terminating bytes
	totalFrames, _ := b.Uint32LE(24)
	finalFrameBlocks, _ := b.Uint32LE(28)

	bitsPerSample := uint16(16)
	if formatFlags&0x01 != 0 { // MONKEY_FLAG_8_BIT
		bitsPerSample = 8
	} else if formatFlags&0x08 != 0 { // MONKEY_FLAG_24_BIT
		bitsPerSample = 24
	}

	// Legacy blocks-per-frame depends on version and compression level.
	blocksPerFrame := uint32(73728 * 4)
	if version < 3830 || (version < 3900 && compLevel < 4000) {
		blocksPerFrame = 73728
	}

	return &Header{
		Version:          version,
		CompressionLevel: compLevel,
		SampleRate:       sampleRate,
		Channels:         channels,
		BitsPerSample:    bitsPerSample,
		TotalFrames:      totalFrames,
		FinalFrameBlocks: finalFrameBlocks,
		BlocksPerFrame:   blocksPerFrame,
	}, nil
}

// TotalSamples returns the decoded total sample-frame count implied by
// TotalFrames/BlocksPerFrame/FinalFrameBlocks.
func (h *Header) TotalSamples() uint64 {
	if h.TotalFrames == 0 {
		return 0
	}
	return uint64(h.TotalFrames-1)*uint64(h.BlocksPerFrame) + uint64(h.FinalFrameBlocks)
}

// Duration returns the audio duration in seconds.
func (h *Header) Duration() float64 {
	if h.SampleRate == 0 {
		return 0
	}
	return float64(h.TotalSamples()) / float64(h.SampleRate)
}
