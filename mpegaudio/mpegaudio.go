// Package mpegaudio implements MPEG-1/2/2.5 Audio frame header parsing
// and the Xing/Info and VBRI variable-bitrate header conventions
// (spec.md §4.J).
package mpegaudio

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

var (
	ErrInsufficientData = errors.New("mpegaudio: insufficient data")
	ErrBadMagic          = errors.New("mpegaudio: bad magic")
	ErrInvalidFieldValue = errors.New("mpegaudio: invalid field value")
)

// Version is the MPEG audio version ID (spec.md §4.J).
type Version byte

const (
	Version25 Version = iota // MPEG 2.5
	versionReserved
	Version2 // MPEG 2
	Version1 // MPEG 1
)

// Layer is the MPEG audio layer.
type Layer byte

const (
	layerReserved Layer = iota
	Layer3
	Layer2
	Layer1
)

// Channel is the MPEG audio channel mode.
type Channel byte

const (
	ChannelStereo Channel = iota
	ChannelJointStereo
	ChannelDualChannel
	ChannelMono
)

var bitrateTable = map[Version]map[Layer][16]int{
	Version1: {
		Layer1: [16]int{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, -1},
		Layer2: [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1},
		Layer3: [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1},
	},
	Version2: {
		Layer1: [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, -1},
		Layer2: [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},
		Layer3: [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},
	},
}

var samplingRateTable = map[Version][4]int{
	Version1:  {44100, 48000, 32000, -1},
	Version2:  {22050, 24000, 16000, -1},
	Version25: {11025, 12000, 8000, -1},
}

// samplesPerFrameTable lists the samples per frame for each version and
// layer. Nothing in this package reads it; the frame-size formula does
// not use it and no duration is derived from it.
var samplesPerFrameTable = map[Version]map[Layer]int{
	Version1: {Layer1: 384, Layer2: 1152, Layer3: 1152},
	Version2: {Layer1: 384, Layer2: 1152, Layer3: 576},
	Version25: {Layer1: 384, Layer2: 1152, Layer3: 576},
}

// FrameHeader is a decoded 4-byte MPEG audio frame header.
type FrameHeader struct {
	Version    Version
	Layer      Layer
	Protected  bool // CRC present (protection bit is inverted on the wire)
	BitrateKbps int
	SampleRate int
	Padding    bool
	Channel    Channel
	FrameSize  int // bytes, including the header
}

// frameSyncMask is the 11-bit frame sync pattern 0xFFE, left-aligned in
// 16 bits.
const frameSyncMask = 0xFFE0

// FindSync scans b starting at offset for the next 11-bit frame sync
// pattern (0xFFE), returning its byte offset or -1.
func FindSync(b []byte, offset int) int {
	for i := offset; i+1 < len(b); i++ {
		if b[i] == 0xFF && b[i+1]&0xE0 == 0xE0 {
			return i
		}
	}
	return -1
}

// ParseFrameHeader decodes the 4-byte frame header at the start of b.
func ParseFrameHeader(b binutil.Buffer) (*FrameHeader, error) {
	if b.Len() < 4 {
		return nil, errors.Wrap(ErrInsufficientData, "frame header")
	}
	raw := b.Bytes()
	if raw[0] != 0xFF || raw[1]&0xE0 != 0xE0 {
		return nil, errors.Wrap(ErrBadMagic, "missing frame sync")
	}

	versionBits := (raw[1] >> 3) & 0x3
	var version Version
	switch versionBits {
	case 0:
		version = Version25
	case 2:
		version = Version2
	case 3:
		version = Version1
	default:
		return nil, errors.Wrap(ErrInvalidFieldValue, "reserved MPEG version")
	}

	layerBits := (raw[1] >> 1) & 0x3
	var layer Layer
	switch layerBits {
	case 1:
		layer = Layer3
	case 2:
		layer = Layer2
	case 3:
		layer = Layer1
	default:
		return nil, errors.Wrap(ErrInvalidFieldValue, "reserved MPEG layer")
	}

	protected := raw[1]&0x1 == 0 // bit set means NOT protected

	bitrateIdx := (raw[2] >> 4) & 0xF
	lookupVersion := version
	if version == Version25 {
		lookupVersion = Version2 // 2.5 shares V2's bitrate/sample tables
	}
	table, ok := bitrateTable[lookupVersion][layer]
	if !ok {
		return nil, errors.Wrap(ErrInvalidFieldValue, "unsupported version/layer combination")
	}
	bitrate := table[bitrateIdx]
	if bitrate < 0 {
		return nil, errors.Wrap(ErrInvalidFieldValue, "reserved or free bitrate")
	}

	rateIdx := (raw[2] >> 2) & 0x3
	rates, ok := samplingRateTable[version]
	if !ok {
		return nil, errors.Wrap(ErrInvalidFieldValue, "unsupported version")
	}
	sampleRate := rates[rateIdx]
	if sampleRate < 0 {
		return nil, errors.Wrap(ErrInvalidFieldValue, "reserved sample rate")
	}

	padding := (raw[2]>>1)&0x1 != 0
	channel := Channel((raw[3] >> 6) & 0x3)

	var frameSize int
	if layer == Layer1 {
		frameSize = (12*bitrate*1000/sampleRate + boolToInt(padding)) * 4
	} else {
		frameSize = 144000*bitrate/sampleRate + boolToInt(padding)
	}

	return &FrameHeader{
		Version:     version,
		Layer:       layer,
		Protected:   protected,
		BitrateKbps: bitrate,
		SampleRate:  sampleRate,
		Padding:     padding,
		Channel:     channel,
		FrameSize:   frameSize,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sideInfoOffset returns the byte offset (from after the 4-byte frame
// header, plus 2 if CRC-protected) at which a Xing/Info header would
// begin, per the de facto convention used by LAME/Xing encoders.
func sideInfoOffset(h *FrameHeader) int {
	offset := 0
	if h.Protected {
		offset += 2
	}
	mono := h.Channel == ChannelMono
	switch {
	case h.Version == Version1 && mono:
		offset += 17
	case h.Version == Version1 && !mono:
		offset += 32
	case h.Version != Version1 && mono:
		offset += 9
	default:
		offset += 17
	}
	return offset
}

// XingHeader is a decoded Xing/Info VBR header.
type XingHeader struct {
	IsInfo     bool // "Info" magic means CBR-encoded-as-Xing (no VBR); "Xing" means VBR
	Frames     uint32
	Bytes      uint32
	HasFrames  bool
	HasBytes   bool
	HasTOC     bool
	TOC        [100]byte
	HasQuality bool
	Quality    uint32
}

// FindXingHeader looks for a Xing/Info header at the conventional
// offset within frame (the bytes of one full MPEG frame starting at its
// sync word), given its already-parsed FrameHeader.
func FindXingHeader(frame []byte, h *FrameHeader) (*XingHeader, bool) {
	off := 4 + sideInfoOffset(h)
	if off+8 > len(frame) {
		return nil, false
	}
	magic := string(frame[off : off+4])
	if magic != "Xing" && magic != "Info" {
		return nil, false
	}
	b := binutil.New(frame[off+4:])
	flags, err := b.Uint32BE(0)
	if err != nil {
		return nil, false
	}
	xh := &XingHeader{IsInfo: magic == "Info"}
	pos := 4
	if flags&0x1 != 0 {
		if v, err := b.Uint32BE(pos); err == nil {
			xh.Frames = v
			xh.HasFrames = true
		}
		pos += 4
	}
	if flags&0x2 != 0 {
		if v, err := b.Uint32BE(pos); err == nil {
			xh.Bytes = v
			xh.HasBytes = true
		}
		pos += 4
	}
	if flags&0x4 != 0 {
		if pos+100 <= b.Len() {
			copy(xh.TOC[:], b.Bytes()[pos:pos+100])
			xh.HasTOC = true
		}
		pos += 100
	}
	if flags&0x8 != 0 {
		if v, err := b.Uint32BE(pos); err == nil {
			xh.Quality = v
			xh.HasQuality = true
		}
	}
	return xh, true
}

// VBRIHeader is a decoded Fraunhofer VBRI header, located at a fixed
// offset (32 bytes after the frame header) rather than the
// channel/version-dependent Xing offset.
type VBRIHeader struct {
	Version    uint16
	Delay      uint16
	Quality    uint16
	Bytes      uint32
	Frames     uint32
}

// FindVBRIHeader looks for a VBRI header at its fixed offset within
// frame.
func FindVBRIHeader(frame []byte) (*VBRIHeader, bool) {
	const off = 4 + 32
	if off+26 > len(frame) {
		return nil, false
	}
	if string(frame[off:off+4]) != "VBRI" {
		return nil, false
	}
	b := binutil.New(frame[off+4:])
	version, err := b.Uint16BE(0)
	if err != nil {
		return nil, false
	}
	delay, _ := b.Uint16BE(2)
	quality, _ := b.Uint16BE(4)
	nbytes, _ := b.Uint32BE(6)
	nframes, _ := b.Uint32BE(10)
	return &VBRIHeader{Version: version, Delay: delay, Quality: quality, Bytes: nbytes, Frames: nframes}, true
}
