// Package wavpack implements WavPack block header parsing, including
// the multi-channel metadata sub-block flags needed to report audio
// properties across a multi-block stream (spec.md §4.L).
package wavpack

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

var (
	ErrInsufficientData  = errors.New("wavpack: insufficient data")
	ErrBadMagic          = errors.New("wavpack: bad magic")
	ErrInvalidFieldValue = errors.New("wavpack: invalid field value")
)

const magic = "wvpk"
const blockHeaderSize = 32

// BlockHeader is a decoded 32-byte WavPack block header.
type BlockHeader struct {
	BlockSize      uint32
	Version        uint16
	TotalSamples   uint32
	HasTotalSamples bool
	BlockIndex     uint32
	BlockSamples   uint32
	BitsPerSample  uint8
	Mono           bool
	Hybrid         bool
	FinalBlock     bool
	InitialBlock   bool
	SampleRate     uint32
	Channels       uint8 // derived: 1 if Mono, else 2 per block (combine across blocks for >2ch streams)
}

// sampleRateTable is WavPack's 4-bit sample-rate index table.
var sampleRateTable = [...]int{
	6000, 8000, 9600, 11025, 12000, 16000, 22050, 24000,
	32000, 44100, 48000, 64000, 88200, 96000, 192000, -1, // 15 = "not set"
}

// ParseBlockHeader decodes the 32-byte header at the start of b.
func ParseBlockHeader(b binutil.Buffer) (*BlockHeader, error) {
	if b.Len() < blockHeaderSize {
		return nil, errors.Wrap(ErrInsufficientData, "block header")
	}
	if string(b.Bytes()[0:4]) != magic {
		return nil, errors.Wrap(ErrBadMagic, "expected \"wvpk\"")
	}
	blockSize, err := b.Uint32LE(4)
	if err != nil {
		return nil, err
	}
	version, err := b.Uint16LE(8)
	if err != nil {
		return nil, err
	}
	// bytes 10-11: track/index number (unused here)
	totalSamples, err := b.Uint32LE(12)
	if err != nil {
		return nil, err
	}
	blockIndex, err := b.Uint32LE(16)
	if err != nil {
		return nil, err
	}
	blockSamples, err := b.Uint32LE(20)
	if err != nil {
		return nil, err
	}
	flags, err := b.Uint32LE(24)
	if err != nil {
		return nil, err
	}

	bitsIdx := flags & 0x3
	bits := [4]uint8{8, 16, 24, 32}[bitsIdx]

	rateIdx := (flags >> 23) & 0xF
	rate := 0
	if int(rateIdx) < len(sampleRateTable) {
		rate = sampleRateTable[rateIdx]
	}

	return &BlockHeader{
		BlockSize:       blockSize,
		Version:         version,
		TotalSamples:    totalSamples,
		HasTotalSamples: totalSamples != 0xFFFFFFFF,
		BlockIndex:      blockIndex,
		BlockSamples:    blockSamples,
		BitsPerSample:   bits,
		Mono:            flags&0x4 != 0,
		Hybrid:          flags&0x8 != 0,
		InitialBlock:    flags&0x800 != 0,
		FinalBlock:      flags&0x1000 != 0,
		SampleRate:      uint32(rate),
		Channels:        channelsFromFlags(flags),
	}, nil
}

func channelsFromFlags(flags uint32) uint8 {
	if flags&0x4 != 0 {
		return 1
	}
	return 2
}

// MetadataSubBlock is one sub-block following a WavPack block header
// (used for e.g. the "channel info" sub-block on multichannel streams).
type MetadataSubBlock struct {
	ID       byte
	Data     []byte
	OddByte  bool // true if the sub-block's declared byte count is odd (last data byte is padding)
}

// ParseMetadataSubBlocks reads the chain of sub-blocks that follows a
// block header, up to totalSize bytes (BlockHeader.BlockSize - 24, the
// portion of the block after the header's fixed fields).
func ParseMetadataSubBlocks(b binutil.Buffer, totalSize int) ([]MetadataSubBlock, error) {
	var out []MetadataSubBlock
	offset := 0
	for offset < totalSize {
		if b.Len() < offset+2 {
			return nil, errors.Wrap(ErrInsufficientData, "sub-block header")
		}
		id, _ := b.At(offset)
		sizeByte, _ := b.At(offset + 1)
		headerLen := 2
		var wordCount uint32
		if id&0x80 != 0 {
			// large sub-block: 3-byte little-endian word count follows
			wc, err := b.Uint24LE(offset + 1)
			if err != nil {
				return nil, err
			}
			wordCount = wc
			headerLen = 4
		} else {
			wordCount = uint32(sizeByte)
		}
		byteCount := int(wordCount) * 2
		odd := id&0x40 != 0
		if odd {
			byteCount--
		}
		dataStart := offset + headerLen
		if b.Len() < dataStart+byteCount {
			return nil, errors.Wrap(ErrInsufficientData, "sub-block data")
		}
		data := make([]byte, byteCount)
		copy(data, b.Bytes()[dataStart:dataStart+byteCount])
		out = append(out, MetadataSubBlock{ID: id & 0x3F, Data: data, OddByte: odd})

		consumed := headerLen + byteCount
		if odd {
			consumed++ // padding byte
		}
		offset += consumed
	}
	return out, nil
}

// ChannelInfo decodes the "channel info" metadata sub-block (ID 0x0D),
// which carries the true channel count and a libwavpack channel-mask,
// needed because the block header's mono/stereo bit alone cannot
// represent more than two channels.
type ChannelInfo struct {
	Channels    uint8
	ChannelMask uint32
}

// DecodeChannelInfo parses a channel-info sub-block's payload: a 1-byte
// channel count followed by a bit-packed channel mask (the mask width
// depends on the remaining byte count), read via a bit reader since the
// mask is not always byte-aligned.
func DecodeChannelInfo(data []byte) (*ChannelInfo, error) {
	if len(data) < 1 {
		return nil, errors.Wrap(ErrInsufficientData, "channel info")
	}
	channels := data[0]
	r := bitio.NewReader(bytes.NewReader(data[1:]))
	maskBits := uint8(len(data)-1) * 8
	if maskBits > 32 {
		maskBits = 32
	}
	var mask uint32
	if maskBits > 0 {
		v, err := r.ReadBits(maskBits)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidFieldValue, "channel mask")
		}
		mask = uint32(v)
	}
	return &ChannelInfo{Channels: channels, ChannelMask: mask}, nil
}
