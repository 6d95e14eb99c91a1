// Package flac implements the FLAC container codec: the "fLaC" magic, the
// typed metadata-block chain, STREAMINFO, PICTURE and VORBIS_COMMENT
// blocks, and preservation of blocks the codec does not interpret
// (spec.md §4.H).
package flac

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/vorbis"
)

var (
	ErrInsufficientData = errors.New("flac: insufficient data")
	ErrBadMagic          = errors.New("flac: bad magic")
	ErrInvalidFieldValue = errors.New("flac: invalid field value")
	ErrOverflow          = errors.New("flac: overflow")
)

const magic = "fLaC"

// BlockType is the FLAC metadata block type enumerant (spec.md §4.H).
type BlockType byte

const (
	BlockStreamInfo    BlockType = 0
	BlockPadding       BlockType = 1
	BlockApplication   BlockType = 2
	BlockSeekTable     BlockType = 3
	BlockVorbisComment BlockType = 4
	BlockCuesheet      BlockType = 5
	BlockPicture       BlockType = 6
	blockInvalid       BlockType = 127
)

// Block is one metadata block: either a recognized type with semantic
// fields, or an opaque block this codec preserves byte-for-byte.
type Block struct {
	Type  BlockType
	Last  bool
	Raw   []byte // always holds the exact on-disk payload (no length prefix)
}

// StreamInfo is the fixed 34-byte STREAMINFO block, per spec.md §4.H.
type StreamInfo struct {
	MinBlockSize  uint16
	MaxBlockSize  uint16
	MinFrameSize  uint32 // 24-bit
	MaxFrameSize  uint32 // 24-bit
	SampleRate    uint32 // 20-bit
	Channels      uint8  // 1..8, stored on wire as channels-1 in 3 bits
	BitsPerSample uint8  // 4..32, stored on wire as bits-1 in 5 bits
	TotalSamples  uint64 // 36-bit
	MD5           [16]byte
}

const streamInfoSize = 34

// ParseStreamInfo decodes the 34-byte STREAMINFO payload.
func ParseStreamInfo(raw []byte) (*StreamInfo, error) {
	if len(raw) != streamInfoSize {
		return nil, errors.Wrapf(ErrInsufficientData, "STREAMINFO must be %d bytes, got %d", streamInfoSize, len(raw))
	}
	b := binutil.New(raw)
	minBlock, _ := b.Uint16BE(0)
	maxBlock, _ := b.Uint16BE(2)
	minFrame, _ := b.Uint24BE(4)
	maxFrame, _ := b.Uint24BE(7)

	// Bytes 10-17 pack: 20 bits sample rate, 3 bits channels-1, 5 bits
	// bits-per-sample-1, 36 bits total samples.
	packed := raw[10:18]
	sampleRate := uint32(packed[0])<<12 | uint32(packed[1])<<4 | uint32(packed[2])>>4
	channels := ((packed[2] >> 1) & 0x07) + 1
	bitsPerSample := (((packed[2] & 0x01) << 4) | (packed[3] >> 4)) + 1
	totalSamples := uint64(packed[3]&0x0F)<<32 | uint64(packed[4])<<24 | uint64(packed[5])<<16 | uint64(packed[6])<<8 | uint64(packed[7])

	var md5 [16]byte
	copy(md5[:], raw[18:34])

	return &StreamInfo{
		MinBlockSize:  minBlock,
		MaxBlockSize:  maxBlock,
		MinFrameSize:  minFrame,
		MaxFrameSize:  maxFrame,
		SampleRate:    sampleRate,
		Channels:      channels,
		BitsPerSample: bitsPerSample,
		TotalSamples:  totalSamples,
		MD5:           md5,
	}, nil
}

// Render serializes the STREAMINFO block back to its 34-byte wire form.
func (s *StreamInfo) Render() []byte {
	out := make([]byte, streamInfoSize)
	b := binutil.NewBuilder().
		WriteUint16BE(s.MinBlockSize).
		WriteUint16BE(s.MaxBlockSize).
		WriteUint24BE(s.MinFrameSize).
		WriteUint24BE(s.MaxFrameSize)
	copy(out[0:10], b.Bytes().Bytes())

	channelsField := (s.Channels - 1) & 0x07
	bpsField := (s.BitsPerSample - 1) & 0x1F
	sr := s.SampleRate & 0xFFFFF

	out[10] = byte(sr >> 12)
	out[11] = byte(sr >> 4)
	out[12] = byte(sr<<4) | (channelsField << 1) | (bpsField >> 4)
	out[13] = byte(bpsField<<4) | byte(s.TotalSamples>>32)&0x0F
	out[14] = byte(s.TotalSamples >> 24)
	out[15] = byte(s.TotalSamples >> 16)
	out[16] = byte(s.TotalSamples >> 8)
	out[17] = byte(s.TotalSamples)
	copy(out[18:34], s.MD5[:])
	return out
}

// Stream is a fully parsed FLAC container: the metadata-block chain plus
// the offset in the source buffer where encoded audio frames begin.
type Stream struct {
	Blocks     []Block
	AudioStart int
}

// Parse reads "fLaC" followed by the metadata-block chain from b.
func Parse(b binutil.Buffer) (*Stream, error) {
	if b.Len() < 4 || string(b.Bytes()[0:4]) != magic {
		return nil, errors.Wrap(ErrBadMagic, "expected \"fLaC\"")
	}
	s := &Stream{}
	offset := 4
	for {
		if b.Len() < offset+4 {
			return nil, errors.Wrap(ErrInsufficientData, "metadata block header")
		}
		header := b.Bytes()[offset]
		last := header&0x80 != 0
		btype := BlockType(header & 0x7F)
		length, err := b.Uint24BE(offset + 1)
		if err != nil {
			return nil, err
		}
		bodyStart := offset + 4
		if b.Len() < bodyStart+int(length) {
			return nil, errors.Wrap(ErrInsufficientData, "metadata block body")
		}
		raw := make([]byte, length)
		copy(raw, b.Bytes()[bodyStart:bodyStart+int(length)])

		if btype == BlockStreamInfo && len(raw) != streamInfoSize {
			return nil, errors.Wrap(ErrInvalidFieldValue, "STREAMINFO has wrong size")
		}

		s.Blocks = append(s.Blocks, Block{Type: btype, Last: last, Raw: raw})
		offset = bodyStart + int(length)
		if last {
			break
		}
	}
	s.AudioStart = offset
	return s, nil
}

// StreamInfo returns the decoded STREAMINFO block, or nil if the stream
// somehow lacks one (a violation of spec.md §4.H, but tolerated here
// since Parse does not reject a well-formed file missing it).
func (s *Stream) StreamInfo() (*StreamInfo, error) {
	for _, blk := range s.Blocks {
		if blk.Type == BlockStreamInfo {
			return ParseStreamInfo(blk.Raw)
		}
	}
	return nil, nil
}

// VorbisComment returns the decoded VORBIS_COMMENT block, if present.
func (s *Stream) VorbisComment() (*vorbis.Tag, error) {
	for _, blk := range s.Blocks {
		if blk.Type == BlockVorbisComment {
			return vorbis.Parse(binutil.New(blk.Raw))
		}
	}
	return nil, nil
}

// SetVorbisComment replaces (or appends) the VORBIS_COMMENT block.
func (s *Stream) SetVorbisComment(t *vorbis.Tag) error {
	raw, err := t.Render()
	if err != nil {
		return err
	}
	s.replaceOrAppend(BlockVorbisComment, raw)
	return nil
}

// Pictures returns every PICTURE block, decoded.
func (s *Stream) Pictures() ([]vorbis.Picture, error) {
	var out []vorbis.Picture
	for _, blk := range s.Blocks {
		if blk.Type != BlockPicture {
			continue
		}
		pic, err := vorbis.DecodePictureBlock(blk.Raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *pic)
	}
	return out, nil
}

// AddPicture appends a new PICTURE block.
func (s *Stream) AddPicture(pic vorbis.Picture) {
	s.appendBlock(BlockPicture, pic.Render())
}

// RemovePictures deletes every PICTURE block.
func (s *Stream) RemovePictures() {
	s.removeType(BlockPicture)
}

func (s *Stream) replaceOrAppend(t BlockType, raw []byte) {
	for i, blk := range s.Blocks {
		if blk.Type == t {
			s.Blocks[i].Raw = raw
			return
		}
	}
	s.appendBlock(t, raw)
}

func (s *Stream) appendBlock(t BlockType, raw []byte) {
	s.Blocks = append(s.Blocks, Block{Type: t, Raw: raw})
}

func (s *Stream) removeType(t BlockType) {
	out := s.Blocks[:0]
	for _, blk := range s.Blocks {
		if blk.Type != t {
			out = append(out, blk)
		}
	}
	s.Blocks = out
}

// RenderOptions controls Stream.Render.
type RenderOptions struct {
	// PaddingSize, if > 0, appends a fresh PADDING block of this many
	// bytes as the last block. PADDING blocks already in the stream are
	// always dropped, so with PaddingSize 0 the output has no padding.
	// Regenerating padding (rather than trying to preserve the original
	// byte count) matches the teacher's simplicity-first posture and
	// avoids the original file's padding becoming stale after an edit.
	PaddingSize int
}

// Render serializes the magic, the block chain (STREAMINFO first, then
// every other non-PADDING block in original relative order, then a
// PADDING block when opts.PaddingSize > 0), and returns it concatenated
// with the audio bytes supplied by the caller. A stream without a
// STREAMINFO block is an error.
func (s *Stream) Render(opts RenderOptions, audio []byte) ([]byte, error) {
	blocks := make([]Block, 0, len(s.Blocks)+1)

	var streamInfo *Block
	for i := range s.Blocks {
		if s.Blocks[i].Type == BlockStreamInfo {
			streamInfo = &s.Blocks[i]
			break
		}
	}
	if streamInfo == nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "no STREAMINFO block to render")
	}
	blocks = append(blocks, *streamInfo)
	for _, blk := range s.Blocks {
		if blk.Type == BlockStreamInfo || blk.Type == BlockPadding {
			continue
		}
		blocks = append(blocks, blk)
	}
	if opts.PaddingSize > 0 {
		blocks = append(blocks, Block{Type: BlockPadding, Raw: make([]byte, opts.PaddingSize)})
	}

	out := make([]byte, 0, len(audio)+1024)
	out = append(out, magic...)
	for i, blk := range blocks {
		if len(blk.Raw) > 1<<24-1 {
			return nil, errors.Wrap(ErrOverflow, "metadata block too large")
		}
		last := i == len(blocks)-1
		var flag byte
		if last {
			flag = 0x80
		}
		hdr := binutil.NewBuilder().
			WriteByte(flag | byte(blk.Type)).
			WriteUint24BE(uint32(len(blk.Raw)))
		out = append(out, hdr.Bytes().Bytes()...)
		out = append(out, blk.Raw...)
	}
	out = append(out, audio...)
	return out, nil
}
