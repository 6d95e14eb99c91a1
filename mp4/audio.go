package mp4

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// AudioProperties summarizes the decodable subset of an MP4 audio
// track's configuration (spec.md §4.K): enough to report duration,
// channel count, sample rate and bit depth without decoding samples.
type AudioProperties struct {
	Codec         string // "aac", "alac", or the raw sample-entry type
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	Duration      float64 // seconds, derived from mdhd timescale/duration
}

// aacSampleRates is the MPEG-4 Audio Specific Config sampling-frequency
// table (ISO/IEC 14496-3 table 1.16).
var aacSampleRates = [...]uint32{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

// ParseAudioSpecificConfig decodes the MPEG-4 Audio Specific Config
// bitstream embedded in an esds atom's decoder-specific-info, reading
// the 5-bit object type, 4-bit sampling-frequency index (or 24-bit
// explicit rate when the index is 0xF) and 4-bit channel configuration
// via a bit reader, matching the sub-byte-aligned layout of §4.K.
func ParseAudioSpecificConfig(b []byte) (sampleRate uint32, channels uint8, err error) {
	r := bitio.NewReader(bytes.NewReader(b))
	_, err = r.ReadBits(5) // object type
	if err != nil {
		return 0, 0, errors.Wrap(ErrInsufficientData, "audio object type")
	}
	freqIdx, err := r.ReadBits(4)
	if err != nil {
		return 0, 0, errors.Wrap(ErrInsufficientData, "sampling frequency index")
	}
	if freqIdx == 0xF {
		explicit, err := r.ReadBits(24)
		if err != nil {
			return 0, 0, errors.Wrap(ErrInsufficientData, "explicit sampling frequency")
		}
		sampleRate = uint32(explicit)
	} else if int(freqIdx) < len(aacSampleRates) {
		sampleRate = aacSampleRates[freqIdx]
	} else {
		return 0, 0, errors.Wrap(ErrInvalidFieldValue, "sampling frequency index out of range")
	}
	chanCfg, err := r.ReadBits(4)
	if err != nil {
		return 0, 0, errors.Wrap(ErrInsufficientData, "channel configuration")
	}
	return sampleRate, uint8(chanCfg), nil
}

// esds tag/length wire constants (ISO/IEC 14496-1 descriptor framing).
const (
	tagESDescriptor          = 0x03
	tagDecoderConfigDescr    = 0x04
	tagDecoderSpecificDescr  = 0x05
)

// readDescriptorLength decodes the expandable-length field used
// throughout MPEG-4 descriptors: each byte's top bit signals
// continuation, low 7 bits are length data, big-endian.
func readDescriptorLength(b []byte, offset int) (length int, next int, err error) {
	var v int
	for i := 0; i < 4; i++ {
		if offset+i >= len(b) {
			return 0, 0, errors.Wrap(ErrInsufficientData, "descriptor length")
		}
		x := b[offset+i]
		v = v<<7 | int(x&0x7F)
		if x&0x80 == 0 {
			return v, offset + i + 1, nil
		}
	}
	return 0, 0, errors.Wrap(ErrInvalidFieldValue, "descriptor length too long")
}

// ParseESDS walks an esds atom's FullBox-prefixed payload to find the
// decoder-specific-info (the embedded Audio Specific Config) inside the
// ES_Descriptor -> DecoderConfigDescriptor -> DecoderSpecificInfo chain.
func ParseESDS(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, errors.Wrap(ErrInsufficientData, "esds FullBox prefix")
	}
	offset := 4
	for offset < len(payload) {
		tag := payload[offset]
		length, next, err := readDescriptorLength(payload, offset+1)
		if err != nil {
			return nil, err
		}
		body := payload[next:]
		if length > len(body) {
			return nil, errors.Wrap(ErrInsufficientData, "descriptor body")
		}
		switch tag {
		case tagESDescriptor:
			// ES_ID(2) + flags(1, plus optional dependsOn/URL/OCR fields
			// this codec does not need) precede the nested
			// DecoderConfigDescriptor; recurse into the body.
			if len(body) < 3 {
				return nil, errors.Wrap(ErrInsufficientData, "ES_Descriptor")
			}
			inner, err := ParseESDS(append([]byte{0, 0, 0, 0}, body[3:length]...))
			if err == nil && inner != nil {
				return inner, nil
			}
			offset = next + length
		case tagDecoderConfigDescr:
			// objectTypeIndication(1) + streamType/upStream/reserved(1) +
			// bufferSizeDB(3) + maxBitrate(4) + avgBitrate(4) precede the
			// nested DecoderSpecificInfo.
			if len(body) < 13 {
				return nil, errors.Wrap(ErrInsufficientData, "DecoderConfigDescriptor")
			}
			return scanForSpecificInfo(body[13:length])
		default:
			offset = next + length
		}
	}
	return nil, errors.Wrap(ErrNotFound, "no decoder specific info in esds")
}

func scanForSpecificInfo(b []byte) ([]byte, error) {
	offset := 0
	for offset < len(b) {
		tag := b[offset]
		length, next, err := readDescriptorLength(b, offset+1)
		if err != nil {
			return nil, err
		}
		if tag == tagDecoderSpecificDescr {
			if next+length > len(b) {
				return nil, errors.Wrap(ErrInsufficientData, "DecoderSpecificInfo")
			}
			out := make([]byte, length)
			copy(out, b[next:next+length])
			return out, nil
		}
		offset = next + length
	}
	return nil, errors.Wrap(ErrNotFound, "no DecoderSpecificInfo descriptor")
}

// ALACMagicCookie is the decoded "alac" sample-entry magic cookie (the
// encoder's per-stream configuration, stored in the alac child atom of
// the sample description).
type ALACMagicCookie struct {
	FrameLength   uint32
	BitDepth      uint8
	Channels      uint8
	SampleRate    uint32
}

// ParseALACMagicCookie decodes the 24-byte ALACSpecificConfig that
// follows the 4-byte FullBox prefix in an alac atom's payload.
func ParseALACMagicCookie(payload []byte) (*ALACMagicCookie, error) {
	if len(payload) < 4+24 {
		return nil, errors.Wrap(ErrInsufficientData, "ALACSpecificConfig")
	}
	body := payload[4:]
	be32 := func(off int) uint32 {
		return uint32(body[off])<<24 | uint32(body[off+1])<<16 | uint32(body[off+2])<<8 | uint32(body[off+3])
	}
	return &ALACMagicCookie{
		FrameLength: be32(0),
		BitDepth:    body[5],
		Channels:    body[9],
		SampleRate:  be32(20),
	}, nil
}

// ParseDuration computes track duration in seconds from an mdhd box's
// FullBox-prefixed payload (version 0: 32-bit fields; version 1: 64-bit).
func ParseDuration(mdhdPayload []byte) (float64, error) {
	if len(mdhdPayload) < 1 {
		return 0, errors.Wrap(ErrInsufficientData, "mdhd version byte")
	}
	version := mdhdPayload[0]
	var timescale, duration uint64
	if version == 1 {
		if len(mdhdPayload) < 4+8+8+8+8 {
			return 0, errors.Wrap(ErrInsufficientData, "mdhd v1 body")
		}
		timescale = be64(mdhdPayload[20:28])
		duration = be64(mdhdPayload[28:36])
	} else {
		if len(mdhdPayload) < 4+4+4+4+4 {
			return 0, errors.Wrap(ErrInsufficientData, "mdhd v0 body")
		}
		timescale = uint64(be32(mdhdPayload[12:16]))
		duration = uint64(be32(mdhdPayload[16:20]))
	}
	if timescale == 0 {
		return 0, errors.Wrap(ErrInvalidFieldValue, "mdhd timescale is zero")
	}
	return float64(duration) / float64(timescale), nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func be64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
