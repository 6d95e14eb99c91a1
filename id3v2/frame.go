package id3v2

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/syncsafe"
)

// FrameFlags are the two ID3v2.3/2.4 frame flag bytes. v2.2 frames have no
// flags (6-byte header only).
type FrameFlags struct {
	TagAlterPreservation  bool
	FileAlterPreservation bool
	ReadOnly              bool
	GroupIdentity         bool
	Compression           bool
	Encryption            bool
	Unsynchronisation     bool // v2.4 only
	DataLengthIndicator   bool // v2.4 only
}

func parseFrameFlags(msg, fmtb byte) FrameFlags {
	return FrameFlags{
		TagAlterPreservation:  msg&0x40 != 0,
		FileAlterPreservation: msg&0x20 != 0,
		ReadOnly:              msg&0x10 != 0,
		GroupIdentity:         fmtb&0x40 != 0,
		Compression:           fmtb&0x08 != 0,
		Encryption:            fmtb&0x04 != 0,
		Unsynchronisation:     fmtb&0x02 != 0,
		DataLengthIndicator:   fmtb&0x01 != 0,
	}
}

func (f FrameFlags) render() (msg, fmtb byte) {
	if f.TagAlterPreservation {
		msg |= 0x40
	}
	if f.FileAlterPreservation {
		msg |= 0x20
	}
	if f.ReadOnly {
		msg |= 0x10
	}
	if f.GroupIdentity {
		fmtb |= 0x40
	}
	if f.Compression {
		fmtb |= 0x08
	}
	if f.Encryption {
		fmtb |= 0x04
	}
	if f.Unsynchronisation {
		fmtb |= 0x02
	}
	if f.DataLengthIndicator {
		fmtb |= 0x01
	}
	return
}

// validFrameID reports whether id is composed only of A-Z and 0-9 ASCII
// characters, as required by spec.md §3.
func validFrameID(id string) bool {
	if len(id) == 0 {
		return false
	}
	for _, c := range []byte(id) {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// frameHeaderInfo is the decoded, version-normalized frame header.
type frameHeaderInfo struct {
	ID         string
	Size       int // payload size in bytes, post-header
	HeaderSize int // 6 (v2.2) or 10 (v2.3/2.4)
	Flags      FrameFlags
}

// parseFrameHeader reads one frame header at offset 0 of b for the given
// tag version, applying the v2.3 syncsafe-quirk fallback described in
// spec.md §4.E: full and tagOffset locate the frame inside the whole tag,
// so the candidate next-frame offset of each size interpretation can be
// checked for a valid frame ID.
func parseFrameHeader(b binutil.Buffer, version Version, full binutil.Buffer, tagOffset int) (*frameHeaderInfo, error) {
	switch version {
	case Version2:
		if b.Len() < 6 {
			return nil, errors.Wrap(ErrInsufficientData, "v2.2 frame header")
		}
		id := string(b.Bytes()[0:3])
		size, err := b.Uint24BE(3)
		if err != nil {
			return nil, err
		}
		return &frameHeaderInfo{ID: id, Size: int(size), HeaderSize: 6}, nil

	case Version3:
		if b.Len() < 10 {
			return nil, errors.Wrap(ErrInsufficientData, "v2.3 frame header")
		}
		id := string(b.Bytes()[0:4])
		beSize, err := b.Uint32BE(4)
		if err != nil {
			return nil, err
		}
		size := int(beSize)

		// iTunes-quirk compat: if the syncsafe interpretation lands on a
		// plausible next frame ID and the big-endian one does not, prefer
		// syncsafe. See spec.md §4.E.
		if ssSize, err := syncsafe.Decode(b.Bytes()[4:8]); err == nil {
			beNextOK := nextFrameIDLooksValid(full, tagOffset+10+size)
			ssNextOK := nextFrameIDLooksValid(full, tagOffset+10+int(ssSize))
			if !beNextOK && ssNextOK {
				size = int(ssSize)
			}
		}

		msg, _ := b.At(8)
		fmtb, _ := b.At(9)
		return &frameHeaderInfo{ID: id, Size: size, HeaderSize: 10, Flags: parseFrameFlags(msg, fmtb)}, nil

	case Version4:
		if b.Len() < 10 {
			return nil, errors.Wrap(ErrInsufficientData, "v2.4 frame header")
		}
		id := string(b.Bytes()[0:4])
		size, err := b.Syncsafe28(4)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidFieldValue, "v2.4 frame size not syncsafe")
		}
		msg, _ := b.At(8)
		fmtb, _ := b.At(9)
		return &frameHeaderInfo{ID: id, Size: int(size), HeaderSize: 10, Flags: parseFrameFlags(msg, fmtb)}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
}

// nextFrameIDLooksValid reports whether full contains a plausible 4-char
// frame ID at offset, used to disambiguate the v2.3 frame-size quirk.
func nextFrameIDLooksValid(full binutil.Buffer, offset int) bool {
	if offset+4 > full.Len() {
		return offset == full.Len() // exactly at end is fine (no next frame)
	}
	id := full.Bytes()[offset : offset+4]
	if id[0] == 0 {
		return true // padding start is also a valid boundary
	}
	return validFrameID(string(id))
}

func renderFrameHeader(id string, size int, flags FrameFlags, version Version) ([]byte, error) {
	if !validFrameID(id) && id != "" {
		return nil, errors.Wrapf(ErrInvalidFieldValue, "invalid frame id %q", id)
	}
	switch version {
	case Version2:
		if len(id) != 3 {
			return nil, errors.Wrap(ErrInvalidFieldValue, "v2.2 frame id must be 3 chars")
		}
		b := binutil.NewBuilder().WriteString(id).WriteUint24BE(uint32(size))
		return b.Bytes().Bytes(), nil
	case Version3:
		if len(id) != 4 {
			return nil, errors.Wrap(ErrInvalidFieldValue, "v2.3 frame id must be 4 chars")
		}
		msg, fmtb := flags.render()
		b := binutil.NewBuilder().WriteString(id).WriteUint32BE(uint32(size)).WriteByte(msg).WriteByte(fmtb)
		return b.Bytes().Bytes(), nil
	case Version4:
		if len(id) != 4 {
			return nil, errors.Wrap(ErrInvalidFieldValue, "v2.4 frame id must be 4 chars")
		}
		ss, err := syncsafe.Encode(uint32(size))
		if err != nil {
			return nil, errors.Wrap(ErrOverflow, "frame too large")
		}
		msg, fmtb := flags.render()
		b := binutil.NewBuilder().WriteString(id).WriteBytes(ss).WriteByte(msg).WriteByte(fmtb)
		return b.Bytes().Bytes(), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
}
