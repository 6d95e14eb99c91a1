package id3v2

import (
	"github.com/pkg/errors"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
	"github.com/jianyuyanyu/TagLibSharp2-sub005/syncsafe"
)

// Version identifies the ID3v2 major version.
type Version byte

const (
	Version2 Version = 2
	Version3 Version = 3
	Version4 Version = 4
)

// Header is the 10-byte ID3v2 tag header.
type Header struct {
	Version           Version
	Revision          byte
	Unsynchronisation bool
	ExtendedHeader    bool
	Experimental      bool
	FooterPresent     bool // only legal when Version == Version4
	Size              uint32 // syncsafe 28-bit size, excludes header/footer
}

// Footer is the 10-byte ID3v2.4 tag footer. Structurally identical to the
// header except for its magic ("3DI" instead of "ID3").
type Footer struct {
	Header
}

const headerSize = 10

// ParseHeader reads the 10-byte ID3v2 header from the start of b.
func ParseHeader(b binutil.Buffer) (*Header, error) {
	if b.Len() < headerSize {
		return nil, errors.Wrap(ErrInsufficientData, "id3v2 header")
	}
	raw := b.Bytes()
	if string(raw[0:3]) != "ID3" {
		return nil, errors.Wrap(ErrBadMagic, "expected \"ID3\"")
	}
	vers := Version(raw[3])
	switch vers {
	case Version2, Version3, Version4:
	default:
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", raw[3])
	}

	size, err := syncsafe.Decode(raw[6:10])
	if err != nil {
		return nil, errors.Wrap(ErrInvalidFieldValue, "header size is not syncsafe")
	}

	flags := raw[5]
	h := &Header{
		Version:           vers,
		Revision:          raw[4],
		Unsynchronisation: flags&0x80 != 0,
		ExtendedHeader:    flags&0x40 != 0,
		Experimental:      flags&0x20 != 0,
		FooterPresent:     flags&0x10 != 0,
		Size:              size,
	}
	if h.FooterPresent && h.Version != Version4 {
		return nil, errors.Wrap(ErrInvalidFieldValue, "footer flag set on non-v2.4 tag")
	}
	return h, nil
}

// Render writes the header's 10 bytes.
func (h *Header) Render() ([]byte, error) {
	sz, err := syncsafe.Encode(h.Size)
	if err != nil {
		return nil, errors.Wrap(ErrOverflow, "tag size does not fit in 28 bits")
	}
	var flags byte
	if h.Unsynchronisation {
		flags |= 0x80
	}
	if h.ExtendedHeader {
		flags |= 0x40
	}
	if h.Experimental {
		flags |= 0x20
	}
	if h.FooterPresent {
		if h.Version != Version4 {
			return nil, errors.Wrap(ErrInvalidFieldValue, "footer only valid for v2.4")
		}
		flags |= 0x10
	}
	out := make([]byte, 0, headerSize)
	out = append(out, 'I', 'D', '3', byte(h.Version), h.Revision, flags)
	out = append(out, sz...)
	return out, nil
}

// TotalSize returns the total on-disk size of the tag: header + Size +
// (footer, if present).
func (h *Header) TotalSize() int {
	n := headerSize + int(h.Size)
	if h.FooterPresent {
		n += headerSize
	}
	return n
}

// ParseFooter reads a 10-byte ID3v2.4 footer.
func ParseFooter(b binutil.Buffer) (*Footer, error) {
	if b.Len() < headerSize {
		return nil, errors.Wrap(ErrInsufficientData, "id3v2 footer")
	}
	raw := b.Bytes()
	if string(raw[0:3]) != "3DI" {
		return nil, errors.Wrap(ErrBadMagic, "expected \"3DI\"")
	}
	// Reuse header parsing by swapping the magic back; identical layout.
	fixed := append([]byte{'I', 'D', '3'}, raw[3:10]...)
	h, err := ParseHeader(binutil.New(fixed))
	if err != nil {
		return nil, err
	}
	return &Footer{Header: *h}, nil
}

// Render writes the footer's 10 bytes (magic "3DI" followed by the same
// layout as the header).
func (f *Footer) Render() ([]byte, error) {
	b, err := f.Header.Render()
	if err != nil {
		return nil, err
	}
	b[0], b[1], b[2] = '3', 'D', 'I'
	return b, nil
}

// ExtendedHeader holds the (informational) contents of a parsed extended
// header. The codec parses past it but does not act on update/restriction
// markers or verify the CRC, per spec.md §4.E.
type ExtendedHeader struct {
	Size          int
	IsUpdate      bool
	HasCRC        bool
	CRC           uint64
	HasRestrictions bool
	Restrictions  byte
	PaddingSize   uint32 // v2.3 only
}

// parseExtendedHeaderV3 parses a v2.3 extended header starting at offset 0
// of b, returning the header and the number of bytes consumed.
func parseExtendedHeaderV3(b binutil.Buffer) (*ExtendedHeader, int, error) {
	size, err := b.Uint32BE(0)
	if err != nil {
		return nil, 0, errors.Wrap(ErrInsufficientData, "v2.3 extended header size")
	}
	if b.Len() < 4+int(size) {
		return nil, 0, errors.Wrap(ErrInsufficientData, "v2.3 extended header body")
	}
	flags, err := b.Uint16BE(4)
	if err != nil {
		return nil, 0, err
	}
	padding, err := b.Uint32BE(6)
	if err != nil {
		return nil, 0, err
	}
	eh := &ExtendedHeader{
		Size:        int(size),
		HasCRC:      flags&0x8000 != 0,
		PaddingSize: padding,
	}
	consumed := 10
	if eh.HasCRC {
		crc, err := b.Uint32BE(10)
		if err != nil {
			return nil, 0, err
		}
		eh.CRC = uint64(crc)
		consumed += 4
	}
	return eh, consumed, nil
}

// parseExtendedHeaderV4 parses a v2.4 extended header starting at offset 0
// of b, returning the header and the number of bytes consumed (equal to
// the syncsafe size field, which includes itself).
func parseExtendedHeaderV4(b binutil.Buffer) (*ExtendedHeader, int, error) {
	size, err := b.Syncsafe28(0)
	if err != nil {
		return nil, 0, errors.Wrap(ErrInvalidFieldValue, "v2.4 extended header size not syncsafe")
	}
	if b.Len() < int(size) || size < 6 {
		return nil, 0, errors.Wrap(ErrInsufficientData, "v2.4 extended header body")
	}
	numFlagBytes, err := b.At(4)
	if err != nil {
		return nil, 0, err
	}
	eh := &ExtendedHeader{Size: int(size)}
	off := 5
	if numFlagBytes >= 1 {
		flagByte, err := b.At(off)
		if err != nil {
			return nil, 0, err
		}
		off++
		if flagByte&0x40 != 0 {
			eh.IsUpdate = true
		}
		if flagByte&0x20 != 0 {
			eh.HasCRC = true
			// one length byte (=5) then 5 bytes of syncsafe CRC data (35 bits)
			if off < b.Len() {
				off++ // length byte
			}
			if off+5 <= b.Len() {
				var crc uint64
				for i := 0; i < 5; i++ {
					x := b.Bytes()[off+i]
					crc = crc<<7 | uint64(x&0x7F)
				}
				eh.CRC = crc
				off += 5
			}
		}
		if flagByte&0x10 != 0 {
			eh.HasRestrictions = true
			if off < b.Len() {
				off++ // length byte (=1)
			}
			if off < b.Len() {
				eh.Restrictions = b.Bytes()[off]
				off++
			}
		}
	}
	return eh, int(size), nil
}
