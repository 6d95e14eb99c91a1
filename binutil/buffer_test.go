package binutil

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	be := NewBuilder().WriteUint16BE(0xABCD).Bytes()
	if got, err := be.Uint16BE(0); err != nil || got != 0xABCD {
		t.Errorf("Uint16BE round trip = %#x, %v, expected 0xABCD, nil", got, err)
	}
	le := NewBuilder().WriteUint16LE(0xABCD).Bytes()
	if got, err := le.Uint16LE(0); err != nil || got != 0xABCD {
		t.Errorf("Uint16LE round trip = %#x, %v, expected 0xABCD, nil", got, err)
	}
}

func TestUint24RoundTrip(t *testing.T) {
	be := NewBuilder().WriteUint24BE(0x0A0B0C).Bytes()
	if got, err := be.Uint24BE(0); err != nil || got != 0x0A0B0C {
		t.Errorf("Uint24BE round trip = %#x, %v, expected 0x0A0B0C, nil", got, err)
	}
	le := NewBuilder().WriteUint24LE(0x0A0B0C).Bytes()
	if got, err := le.Uint24LE(0); err != nil || got != 0x0A0B0C {
		t.Errorf("Uint24LE round trip = %#x, %v, expected 0x0A0B0C, nil", got, err)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	be := NewBuilder().WriteUint32BE(0xDEADBEEF).Bytes()
	if got, err := be.Uint32BE(0); err != nil || got != 0xDEADBEEF {
		t.Errorf("Uint32BE round trip = %#x, %v, expected 0xDEADBEEF, nil", got, err)
	}
	le := NewBuilder().WriteUint32LE(0xDEADBEEF).Bytes()
	if got, err := le.Uint32LE(0); err != nil || got != 0xDEADBEEF {
		t.Errorf("Uint32LE round trip = %#x, %v, expected 0xDEADBEEF, nil", got, err)
	}
}

func TestUint64RoundTrip(t *testing.T) {
	be := NewBuilder().WriteUint64BE(0x0102030405060708).Bytes()
	if got, err := be.Uint64BE(0); err != nil || got != 0x0102030405060708 {
		t.Errorf("Uint64BE round trip = %#x, %v, expected 0x0102030405060708, nil", got, err)
	}
	le := NewBuilder().WriteUint64BE(0x0102030405060708).Bytes() // no WriteUint64LE exported, verify via reverse read
	if got, err := le.Uint64LE(0); err != nil || got != 0x0807060504030201 {
		t.Errorf("Uint64LE over a BE-written buffer = %#x, %v, expected the byte-reversed value", got, err)
	}
}

func TestSyncsafe28RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7F, 0x3FFF, 0x0FFFFFFF} {
		b := NewBuilder().WriteSyncsafe28(v).Bytes()
		got, err := b.Syncsafe28(0)
		if err != nil {
			t.Fatalf("Syncsafe28(%#x) returned error: %v", v, err)
		}
		if got != v {
			t.Errorf("Syncsafe28 round trip for %#x = %#x", v, got)
		}
	}
}

func TestSyncsafe28RejectsMSBSet(t *testing.T) {
	b := New([]byte{0x80, 0x00, 0x00, 0x00})
	if _, err := b.Syncsafe28(0); err != ErrInvalidSyncsafe {
		t.Errorf("Syncsafe28 with MSB set = %v, expected ErrInvalidSyncsafe", err)
	}
}

func TestSliceSharesBackingArray(t *testing.T) {
	full := New([]byte{1, 2, 3, 4, 5})
	sub, err := full.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice returned error: %v", err)
	}
	if sub.Len() != 3 {
		t.Errorf("Slice length = %d, expected 3", sub.Len())
	}
	if sub.Bytes()[0] != 2 {
		t.Errorf("Slice()[0] = %d, expected 2", sub.Bytes()[0])
	}
}

func TestSliceOutOfRange(t *testing.T) {
	b := New([]byte{1, 2, 3})
	if _, err := b.Slice(2, 5); err != ErrInsufficientData {
		t.Errorf("out-of-range Slice = %v, expected ErrInsufficientData", err)
	}
}

func TestCRC32(t *testing.T) {
	b := New([]byte("123456789"))
	if got := b.CRC32(); got != 0xCBF43926 {
		t.Errorf("CRC32(\"123456789\") = %#x, expected 0xcbf43926", got)
	}
}
