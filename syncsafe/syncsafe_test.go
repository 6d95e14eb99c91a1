package syncsafe

import (
	"bytes"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		input  []byte
		output uint32
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00}, 0},
		{[]byte{0x00, 0x00, 0x00, 0x0A}, 10},
		{[]byte{0x00, 0x00, 0x02, 0x01}, 0x101},
		{[]byte{0x7F, 0x7F, 0x7F, 0x7F}, 0x0FFFFFFF},
	}
	for ii, tt := range tests {
		got, err := Decode(tt.input)
		if err != nil {
			t.Fatalf("[%d] Decode(%v) returned error: %v", ii, tt.input, err)
		}
		if got != tt.output {
			t.Errorf("[%d] Decode(%v) = %v, expected %v", ii, tt.input, got, tt.output)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte{0x80, 0x00, 0x00, 0x00}); err == nil {
		t.Errorf("Decode with MSB set should return an error")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 0x0FFFFFFF, 0x12345} {
		enc, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode(%v) returned error: %v", v, err)
		}
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(Encode(%v)) returned error: %v", v, err)
		}
		if got != v {
			t.Errorf("Decode(Encode(%v)) = %v, expected %v", v, got, v)
		}
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	if _, err := Encode(0x10000000); err == nil {
		t.Errorf("Encode(0x10000000) should return an error, value exceeds 28 bits")
	}
}

func TestUnsynchronizationRoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		{0x00},
		{0xFF, 0x00},
		{0xFF, 0xE0},
		{0x01, 0xFF, 0x00, 0x02},
		{0xFF, 0xFF, 0x00, 0x00},
	}
	for ii, tt := range tests {
		enc := EncodeUnsynchronized(tt)
		dec := DecodeUnsynchronized(enc)
		if !bytes.Equal(dec, tt) {
			t.Errorf("[%d] DecodeUnsynchronized(EncodeUnsynchronized(%v)) = %v, expected %v", ii, tt, dec, tt)
		}
	}
}

func TestEncodeUnsynchronizedStuffsFalseSync(t *testing.T) {
	enc := EncodeUnsynchronized([]byte{0xFF, 0xE0})
	want := []byte{0xFF, 0x00, 0xE0}
	if !bytes.Equal(enc, want) {
		t.Errorf("EncodeUnsynchronized([0xFF, 0xE0]) = %v, expected %v", enc, want)
	}
}
