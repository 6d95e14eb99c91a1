package mp4

import (
	"bytes"
	"testing"
)

func TestParseAudioSpecificConfig(t *testing.T) {
	// objectType=2 (AAC LC), freqIdx=4 (44100), channelConfig=2, 3 bits padding.
	asc := []byte{0x12, 0x10}
	rate, channels, err := ParseAudioSpecificConfig(asc)
	if err != nil {
		t.Fatalf("ParseAudioSpecificConfig returned error: %v", err)
	}
	if rate != 44100 {
		t.Errorf("sampleRate = %d, expected 44100", rate)
	}
	if channels != 2 {
		t.Errorf("channels = %d, expected 2", channels)
	}
}

func buildDescriptor(tag byte, body []byte) []byte {
	return append([]byte{tag, byte(len(body))}, body...)
}

func TestParseESDS(t *testing.T) {
	asc := []byte{0x12, 0x10}
	dsi := buildDescriptor(tagDecoderSpecificDescr, asc)

	dcdBody := append([]byte{0x40, 0x15}, make([]byte, 11)...) // objectType + streamType + bufferSizeDB(3) + maxBitrate(4) + avgBitrate(4)
	dcdBody = append(dcdBody, dsi...)
	dcd := buildDescriptor(tagDecoderConfigDescr, dcdBody)

	esBody := append([]byte{0, 0, 0}, dcd...) // ES_ID(2) + flags(1)
	esDescriptor := buildDescriptor(tagESDescriptor, esBody)

	payload := append(make([]byte, 4), esDescriptor...) // FullBox version+flags prefix

	got, err := ParseESDS(payload)
	if err != nil {
		t.Fatalf("ParseESDS returned error: %v", err)
	}
	if !bytes.Equal(got, asc) {
		t.Errorf("ParseESDS = %v, expected %v", got, asc)
	}

	rate, channels, err := ParseAudioSpecificConfig(got)
	if err != nil {
		t.Fatalf("ParseAudioSpecificConfig on extracted ASC returned error: %v", err)
	}
	if rate != 44100 || channels != 2 {
		t.Errorf("extracted ASC decoded to rate=%d channels=%d, expected 44100, 2", rate, channels)
	}
}

func TestParseALACMagicCookie(t *testing.T) {
	body := make([]byte, 24)
	body[3] = 0xA0 // frameLength low byte: 0x000000A0 = 160
	body[5] = 16   // bit depth
	body[9] = 2    // channels
	body[20] = 0
	body[21] = 0
	body[22] = 0xAC
	body[23] = 0x44 // sample rate 44100 = 0x0000AC44
	payload := append([]byte{0, 0, 0, 0}, body...)

	cookie, err := ParseALACMagicCookie(payload)
	if err != nil {
		t.Fatalf("ParseALACMagicCookie returned error: %v", err)
	}
	if cookie.BitDepth != 16 || cookie.Channels != 2 || cookie.SampleRate != 44100 {
		t.Errorf("cookie = %+v, expected BitDepth=16 Channels=2 SampleRate=44100", cookie)
	}
}

func TestParseDurationV0(t *testing.T) {
	payload := make([]byte, 20)
	// version 0: bytes 12-15 timescale, 16-19 duration.
	payload[15] = 44 // timescale low byte... construct exact value below
	be32Put := func(b []byte, v uint32) {
		b[0] = byte(v >> 24)
		b[1] = byte(v >> 16)
		b[2] = byte(v >> 8)
		b[3] = byte(v)
	}
	be32Put(payload[12:16], 44100)
	be32Put(payload[16:20], 441000)

	d, err := ParseDuration(payload)
	if err != nil {
		t.Fatalf("ParseDuration returned error: %v", err)
	}
	if d != 10 {
		t.Errorf("duration = %v, expected 10", d)
	}
}

func TestParseDurationV1(t *testing.T) {
	payload := make([]byte, 36)
	payload[0] = 1 // version 1
	be64Put := func(b []byte, v uint64) {
		for i := 7; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
	}
	be64Put(payload[20:28], 48000)
	be64Put(payload[28:36], 960000)

	d, err := ParseDuration(payload)
	if err != nil {
		t.Fatalf("ParseDuration returned error: %v", err)
	}
	if d != 20 {
		t.Errorf("duration = %v, expected 20", d)
	}
}
