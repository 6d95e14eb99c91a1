package textenc

import "testing"

func TestDecodeLatin1(t *testing.T) {
	got, err := Decode(Latin1, []byte("Hello"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got != "Hello" {
		t.Errorf("Decode(Latin1, \"Hello\") = %q, expected %q", got, "Hello")
	}
}

func TestDecodeUTF8(t *testing.T) {
	got, err := Decode(Utf8, []byte("Héllo"))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got != "Héllo" {
		t.Errorf("Decode(Utf8, ...) = %q, expected %q", got, "Héllo")
	}
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"little-endian BOM", []byte{0xFF, 0xFE, 'H', 0, 'i', 0}, "Hi"},
		{"big-endian BOM", []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, "Hi"},
		{"missing BOM treated as LE", []byte{'H', 0, 'i', 0}, "Hi"},
	}
	for _, tt := range tests {
		got, err := Decode(Utf16WithBom, tt.input)
		if err != nil {
			t.Fatalf("%s: Decode returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: Decode = %q, expected %q", tt.name, got, tt.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, enc := range []Encoding{Latin1, Utf16WithBom, Utf16BeNoBom, Utf8} {
		s := "Hello"
		encoded, err := Encode(enc, s)
		if err != nil {
			t.Fatalf("Encode(%v, ...) returned error: %v", enc, err)
		}
		got, err := Decode(enc, encoded)
		if err != nil {
			t.Fatalf("Decode(%v, ...) returned error: %v", enc, err)
		}
		if got != s {
			t.Errorf("round trip for encoding %v: got %q, expected %q", enc, got, s)
		}
	}
}

func TestSplitNullTerminated(t *testing.T) {
	head, tail, found := SplitNullTerminated(Latin1, []byte("abc\x00def"))
	if !found || string(head) != "abc" || string(tail) != "def" {
		t.Errorf("SplitNullTerminated(Latin1, ...) = %q, %q, %v", head, tail, found)
	}

	head, tail, found = SplitNullTerminated(Utf16WithBom, []byte{'a', 0, 0, 0, 'b', 0})
	if !found || len(head) != 2 || len(tail) != 2 {
		t.Errorf("SplitNullTerminated(Utf16WithBom, ...) = %v, %v, %v", head, tail, found)
	}
}

func TestDecodeInvalidEncoding(t *testing.T) {
	if _, err := Decode(Encoding(99), []byte("x")); err != ErrInvalidEncoding {
		t.Errorf("Decode with invalid encoding byte = %v, expected ErrInvalidEncoding", err)
	}
}
