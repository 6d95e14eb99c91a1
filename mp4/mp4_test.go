package mp4

import (
	"bytes"
	"testing"

	"github.com/jianyuyanyu/TagLibSharp2-sub005/binutil"
)

func buildMinimalTree() []Box {
	// spec.md §8 S5: moov > udta > meta (FullBox) > ilst > ©nam > data (type=1, "Song").
	dataPayload := binutil.NewBuilder().
		WriteUint32BE(1).
		WriteUint32BE(0).
		WriteBytes([]byte("Song")).
		Bytes().Bytes()
	nam := Box{Type: "\xa9nam", Children: []Box{{Type: "data", Payload: dataPayload}}}
	ilst := Box{Type: "ilst", Children: []Box{nam}}
	meta := Box{Type: "meta", Payload: make([]byte, 4), Children: []Box{ilst}}
	udta := Box{Type: "udta", Children: []Box{meta}}
	moov := Box{Type: "moov", Children: []Box{udta}}
	return []Box{
		{Type: "ftyp", Payload: []byte("M4A isomiso2")},
		moov,
		{Type: "free", Payload: []byte{}},
		{Type: "mdat", Payload: []byte("...audio bytes...")},
	}
}

func TestParseTreeAndGetItem(t *testing.T) {
	tree := buildMinimalTree()
	rendered, err := Render(tree)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	got, err := ParseTree(binutil.New(rendered))
	if err != nil {
		t.Fatalf("ParseTree returned error: %v", err)
	}

	ilst, ok := ILST(got)
	if !ok {
		t.Fatalf("ILST not found")
	}
	item, ok := GetItem(ilst, "\xa9nam")
	if !ok {
		t.Fatalf("title item not found")
	}
	if item.TypeCode != 1 || string(item.Data) != "Song" {
		t.Errorf("title item = %+v, expected type=1 data=\"Song\"", item)
	}
}

func TestRenderPreservesNonILSTTopLevelBoxes(t *testing.T) {
	tree := buildMinimalTree()
	original, err := Render(tree)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	parsed, err := ParseTree(binutil.New(original))
	if err != nil {
		t.Fatalf("ParseTree returned error: %v", err)
	}

	ilst, ok := ILST(parsed)
	if !ok {
		t.Fatalf("ILST not found")
	}
	ilst = SetItem(ilst, "\xa9ART", ItemValue{TypeCode: 1, Data: []byte("New Artist")})
	updated := SetILST(parsed, ilst)

	rerendered, err := Render(updated)
	if err != nil {
		t.Fatalf("Render after edit returned error: %v", err)
	}

	reparsed, err := ParseTree(binutil.New(rerendered))
	if err != nil {
		t.Fatalf("ParseTree after edit returned error: %v", err)
	}

	if reparsed[0].Type != "ftyp" || !bytes.Equal(reparsed[0].Payload, []byte("M4A isomiso2")) {
		t.Errorf("ftyp box not preserved byte-exact: %+v", reparsed[0])
	}
	if reparsed[len(reparsed)-1].Type != "mdat" || !bytes.Equal(reparsed[len(reparsed)-1].Payload, []byte("...audio bytes...")) {
		t.Errorf("mdat box not preserved byte-exact: %+v", reparsed[len(reparsed)-1])
	}

	newIlst, ok := ILST(reparsed)
	if !ok {
		t.Fatalf("ILST missing after edit")
	}
	titleItem, ok := GetItem(newIlst, "\xa9nam")
	if !ok || string(titleItem.Data) != "Song" {
		t.Errorf("title item lost after unrelated edit: %+v", titleItem)
	}
	artistItem, ok := GetItem(newIlst, "\xa9ART")
	if !ok || string(artistItem.Data) != "New Artist" {
		t.Errorf("artist item not applied: %+v", artistItem)
	}
}

func TestDecodeTrackOrDisc(t *testing.T) {
	data := EncodeTrackOrDisc(3, 12)
	index, total, err := DecodeTrackOrDisc(data)
	if err != nil {
		t.Fatalf("DecodeTrackOrDisc returned error: %v", err)
	}
	if index != 3 || total != 12 {
		t.Errorf("DecodeTrackOrDisc = (%d, %d), expected (3, 12)", index, total)
	}
}
