package writer

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/duskforge/reghive/internal/format"
)

func buildImage(hiveBinsDataSize uint32, trailing int) []byte {
	b := make([]byte, format.HeaderSize+int(hiveBinsDataSize)+trailing)
	copy(b, format.REGFSignature)
	binary.LittleEndian.PutUint32(b[format.REGFDataSizeOffset:], hiveBinsDataSize)
	return b
}

func TestSerializeTrimsToDeclaredSize(t *testing.T) {
	image := buildImage(0x2000, 512) // extra bytes past the declared hive-bins size
	out, err := Serialize(image, time.Time{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := format.HeaderSize + 0x2000
	if len(out) != want {
		t.Errorf("got length %d want %d", len(out), want)
	}
}

func TestSerializeRecomputesChecksum(t *testing.T) {
	image := buildImage(0x1000, 0)
	out, err := Serialize(image, time.Time{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	ok, err := format.VerifyHeaderChecksum(out)
	if err != nil {
		t.Fatalf("VerifyHeaderChecksum: %v", err)
	}
	if !ok {
		t.Errorf("expected checksum to validate after Serialize")
	}
}

func TestSerializeLeavesTimestampUntouchedWhenZero(t *testing.T) {
	image := buildImage(0x1000, 0)
	binary.LittleEndian.PutUint64(image[format.REGFTimeStampOffset:], 0x1122334455667788)

	out, err := Serialize(image, time.Time{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got := binary.LittleEndian.Uint64(out[format.REGFTimeStampOffset:])
	if got != 0x1122334455667788 {
		t.Errorf("timestamp changed: got %x", got)
	}
}

func TestSerializeStampsProvidedTimestamp(t *testing.T) {
	image := buildImage(0x1000, 0)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out, err := Serialize(image, ts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got := binary.LittleEndian.Uint64(out[format.REGFTimeStampOffset:])
	if got == 0x1122334455667788 || got == 0 {
		t.Errorf("expected timestamp field to be stamped, got %x", got)
	}
}

func TestSerializeRejectsUndersizedImage(t *testing.T) {
	image := buildImage(0x1000, 0)
	truncated := image[:format.HeaderSize+0x500] // shorter than declared hive-bins size
	_, err := Serialize(truncated, time.Time{})
	if err == nil {
		t.Fatalf("expected error for undersized image")
	}
}

func TestSerializeDoesNotMutateInput(t *testing.T) {
	image := buildImage(0x1000, 0)
	original := append([]byte(nil), image...)

	_, err := Serialize(image, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(image) != string(original) {
		t.Errorf("Serialize mutated its input image")
	}
}
