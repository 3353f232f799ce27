package wire

import (
	"bytes"
	"testing"
)

func TestBufferRoundTripPrimitives(t *testing.T) {
	b := NewBuffer("test.primitives")
	b.WriteInt32(-42)
	b.WriteInt64(1 << 40)
	b.WriteFloat64(3.14159)
	b.WriteBool(true)
	b.WriteByte(0xAB)

	b.Reset()
	if v, err := b.ReadInt32(); err != nil || v != -42 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := b.ReadInt64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := b.ReadFloat64(); err != nil || v != 3.14159 {
		t.Fatalf("ReadFloat64 = %v, %v", v, err)
	}
	if v, err := b.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := b.ReadByte(); err != nil || v != 0xAB {
		t.Fatalf("ReadByte = %x, %v", v, err)
	}
}

func TestBufferRoundTripLengthPrefixed(t *testing.T) {
	b := NewBuffer("test.lp")
	b.WriteString("hello, tree search")
	b.WriteBytes([]byte{1, 2, 3, 4})
	b.WriteInt32Slice([]int32{10, -20, 30})
	b.WriteFloat64Slice([]float64{1.5, -2.5})

	b.Reset()
	if s, err := b.ReadString(); err != nil || s != "hello, tree search" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if p, err := b.ReadBytes(); err != nil || !bytes.Equal(p, []byte{1, 2, 3, 4}) {
		t.Fatalf("ReadBytes = %v, %v", p, err)
	}
	ints, err := b.ReadInt32Slice()
	if err != nil || len(ints) != 3 || ints[1] != -20 {
		t.Fatalf("ReadInt32Slice = %v, %v", ints, err)
	}
	floats, err := b.ReadFloat64Slice()
	if err != nil || len(floats) != 2 || floats[1] != -2.5 {
		t.Fatalf("ReadFloat64Slice = %v, %v", floats, err)
	}
}

func TestBufferDecodeOverrun(t *testing.T) {
	b := NewBuffer("test.short")
	b.WriteInt32(7)

	b.Reset()
	if _, err := b.ReadInt64(); err != ErrDecodeOverrun {
		t.Fatalf("expected ErrDecodeOverrun, got %v", err)
	}
}

func TestBufferTruncatedLengthPrefix(t *testing.T) {
	// A length prefix claiming more bytes than were actually written
	// must fail cleanly rather than read past the end of the buffer.
	b := NewBuffer("test.truncated")
	b.WriteInt32(100)
	b.WriteByte('x')

	b.Reset()
	if _, err := b.ReadBytes(); err != ErrDecodeOverrun {
		t.Fatalf("expected ErrDecodeOverrun, got %v", err)
	}
}

func TestBufferGrowPreservesPriorWrites(t *testing.T) {
	b := NewBuffer("test.grow")
	var want []byte
	for i := 0; i < 2000; i++ {
		b.WriteByte(byte(i))
		want = append(want, byte(i))
	}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("buffer contents diverged after growth")
	}
}

func TestBufferDecodeIndependentOfMultipleReads(t *testing.T) {
	b := NewBuffer("test.replay")
	b.WriteInt32(99)

	b.Reset()
	first, _ := b.ReadInt32()
	b.Reset()
	second, _ := b.ReadInt32()
	if first != second {
		t.Fatalf("Reset should allow re-reading identical data: %d != %d", first, second)
	}
}
