// Package wire provides the length-prefixed, typed, cursor-driven byte
// buffer used to ship search nodes, models, and solutions both in memory
// and over the wire between cooperating processes.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrDecodeOverrun is returned when a read would advance the cursor past
// the number of bytes actually written to the buffer.
var ErrDecodeOverrun = errors.New("wire: decode overrun")

// growSlack is the extra capacity reserved on every grow, matching the
// spec's auto-grow policy: 2*(current+needed) + 4096.
const growSlack = 4096

// Buffer is a length-prefixed, cursor-driven byte container carrying a
// type tag plus payload. The tag is set once at construction and never
// rewritten. Writes append to the end; reads advance an independent
// cursor from the start, so a buffer can be written once and decoded
// repeatedly from a fresh cursor.
type Buffer struct {
	tag    string
	data   []byte
	size   int // bytes actually written
	cursor int // next read position
}

// NewBuffer creates an empty, writable Buffer carrying the given type tag.
func NewBuffer(tag string) *Buffer {
	return &Buffer{tag: tag}
}

// NewBufferFromBytes wraps an already-encoded payload for decoding. The
// cursor starts at zero and size is the full length of data.
func NewBufferFromBytes(tag string, data []byte) *Buffer {
	return &Buffer{tag: tag, data: data, size: len(data)}
}

// Tag returns the buffer's type tag.
func (b *Buffer) Tag() string { return b.tag }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.size }

// Bytes returns the written portion of the buffer, [0:Len()).
func (b *Buffer) Bytes() []byte { return b.data[:b.size] }

// Reset rewinds the read cursor to the start without discarding written
// data, allowing the same buffer to be decoded more than once.
func (b *Buffer) Reset() { b.cursor = 0 }

// grow ensures at least n additional bytes of capacity beyond size,
// reallocating per the spec's policy when short.
func (b *Buffer) grow(n int) {
	if cap(b.data)-b.size >= n {
		return
	}
	newCap := 2*(b.size+n) + growSlack
	next := make([]byte, newCap)
	copy(next, b.data[:b.size])
	b.data = next
}

func (b *Buffer) append(p []byte) {
	b.grow(len(p))
	b.data = b.data[:b.size+len(p)]
	copy(b.data[b.size:], p)
	b.size += len(p)
}

// WriteByte appends a single raw byte.
func (b *Buffer) WriteByte(v byte) {
	b.append([]byte{v})
}

// WriteBool appends a single raw byte, 1 for true, 0 for false.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

// WriteInt32 appends a fixed-size, big-endian int32.
func (b *Buffer) WriteInt32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.append(tmp[:])
}

// WriteInt64 appends a fixed-size, big-endian int64.
func (b *Buffer) WriteInt64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.append(tmp[:])
}

// WriteFloat64 appends a fixed-size, big-endian float64.
func (b *Buffer) WriteFloat64(v float64) {
	b.WriteInt64(int64(math.Float64bits(v))) //nolint:gosec // bit-pattern round trip, not a value conversion
}

// WriteBytes appends a 4-byte length prefix followed by p's contents.
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteInt32(int32(len(p))) //nolint:gosec // payload sizes fit well within int32 range for this protocol
	b.append(p)
}

// WriteString appends a 4-byte length prefix followed by s's bytes.
func (b *Buffer) WriteString(s string) {
	b.WriteBytes([]byte(s))
}

// WriteInt32Slice appends a length prefix then each element, fixed-width.
func (b *Buffer) WriteInt32Slice(v []int32) {
	b.WriteInt32(int32(len(v))) //nolint:gosec // slice lengths fit within int32 for this protocol
	for _, x := range v {
		b.WriteInt32(x)
	}
}

// WriteFloat64Slice appends a length prefix then each element, fixed-width.
func (b *Buffer) WriteFloat64Slice(v []float64) {
	b.WriteInt32(int32(len(v))) //nolint:gosec // slice lengths fit within int32 for this protocol
	for _, x := range v {
		b.WriteFloat64(x)
	}
}

func (b *Buffer) take(n int) ([]byte, error) {
	if b.cursor+n > b.size {
		return nil, ErrDecodeOverrun
	}
	p := b.data[b.cursor : b.cursor+n]
	b.cursor += n
	return p, nil
}

// ReadByte reads a single raw byte.
func (b *Buffer) ReadByte() (byte, error) {
	p, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads a single raw byte and interprets it as a boolean.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadInt32 reads a fixed-size, big-endian int32.
func (b *Buffer) ReadInt32() (int32, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil //nolint:gosec // inverse of WriteInt32
}

// ReadInt64 reads a fixed-size, big-endian int64.
func (b *Buffer) ReadInt64() (int64, error) {
	p, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p)), nil //nolint:gosec // inverse of WriteInt64
}

// ReadFloat64 reads a fixed-size, big-endian float64.
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil //nolint:gosec // inverse of WriteFloat64
}

// ReadBytes reads a length-prefixed byte slice.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadInt32()
	if err != nil {
		return nil, err
	}
	p, err := b.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// ReadString reads a length-prefixed string.
func (b *Buffer) ReadString() (string, error) {
	p, err := b.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadInt32Slice reads a length-prefixed slice of fixed-width int32s.
func (b *Buffer) ReadInt32Slice() ([]int32, error) {
	n, err := b.ReadInt32()
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		out[i], err = b.ReadInt32()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadFloat64Slice reads a length-prefixed slice of fixed-width float64s.
func (b *Buffer) ReadFloat64Slice() ([]float64, error) {
	n, err := b.ReadInt32()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i], err = b.ReadFloat64()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
