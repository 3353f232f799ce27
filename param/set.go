// Package param implements typed, keyed configuration: a parameter set
// with five value kinds, populated from a whitespace-tolerant text
// format, a CLI argument list, or direct programmatic sets, and
// packable into a wire.Buffer so a coordinator hub can broadcast the
// authoritative configuration to its workers.
package param

import (
	"errors"
	"fmt"

	"github.com/branchbound/parsearch/wire"
)

// Kind identifies which typed array a key's value lives in.
type Kind int

const (
	BoolKind Kind = iota
	IntKind
	RealKind
	StringKind
	StringArrayKind
)

// ErrUnknownKey is returned by a typed getter when the given name has no
// declared key. Setters never fail: they declare an unseen key.
var ErrUnknownKey = errors.New("param: unknown key")

// ErrWrongKind is returned when a typed getter is called against a key
// declared with a different Kind.
var ErrWrongKind = errors.New("param: key declared with a different kind")

type key struct {
	kind  Kind
	index int
}

// Set holds declared keyword-value pairs across five typed arrays, the
// Go shape of AlpsParameterSet<Par>/AlpsParameter: a key carries a type
// tag and an index into the type-specific array rather than being
// stored as a boxed any, keeping Pack/Unpack a simple fixed-shape wire
// round trip.
type Set struct {
	bools        []bool
	ints         []int64
	reals        []float64
	strings      []string
	stringArrays [][]string

	keys  map[string]key
	Quiet bool
}

// New creates an empty Set and applies opts in order.
func New(opts ...Option) (*Set, error) {
	s := &Set{keys: make(map[string]key)}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) declare(name string, kind Kind) int {
	if existing, ok := s.keys[name]; ok && existing.kind == kind {
		return existing.index
	}
	var idx int
	switch kind {
	case BoolKind:
		idx = len(s.bools)
		s.bools = append(s.bools, false)
	case IntKind:
		idx = len(s.ints)
		s.ints = append(s.ints, 0)
	case RealKind:
		idx = len(s.reals)
		s.reals = append(s.reals, 0)
	case StringKind:
		idx = len(s.strings)
		s.strings = append(s.strings, "")
	case StringArrayKind:
		idx = len(s.stringArrays)
		s.stringArrays = append(s.stringArrays, nil)
	}
	s.keys[name] = key{kind: kind, index: idx}
	return idx
}

func (s *Set) lookup(name string, want Kind) (key, error) {
	k, ok := s.keys[name]
	if !ok {
		return key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	if k.kind != want {
		return key{}, fmt.Errorf("%w: %q", ErrWrongKind, name)
	}
	return k, nil
}

// Bool returns the current value of a bool key.
func (s *Set) Bool(name string) (bool, error) {
	k, err := s.lookup(name, BoolKind)
	if err != nil {
		return false, err
	}
	return s.bools[k.index], nil
}

// SetBool assigns a bool key's value, declaring it first if unseen.
func (s *Set) SetBool(name string, v bool) {
	s.bools[s.declare(name, BoolKind)] = v
}

// Int returns the current value of an int key.
func (s *Set) Int(name string) (int64, error) {
	k, err := s.lookup(name, IntKind)
	if err != nil {
		return 0, err
	}
	return s.ints[k.index], nil
}

// SetInt assigns an int key's value, declaring it first if unseen.
func (s *Set) SetInt(name string, v int64) {
	s.ints[s.declare(name, IntKind)] = v
}

// Real returns the current value of a real (float64) key.
func (s *Set) Real(name string) (float64, error) {
	k, err := s.lookup(name, RealKind)
	if err != nil {
		return 0, err
	}
	return s.reals[k.index], nil
}

// SetReal assigns a real key's value, declaring it first if unseen.
func (s *Set) SetReal(name string, v float64) {
	s.reals[s.declare(name, RealKind)] = v
}

// String returns the current value of a string key.
func (s *Set) String(name string) (string, error) {
	k, err := s.lookup(name, StringKind)
	if err != nil {
		return "", err
	}
	return s.strings[k.index], nil
}

// SetString assigns a string key's value, declaring it first if unseen.
func (s *Set) SetString(name string, v string) {
	s.strings[s.declare(name, StringKind)] = v
}

// StringArray returns the current value of a string-array key.
func (s *Set) StringArray(name string) ([]string, error) {
	k, err := s.lookup(name, StringArrayKind)
	if err != nil {
		return nil, err
	}
	return s.stringArrays[k.index], nil
}

// SetStringArray assigns a string-array key's value, declaring it first
// if unseen.
func (s *Set) SetStringArray(name string, v []string) {
	s.stringArrays[s.declare(name, StringArrayKind)] = v
}

// Pack serializes the full set into a wire.Buffer carrying tag, for
// hub-to-worker broadcast.
func (s *Set) Pack(tag string) *wire.Buffer {
	buf := wire.NewBuffer(tag)
	buf.WriteBool(s.Quiet)

	names := make([]string, 0, len(s.keys))
	for name := range s.keys {
		names = append(names, name)
	}
	buf.WriteInt32(int32(len(names))) //nolint:gosec // parameter counts fit comfortably in int32

	for _, name := range names {
		k := s.keys[name]
		buf.WriteString(name)
		buf.WriteInt32(int32(k.kind)) //nolint:gosec // Kind is a small enum
		switch k.kind {
		case BoolKind:
			buf.WriteBool(s.bools[k.index])
		case IntKind:
			buf.WriteInt64(s.ints[k.index])
		case RealKind:
			buf.WriteFloat64(s.reals[k.index])
		case StringKind:
			buf.WriteString(s.strings[k.index])
		case StringArrayKind:
			arr := s.stringArrays[k.index]
			buf.WriteInt32(int32(len(arr))) //nolint:gosec // parameter array lengths fit in int32
			for _, v := range arr {
				buf.WriteString(v)
			}
		}
	}
	return buf
}

// Unpack replaces the set's contents with what buf encodes, as written
// by Pack.
func (s *Set) Unpack(buf *wire.Buffer) error {
	quiet, err := buf.ReadBool()
	if err != nil {
		return err
	}
	n, err := buf.ReadInt32()
	if err != nil {
		return err
	}

	next := &Set{keys: make(map[string]key), Quiet: quiet}
	for i := int32(0); i < n; i++ {
		name, err := buf.ReadString()
		if err != nil {
			return err
		}
		kindVal, err := buf.ReadInt32()
		if err != nil {
			return err
		}
		kind := Kind(kindVal)
		switch kind {
		case BoolKind:
			v, err := buf.ReadBool()
			if err != nil {
				return err
			}
			next.SetBool(name, v)
		case IntKind:
			v, err := buf.ReadInt64()
			if err != nil {
				return err
			}
			next.SetInt(name, v)
		case RealKind:
			v, err := buf.ReadFloat64()
			if err != nil {
				return err
			}
			next.SetReal(name, v)
		case StringKind:
			v, err := buf.ReadString()
			if err != nil {
				return err
			}
			next.SetString(name, v)
		case StringArrayKind:
			count, err := buf.ReadInt32()
			if err != nil {
				return err
			}
			arr := make([]string, count)
			for j := range arr {
				arr[j], err = buf.ReadString()
				if err != nil {
					return err
				}
			}
			next.SetStringArray(name, arr)
		}
	}

	*s = *next
	return nil
}
