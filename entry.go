package tiff

import (
	"fmt"
	"strings"
)

type valueKind uint8

const (
	kindNone valueKind = iota
	kindUnsigned
	kindSigned
	kindFloat
	kindString
)

func (k valueKind) String() string {
	switch k {
	case kindUnsigned:
		return "unsigned"
	case kindSigned:
		return "signed"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	}
	return "empty"
}

// A Value is the decoded value of a directory entry: either a single scalar
// or an ordered list of scalars of one kind (unsigned, signed, float or string).
// Rational types are lists holding numerator/denominator pairs.
type Value struct {
	kind   valueKind
	list   bool
	uints  []uint64
	ints   []int64
	floats []float64
	strs   []string
}

func ScalarUint(v uint64) Value {
	return Value{kind: kindUnsigned, uints: []uint64{v}}
}

func ListUint(v ...uint64) Value {
	return Value{kind: kindUnsigned, list: true, uints: v}
}

func ScalarInt(v int64) Value {
	return Value{kind: kindSigned, ints: []int64{v}}
}

func ListInt(v ...int64) Value {
	return Value{kind: kindSigned, list: true, ints: v}
}

func ScalarFloat(v float64) Value {
	return Value{kind: kindFloat, floats: []float64{v}}
}

func ListFloat(v ...float64) Value {
	return Value{kind: kindFloat, list: true, floats: v}
}

func ScalarString(v string) Value {
	return Value{kind: kindString, strs: []string{v}}
}

func ListString(v ...string) Value {
	return Value{kind: kindString, list: true, strs: v}
}

// IsList reports whether the value is an ordered list rather than a scalar.
func (v Value) IsList() bool {
	return v.list
}

// Len returns the number of scalars held.
func (v Value) Len() int {
	switch v.kind {
	case kindUnsigned:
		return len(v.uints)
	case kindSigned:
		return len(v.ints)
	case kindFloat:
		return len(v.floats)
	case kindString:
		return len(v.strs)
	}
	return 0
}

func (v Value) shapeError(want valueKind, list bool) error {
	shape := "scalar"
	if list {
		shape = "list"
	}
	have := "scalar"
	if v.list {
		have = "list"
	}
	return FormatError(fmt.Sprintf("%s %s value read as %s %s", v.kind, have, want, shape))
}

func (v Value) scalar(want valueKind) error {
	if v.kind != want || v.list || v.Len() != 1 {
		return v.shapeError(want, false)
	}
	return nil
}

// Uint returns the unsigned scalar.
func (v Value) Uint() (uint64, error) {
	if err := v.scalar(kindUnsigned); err != nil {
		return 0, err
	}
	return v.uints[0], nil
}

// Uints returns the unsigned scalars. A scalar is returned as a one element list.
func (v Value) Uints() ([]uint64, error) {
	if v.kind != kindUnsigned {
		return nil, v.shapeError(kindUnsigned, true)
	}
	return v.uints, nil
}

// Int returns the signed scalar.
func (v Value) Int() (int64, error) {
	if err := v.scalar(kindSigned); err != nil {
		return 0, err
	}
	return v.ints[0], nil
}

// Ints returns the signed scalars. A scalar is returned as a one element list.
func (v Value) Ints() ([]int64, error) {
	if v.kind != kindSigned {
		return nil, v.shapeError(kindSigned, true)
	}
	return v.ints, nil
}

// Float returns the floating point scalar.
func (v Value) Float() (float64, error) {
	if err := v.scalar(kindFloat); err != nil {
		return 0, err
	}
	return v.floats[0], nil
}

// Floats returns the floating point scalars. A scalar is returned as a one element list.
func (v Value) Floats() ([]float64, error) {
	if v.kind != kindFloat {
		return nil, v.shapeError(kindFloat, true)
	}
	return v.floats, nil
}

// Text returns the string scalar.
func (v Value) Text() (string, error) {
	if err := v.scalar(kindString); err != nil {
		return "", err
	}
	return v.strs[0], nil
}

// Texts returns the string scalars. A scalar is returned as a one element list.
func (v Value) Texts() ([]string, error) {
	if v.kind != kindString {
		return nil, v.shapeError(kindString, true)
	}
	return v.strs, nil
}

// numberAt widens the numeric scalar at index i.
func (v Value) numberAt(i int) (float64, bool) {
	if i < 0 || i >= v.Len() {
		return 0, false
	}
	switch v.kind {
	case kindUnsigned:
		return float64(v.uints[i]), true
	case kindSigned:
		return float64(v.ints[i]), true
	case kindFloat:
		return v.floats[i], true
	}
	return 0, false
}

// uint64s converts any numeric kind for serialization.
func (v Value) uint64s() ([]uint64, error) {
	switch v.kind {
	case kindUnsigned:
		return v.uints, nil
	case kindSigned, kindFloat:
		u := make([]uint64, v.Len())
		for i := range u {
			f, _ := v.numberAt(i)
			u[i] = uint64(f)
		}
		return u, nil
	}
	return nil, v.shapeError(kindUnsigned, true)
}

// int64s converts any numeric kind for serialization.
func (v Value) int64s() ([]int64, error) {
	switch v.kind {
	case kindSigned:
		return v.ints, nil
	case kindUnsigned:
		s := make([]int64, len(v.uints))
		for i, u := range v.uints {
			s[i] = int64(u)
		}
		return s, nil
	case kindFloat:
		s := make([]int64, len(v.floats))
		for i, f := range v.floats {
			s[i] = int64(f)
		}
		return s, nil
	}
	return nil, v.shapeError(kindSigned, true)
}

// float64s converts any numeric kind for serialization.
func (v Value) float64s() ([]float64, error) {
	if v.kind == kindFloat {
		return v.floats, nil
	}
	if v.kind == kindString || v.kind == kindNone {
		return nil, v.shapeError(kindFloat, true)
	}
	f := make([]float64, v.Len())
	for i := range f {
		f[i], _ = v.numberAt(i)
	}
	return f, nil
}

func (v Value) String() string {
	var parts []string
	switch v.kind {
	case kindUnsigned:
		for _, u := range v.uints {
			parts = append(parts, fmt.Sprint(u))
		}
	case kindSigned:
		for _, i := range v.ints {
			parts = append(parts, fmt.Sprint(i))
		}
	case kindFloat:
		for _, f := range v.floats {
			parts = append(parts, fmt.Sprint(f))
		}
	case kindString:
		for _, s := range v.strs {
			parts = append(parts, fmt.Sprintf("%q", s))
		}
	}
	if !v.list && len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, " ") + "]"
}

//------------------------//
// DirectoryEntry         //
//------------------------//

// A DirectoryEntry is one tag/type/count/value record of a directory.
// Count is expressed in units of Type, not in bytes.
type DirectoryEntry struct {
	Tag   FieldTagType
	Type  FieldType
	Count uint32
	Value Value
}

// NewEntry builds an entry.
func NewEntry(tag FieldTagType, typ FieldType, count uint32, value Value) DirectoryEntry {
	return DirectoryEntry{
		Tag:   tag,
		Type:  typ,
		Count: count,
		Value: value,
	}
}

// SizeOfValues returns the byte size of the entry values.
func (e DirectoryEntry) SizeOfValues() int {
	return e.Type.Bytes() * int(e.Count)
}

// SizeWithValues returns the byte size of the entry plus its values when
// they do not fit in the entry itself.
func (e DirectoryEntry) SizeWithValues() int {
	size := IFDEntryBytes
	if sv := e.SizeOfValues(); sv > inlineValueBytes {
		size += sv
	}
	return size
}

func (e DirectoryEntry) String() string {
	return fmt.Sprintf("%s (%d) %s[%d]: %s", e.Tag.Name(), e.Tag.ID(), e.Type, e.Count, e.Value)
}
