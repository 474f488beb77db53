package tiff

import (
	"encoding/binary"
	"fmt"
	"math"
)

// A FieldType is the data type of a directory entry or of a pixel sample.
// Its value is the TIFF type code.
type FieldType uint16

// Data types (TIFF 6.0, p. 15-16).
const (
	TypeByte      FieldType = 1
	TypeASCII     FieldType = 2
	TypeShort     FieldType = 3
	TypeLong      FieldType = 4
	TypeRational  FieldType = 5
	TypeSByte     FieldType = 6
	TypeUndefined FieldType = 7
	TypeSShort    FieldType = 8
	TypeSLong     FieldType = 9
	TypeSRational FieldType = 10
	TypeFloat     FieldType = 11
	TypeDouble    FieldType = 12
)

// The length of one instance of each data type in bytes.
var lengths = [...]int{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

var typeNames = [...]string{
	"", "BYTE", "ASCII", "SHORT", "LONG", "RATIONAL", "SBYTE",
	"UNDEFINED", "SSHORT", "SLONG", "SRATIONAL", "FLOAT", "DOUBLE",
}

// FieldTypeFromCode returns the field type for a TIFF type code.
func FieldTypeFromCode(code uint16) (FieldType, error) {
	if code < uint16(TypeByte) || code > uint16(TypeDouble) {
		return 0, FormatError(fmt.Sprintf("unknown field type %d", code))
	}
	return FieldType(code), nil
}

// Bytes returns the width of one value of the type.
func (t FieldType) Bytes() int {
	if int(t) >= len(lengths) {
		return 0
	}
	return lengths[t]
}

// Bits returns the width of one value of the type in bits.
func (t FieldType) Bits() int {
	return t.Bytes() * 8
}

func (t FieldType) String() string {
	if t == 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("FieldType(%d)", uint16(t))
	}
	return typeNames[t]
}

// IsRational reports whether values of the type are numerator/denominator pairs.
func (t FieldType) IsRational() bool {
	return t == TypeRational || t == TypeSRational
}

// FieldTypeForSample resolves the pixel sample encoding for a SampleFormat
// value and a bit width.
func FieldTypeForSample(sampleFormat, bitsPerSample int) (FieldType, error) {
	switch sampleFormat {
	case SampleFormatUnsignedInt:
		switch bitsPerSample {
		case 8:
			return TypeByte, nil
		case 16:
			return TypeShort, nil
		case 32:
			return TypeLong, nil
		}
	case SampleFormatSignedInt:
		switch bitsPerSample {
		case 8:
			return TypeSByte, nil
		case 16:
			return TypeSShort, nil
		case 32:
			return TypeSLong, nil
		}
	case SampleFormatFloat:
		switch bitsPerSample {
		case 32:
			return TypeFloat, nil
		case 64:
			return TypeDouble, nil
		}
	}
	return 0, UnsupportedError(fmt.Sprintf("sample format %d with %d bits per sample", sampleFormat, bitsPerSample))
}

// SampleFormatOf returns the SampleFormat value matching a sample field type.
func SampleFormatOf(t FieldType) (int, error) {
	switch t {
	case TypeByte, TypeShort, TypeLong:
		return SampleFormatUnsignedInt, nil
	case TypeSByte, TypeSShort, TypeSLong:
		return SampleFormatSignedInt, nil
	case TypeFloat, TypeDouble:
		return SampleFormatFloat, nil
	}
	return 0, UnsupportedError(fmt.Sprintf("%s is not a sample type", t))
}

// readSample reads one pixel sample of type t at offset.
func readSample(r *ByteReader, t FieldType, offset int) (float64, error) {
	switch t {
	case TypeByte:
		v, err := r.ReadUint8At(offset)
		return float64(v), err
	case TypeSByte:
		v, err := r.ReadInt8At(offset)
		return float64(v), err
	case TypeShort:
		v, err := r.ReadUint16At(offset)
		return float64(v), err
	case TypeSShort:
		v, err := r.ReadInt16At(offset)
		return float64(v), err
	case TypeLong:
		v, err := r.ReadUint32At(offset)
		return float64(v), err
	case TypeSLong:
		v, err := r.ReadInt32At(offset)
		return float64(v), err
	case TypeFloat:
		v, err := r.ReadFloat32At(offset)
		return float64(v), err
	case TypeDouble:
		return r.ReadFloat64At(offset)
	}
	return 0, UnsupportedError(fmt.Sprintf("%s is not a sample type", t))
}

// putSample encodes v as type t into p, which must hold t.Bytes() bytes.
func putSample(p []byte, t FieldType, order binary.ByteOrder, v float64) error {
	switch t {
	case TypeByte:
		p[0] = uint8(v)
	case TypeSByte:
		p[0] = byte(int8(v))
	case TypeShort:
		order.PutUint16(p, uint16(v))
	case TypeSShort:
		order.PutUint16(p, uint16(int16(v)))
	case TypeLong:
		order.PutUint32(p, uint32(v))
	case TypeSLong:
		order.PutUint32(p, uint32(int32(v)))
	case TypeFloat:
		order.PutUint32(p, math.Float32bits(float32(v)))
	case TypeDouble:
		order.PutUint64(p, math.Float64bits(v))
	default:
		return UnsupportedError(fmt.Sprintf("%s is not a sample type", t))
	}
	return nil
}

// getSample decodes one value of type t from p.
func getSample(p []byte, t FieldType, order binary.ByteOrder) (float64, error) {
	switch t {
	case TypeByte:
		return float64(p[0]), nil
	case TypeSByte:
		return float64(int8(p[0])), nil
	case TypeShort:
		return float64(order.Uint16(p)), nil
	case TypeSShort:
		return float64(int16(order.Uint16(p))), nil
	case TypeLong:
		return float64(order.Uint32(p)), nil
	case TypeSLong:
		return float64(int32(order.Uint32(p))), nil
	case TypeFloat:
		return float64(math.Float32frombits(order.Uint32(p))), nil
	case TypeDouble:
		return math.Float64frombits(order.Uint64(p)), nil
	}
	return 0, UnsupportedError(fmt.Sprintf("%s is not a sample type", t))
}
