package tiff

import "fmt"

// Number is the set of native sample element types.
type Number interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~float32 | ~float64
}

// A TypedSample is the strongly typed buffer of one sample. Its dynamic
// type is one of Sample[uint8], Sample[int8], Sample[uint16],
// Sample[int16], Sample[uint32], Sample[int32], Sample[float32] or
// Sample[float64].
type TypedSample interface {
	FieldType() FieldType
	Len() int
	// At widens the value at pixel index i.
	At(i int) float64

	set(i int, v float64)
}

// Sample is the buffer of one sample holding values of type T in row order.
type Sample[T Number] struct {
	Type FieldType
	Data []T
}

func (s *Sample[T]) FieldType() FieldType {
	return s.Type
}

func (s *Sample[T]) Len() int {
	return len(s.Data)
}

func (s *Sample[T]) At(i int) float64 {
	return float64(s.Data[i])
}

func (s *Sample[T]) set(i int, v float64) {
	s.Data[i] = T(v)
}

// newTypedSample allocates the typed buffer matching a sample field type.
func newTypedSample(ft FieldType, n int) (TypedSample, error) {
	switch ft {
	case TypeByte:
		return &Sample[uint8]{Type: ft, Data: make([]uint8, n)}, nil
	case TypeSByte:
		return &Sample[int8]{Type: ft, Data: make([]int8, n)}, nil
	case TypeShort:
		return &Sample[uint16]{Type: ft, Data: make([]uint16, n)}, nil
	case TypeSShort:
		return &Sample[int16]{Type: ft, Data: make([]int16, n)}, nil
	case TypeLong:
		return &Sample[uint32]{Type: ft, Data: make([]uint32, n)}, nil
	case TypeSLong:
		return &Sample[int32]{Type: ft, Data: make([]int32, n)}, nil
	case TypeFloat:
		return &Sample[float32]{Type: ft, Data: make([]float32, n)}, nil
	case TypeDouble:
		return &Sample[float64]{Type: ft, Data: make([]float64, n)}, nil
	}
	return nil, UnsupportedError(fmt.Sprintf("%s is not a sample type", ft))
}

// TypedRasters holds one typed buffer per requested sample.
type TypedRasters struct {
	Width   int
	Height  int
	Samples []TypedSample
}

// NewTypedRasters allocates zeroed typed buffers for fieldTypes.
func NewTypedRasters(width, height int, fieldTypes []FieldType) (*TypedRasters, error) {
	r := &TypedRasters{
		Width:   width,
		Height:  height,
		Samples: make([]TypedSample, len(fieldTypes)),
	}
	for i, ft := range fieldTypes {
		s, err := newTypedSample(ft, width*height)
		if err != nil {
			return nil, err
		}
		r.Samples[i] = s
	}
	return r, nil
}

// Value returns the widened value of sample at (x, y).
func (r *TypedRasters) Value(sample, x, y int) (float64, error) {
	if sample < 0 || sample >= len(r.Samples) {
		return 0, RangeError(fmt.Sprintf("sample %d, samples %d", sample, len(r.Samples)))
	}
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return 0, RangeError(fmt.Sprintf("pixel (%d,%d) outside of %dx%d raster", x, y, r.Width, r.Height))
	}
	return r.Samples[sample].At(y*r.Width + x), nil
}

// Data returns the data of s when it holds values of type T.
func Data[T Number](s TypedSample) ([]T, bool) {
	t, ok := s.(*Sample[T])
	if !ok {
		return nil, false
	}
	return t.Data, true
}
