package tiff

import (
	"fmt"
)

// A FormatError reports that the input is not a valid TIFF image.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("tiff: invalid format: %s", string(e))
}

// An UnsupportedError reports that the input uses a valid but
// unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("tiff: unsupported feature: %s", string(e))
}

// An InternalError reports that an internal error was encountered.
// It always denotes a logic bug in the codec, never bad input.
type InternalError string

func (e InternalError) Error() string {
	return fmt.Sprintf("tiff: internal error: %s", string(e))
}

// A RangeError reports an offset, coordinate, window or sample index
// outside of the addressable range.
type RangeError string

func (e RangeError) Error() string {
	return fmt.Sprintf("tiff: out of range: %s", string(e))
}

// A MissingEntryError reports that a directory entry required by the
// requested operation is absent.
type MissingEntryError FieldTagType

func (e MissingEntryError) Error() string {
	return fmt.Sprintf("tiff: missing entry: %s", FieldTagType(e))
}

// minInt returns the smaller of x or y.
func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

// maxInt returns the larger of x or y.
func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}

// ceilDiv returns ceil(a / b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
