package tiff

// Resources:
// https://www.itu.int/itudoc/itu-t/com16/tiff-fx/docs/tiff6.pdf (TIFF 6.0)
// https://www.awaresystems.be/imaging/tiff.html
// https://github.com/golang/image/tree/master/tiff

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// A Reader parses a complete TIFF file held in memory.
type Reader struct {
	r    *ByteReader
	opts options
}

// NewReader returns a reader over the bytes of a TIFF file.
func NewReader(b []byte, opts ...Option) *Reader {
	return &Reader{
		r:    NewByteReader(b, binary.BigEndian),
		opts: newOptions(opts),
	}
}

// ReadTiff parses a TIFF file held in b.
func ReadTiff(b []byte, opts ...Option) (*Image, error) {
	return NewReader(b, opts...).ReadTiff()
}

// ReadFile maps the file at path and parses it.
func ReadFile(path string, opts ...Option) (*Image, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "tiff: open")
	}
	defer ra.Close()

	b := make([]byte, ra.Len())
	if _, err = ra.ReadAt(b, 0); err != nil {
		return nil, errors.Wrapf(err, "tiff: read %s", path)
	}
	return ReadTiff(b, opts...)
}

//------------------------//
// Header parser          //
//------------------------//

// ReadTiff parses the header and the whole directory chain.
func (r *Reader) ReadTiff() (*Image, error) {
	order, err := r.r.ReadStringAt(0, 2)
	if err != nil {
		return nil, FormatError("missing header")
	}
	switch order {
	case ByteOrderLittleEndian:
		r.r.SetOrder(binary.LittleEndian)
	case ByteOrderBigEndian:
		r.r.SetOrder(binary.BigEndian)
	default:
		return nil, FormatError(fmt.Sprintf("invalid byte order %q", order))
	}
	if err = r.r.Seek(2); err != nil {
		return nil, err
	}

	identifier, err := r.r.ReadUint16()
	if err != nil {
		return nil, FormatError("missing file identifier")
	}
	if identifier != FileIdentifier {
		return nil, FormatError(fmt.Sprintf("invalid file identifier %d", identifier))
	}

	offset, err := r.r.ReadUint32()
	if err != nil {
		return nil, FormatError("missing first directory offset")
	}

	img := NewImage()
	visited := make(map[uint32]bool)
	for offset != 0 {
		if visited[offset] {
			return nil, FormatError(fmt.Sprintf("directory loop at offset %d", offset))
		}
		visited[offset] = true

		d, next, err := r.parseIFD(int(offset))
		if err != nil {
			return nil, errors.Wrapf(err, "directory %d", len(img.Directories))
		}
		r.opts.logger.Debug("tiff: directory parsed",
			slog.Int("index", len(img.Directories)),
			slog.Int("entries", d.NumEntries()),
			slog.Bool("tiled", d.IsTiled()),
			slog.Int("compression", d.Compression()))
		img.Add(d)
		offset = next
	}
	return img, nil
}

// parseIFD reads the directory at offset and returns it with the offset
// of the next one.
func (r *Reader) parseIFD(offset int) (*FileDirectory, uint32, error) {
	if err := r.r.Seek(offset); err != nil {
		return nil, 0, err
	}
	// The first two bytes contain the number of entries (12 bytes each).
	numEntries, err := r.r.ReadUint16()
	if err != nil {
		return nil, 0, err
	}

	entries := make([]DirectoryEntry, 0, numEntries)
	for i := 0; i < int(numEntries); i++ {
		e, err := r.parseEntry()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}

	next, err := r.r.ReadUint32()
	if err != nil {
		return nil, 0, err
	}

	d, err := NewFileDirectory(entries, r.r, WithCache(r.opts.cache), WithCacheSize(r.opts.cacheSize), WithLogger(r.opts.logger))
	if err != nil {
		return nil, 0, err
	}
	return d, next, nil
}

// parseEntry reads the entry at the cursor and leaves the cursor on the
// next entry.
func (r *Reader) parseEntry() (DirectoryEntry, error) {
	id, err := r.r.ReadUint16()
	if err != nil {
		return DirectoryEntry{}, err
	}
	tag, err := TagByID(id)
	if err != nil {
		return DirectoryEntry{}, err
	}
	code, err := r.r.ReadUint16()
	if err != nil {
		return DirectoryEntry{}, err
	}
	typ, err := FieldTypeFromCode(code)
	if err != nil {
		return DirectoryEntry{}, errors.Wrap(err, tag.Name())
	}
	count, err := r.r.ReadUint32()
	if err != nil {
		return DirectoryEntry{}, err
	}

	slot := r.r.Next()
	valueOffset := slot
	if typ.Bytes()*int(count) > inlineValueBytes {
		// The entry contains a pointer to the real value.
		o, err := r.r.ReadUint32()
		if err != nil {
			return DirectoryEntry{}, err
		}
		valueOffset = int(o)
	}

	value, err := r.readValues(tag, typ, count, valueOffset)
	if err != nil {
		return DirectoryEntry{}, errors.Wrap(err, tag.Name())
	}
	if err = r.r.Seek(slot + inlineValueBytes); err != nil {
		return DirectoryEntry{}, err
	}
	return NewEntry(tag, typ, count, value), nil
}

// readValues decodes count values of typ at offset. A single value
// collapses to a scalar unless the tag is an array tag or the type is
// rational.
func (r *Reader) readValues(tag FieldTagType, typ FieldType, count uint32, offset int) (Value, error) {
	n := int(count)
	size := typ.Bytes() * n
	if size < 0 || offset+size > r.r.Len() {
		return Value{}, RangeError(fmt.Sprintf("%d values of %s at %d, buffer length %d", count, typ, offset, r.r.Len()))
	}
	scalar := n == 1 && !tag.IsArray() && !typ.IsRational()

	switch typ {
	case TypeASCII:
		raw, err := r.r.ReadBytesAt(offset, n)
		if err != nil {
			return Value{}, err
		}
		if n == 1 {
			return ScalarString(asciiString(raw)), nil
		}
		return ListString(splitASCII(raw)...), nil

	case TypeByte, TypeUndefined, TypeShort, TypeLong, TypeRational:
		units := n
		if typ == TypeRational {
			units = 2 * n
		}
		v := make([]uint64, units)
		for i := range v {
			var err error
			switch typ {
			case TypeByte, TypeUndefined:
				var u uint8
				u, err = r.r.ReadUint8At(offset + i)
				v[i] = uint64(u)
			case TypeShort:
				var u uint16
				u, err = r.r.ReadUint16At(offset + 2*i)
				v[i] = uint64(u)
			default:
				var u uint32
				u, err = r.r.ReadUint32At(offset + 4*i)
				v[i] = uint64(u)
			}
			if err != nil {
				return Value{}, err
			}
		}
		if scalar {
			return ScalarUint(v[0]), nil
		}
		return ListUint(v...), nil

	case TypeSByte, TypeSShort, TypeSLong, TypeSRational:
		units := n
		if typ == TypeSRational {
			units = 2 * n
		}
		v := make([]int64, units)
		for i := range v {
			var err error
			switch typ {
			case TypeSByte:
				var s int8
				s, err = r.r.ReadInt8At(offset + i)
				v[i] = int64(s)
			case TypeSShort:
				var s int16
				s, err = r.r.ReadInt16At(offset + 2*i)
				v[i] = int64(s)
			default:
				var s int32
				s, err = r.r.ReadInt32At(offset + 4*i)
				v[i] = int64(s)
			}
			if err != nil {
				return Value{}, err
			}
		}
		if scalar {
			return ScalarInt(v[0]), nil
		}
		return ListInt(v...), nil

	case TypeFloat, TypeDouble:
		v := make([]float64, n)
		for i := range v {
			var err error
			if typ == TypeFloat {
				var f float32
				f, err = r.r.ReadFloat32At(offset + 4*i)
				v[i] = float64(f)
			} else {
				v[i], err = r.r.ReadFloat64At(offset + 8*i)
			}
			if err != nil {
				return Value{}, err
			}
		}
		if scalar {
			return ScalarFloat(v[0]), nil
		}
		return ListFloat(v...), nil
	}
	return Value{}, FormatError(fmt.Sprintf("unknown field type %d", uint16(typ)))
}

// splitASCII splits NUL separated strings, skipping the empty ones left by
// NUL padding. A trailing string missing its NUL terminator is kept rather
// than dropped.
func splitASCII(raw []byte) []string {
	var values []string
	start := 0
	for i, c := range raw {
		if c == 0 {
			if i > start {
				values = append(values, string(raw[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(raw) {
		values = append(values, string(raw[start:]))
	}
	return values
}
