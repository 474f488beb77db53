package tiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// A Writer serializes an Image whose directories carry WriteRasters.
// Only striped directories can be written.
type Writer struct {
	opts options
}

// NewWriter returns a writer. The byte order is set with WithByteOrder.
func NewWriter(opts ...Option) *Writer {
	return &Writer{opts: newOptions(opts)}
}

// WriteFile writes img to the file at path.
func WriteFile(path string, img *Image, opts ...Option) error {
	b, err := NewWriter(opts...).WriteTiff(img)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "tiff: write file")
}

// WriteTo writes img to w.
func (w *Writer) WriteTo(out io.Writer, img *Image) (int64, error) {
	b, err := w.WriteTiff(img)
	if err != nil {
		return 0, err
	}
	n, err := out.Write(b)
	return int64(n), errors.Wrap(err, "tiff: write")
}

// WriteTiff returns the bytes of img. The strip offset and byte count
// entries of every directory are replaced by the written values.
func (w *Writer) WriteTiff(img *Image) ([]byte, error) {
	if img == nil || len(img.Directories) == 0 {
		return nil, FormatError("image has no directory")
	}
	bw := NewByteWriter(w.opts.order)

	// Byte order (bytes 0-1), identifier (bytes 2-3) and the first IFD
	// offset (bytes 4-7), right after the header.
	if w.opts.order == binary.LittleEndian {
		bw.WriteString(ByteOrderLittleEndian)
	} else {
		bw.WriteString(ByteOrderBigEndian)
	}
	bw.WriteUint16(FileIdentifier)
	bw.WriteUint32(HeaderBytes)

	for i, d := range img.Directories {
		last := i+1 == len(img.Directories)
		if err := w.writeDirectory(bw, d, last); err != nil {
			return nil, errors.Wrapf(err, "directory %d", i)
		}
	}
	return bw.Bytes(), nil
}

func (w *Writer) writeDirectory(bw *ByteWriter, d *FileDirectory, last bool) error {
	// Placeholder strip entries so the sizes come out right.
	strips, err := populateStripEntries(d)
	if err != nil {
		return err
	}

	start := bw.Size()
	afterDirectory := start + d.Size()
	afterValues := start + d.SizeWithValues()

	// The raster pass comes first: it sets the real strip entries.
	rasterBytes, err := w.writeStripRasters(d, strips, afterValues)
	if err != nil {
		return err
	}

	entries := d.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Tag < entries[j].Tag })

	bw.WriteUint16(uint16(len(entries)))

	var external []DirectoryEntry
	var externalOffsets []int
	next := afterDirectory
	for _, e := range entries {
		bw.WriteUint16(e.Tag.ID())
		bw.WriteUint16(uint16(e.Type))
		bw.WriteUint32(e.Count)

		size := e.SizeOfValues()
		if size > inlineValueBytes {
			external = append(external, e)
			externalOffsets = append(externalOffsets, next)
			bw.WriteUint32(uint32(next))
			next += size
			continue
		}
		// Inline, left aligned.
		if err := writeValues(bw, e); err != nil {
			return err
		}
		bw.WriteBytes(make([]byte, inlineValueBytes-size))
	}

	if last {
		bw.WriteUint32(0)
	} else {
		bw.WriteUint32(uint32(afterValues + len(rasterBytes)))
	}

	for i, e := range external {
		if externalOffsets[i] != bw.Size() {
			return InternalError(fmt.Sprintf("%s values at %d, expected at %d", e.Tag, bw.Size(), externalOffsets[i]))
		}
		if err := writeValues(bw, e); err != nil {
			return err
		}
	}
	if bw.Size() != afterValues {
		return InternalError(fmt.Sprintf("directory ends at %d, expected %d", bw.Size(), afterValues))
	}

	bw.WriteBytes(rasterBytes)
	return nil
}

// populateStripEntries sets zeroed strip offsets and byte counts and
// returns the number of strips.
func populateStripEntries(d *FileDirectory) (int, error) {
	if d.WriteRasters == nil {
		return 0, FormatError("write rasters are required to write a directory")
	}
	if d.IsTiled() {
		return 0, UnsupportedError("tiled images writing")
	}
	rowsPerStrip, err := d.RowsPerStrip()
	if err != nil {
		return 0, err
	}
	if rowsPerStrip <= 0 {
		return 0, FormatError(fmt.Sprintf("rows per strip %d", rowsPerStrip))
	}
	height, err := d.ImageHeight()
	if err != nil {
		return 0, err
	}
	strips := ceilDiv(height, rowsPerStrip)
	if d.PlanarConfiguration() == PlanarConfigurationPlanar {
		samplesPerPixel, err := d.SamplesPerPixel()
		if err != nil {
			return 0, err
		}
		strips *= samplesPerPixel
	}
	zeros := make([]uint64, strips)
	d.SetStripOffsets(zeros...)
	d.SetStripByteCounts(zeros...)
	return strips, nil
}

// writeStripRasters encodes every strip, records their offsets starting
// at offset and their byte counts on d, and returns the strip bytes.
func (w *Writer) writeStripRasters(d *FileDirectory, strips, offset int) ([]byte, error) {
	rasters := d.WriteRasters
	encoder := d.Decoder()
	order := w.opts.order

	rowsPerStrip, err := d.RowsPerStrip()
	if err != nil {
		return nil, err
	}
	height, err := d.ImageHeight()
	if err != nil {
		return nil, err
	}
	if height > rasters.Height() {
		return nil, FormatError(fmt.Sprintf("image height %d, rasters height %d", height, rasters.Height()))
	}
	width, err := d.ImageWidth()
	if err != nil {
		return nil, err
	}
	if width != rasters.Width() {
		return nil, FormatError(fmt.Sprintf("image width %d, rasters width %d", width, rasters.Width()))
	}
	samplesPerPixel, err := d.SamplesPerPixel()
	if err != nil {
		return nil, err
	}
	if samplesPerPixel != rasters.SamplesPerPixel() {
		return nil, FormatError(fmt.Sprintf("%d samples per pixel, rasters hold %d", samplesPerPixel, rasters.SamplesPerPixel()))
	}
	stripsPerSample := ceilDiv(height, rowsPerStrip)
	planar := d.PlanarConfiguration() == PlanarConfigurationPlanar

	out := NewByteWriter(order)
	offsets := make([]uint64, strips)
	counts := make([]uint64, strips)
	for strip := 0; strip < strips; strip++ {
		sample := -1
		startY := strip * rowsPerStrip
		if planar {
			sample = strip / stripsPerSample
			startY = strip % stripsPerSample * rowsPerStrip
		}
		endY := minInt(startY+rowsPerStrip, height)

		sw := NewByteWriter(order)
		for y := startY; y < endY; y++ {
			var row []byte
			if planar {
				row, err = rasters.GetSampleRow(y, sample, order)
			} else {
				row, err = rasters.GetPixelRow(y, order)
			}
			if err != nil {
				return nil, err
			}
			if encoder.RowEncoding() {
				if row, err = encoder.Encode(row, order); err != nil {
					return nil, err
				}
			}
			sw.WriteBytes(row)
		}

		b := sw.Bytes()
		if !encoder.RowEncoding() {
			if b, err = encoder.Encode(b, order); err != nil {
				return nil, err
			}
		}
		out.WriteBytes(b)
		offsets[strip] = uint64(offset)
		counts[strip] = uint64(len(b))
		offset += len(b)

		w.opts.logger.Debug("tiff: strip written",
			slog.Int("index", strip),
			slog.Int("bytes", len(b)))
	}

	d.SetStripOffsets(offsets...)
	d.SetStripByteCounts(counts...)
	return out.Bytes(), nil
}

// writeValues writes the values of e and checks their byte size.
func writeValues(bw *ByteWriter, e DirectoryEntry) error {
	start := bw.Size()
	units := int(e.Count)
	if e.Type.IsRational() {
		units *= 2
	}

	switch e.Type {
	case TypeASCII:
		strs, err := e.Value.Texts()
		if err != nil {
			return errors.Wrap(err, e.Tag.Name())
		}
		// NUL terminated, then cut or padded to count.
		var ascii []byte
		for _, s := range strs {
			ascii = append(ascii, s...)
			ascii = append(ascii, 0)
		}
		if len(ascii) > int(e.Count) {
			ascii = ascii[:e.Count]
		}
		bw.WriteBytes(ascii)
		bw.WriteBytes(make([]byte, int(e.Count)-len(ascii)))

	case TypeByte, TypeUndefined, TypeShort, TypeLong, TypeRational:
		u, err := e.Value.uint64s()
		if err != nil {
			return errors.Wrap(err, e.Tag.Name())
		}
		if len(u) != units {
			return FormatError(fmt.Sprintf("%s holds %d values for a count of %d", e.Tag, len(u), e.Count))
		}
		for _, v := range u {
			switch e.Type {
			case TypeByte, TypeUndefined:
				bw.WriteUint8(uint8(v))
			case TypeShort:
				bw.WriteUint16(uint16(v))
			default:
				bw.WriteUint32(uint32(v))
			}
		}

	case TypeSByte, TypeSShort, TypeSLong, TypeSRational:
		s, err := e.Value.int64s()
		if err != nil {
			return errors.Wrap(err, e.Tag.Name())
		}
		if len(s) != units {
			return FormatError(fmt.Sprintf("%s holds %d values for a count of %d", e.Tag, len(s), e.Count))
		}
		for _, v := range s {
			switch e.Type {
			case TypeSByte:
				bw.WriteInt8(int8(v))
			case TypeSShort:
				bw.WriteInt16(int16(v))
			default:
				bw.WriteInt32(int32(v))
			}
		}

	case TypeFloat, TypeDouble:
		f, err := e.Value.float64s()
		if err != nil {
			return errors.Wrap(err, e.Tag.Name())
		}
		if len(f) != units {
			return FormatError(fmt.Sprintf("%s holds %d values for a count of %d", e.Tag, len(f), e.Count))
		}
		for _, v := range f {
			if e.Type == TypeFloat {
				bw.WriteFloat32(float32(v))
			} else {
				bw.WriteFloat64(v)
			}
		}

	default:
		return FormatError(fmt.Sprintf("%s has invalid field type %d", e.Tag, uint16(e.Type)))
	}

	if n := bw.Size() - start; n != e.SizeOfValues() {
		return InternalError(fmt.Sprintf("%s wrote %d bytes, expected %d", e.Tag, n, e.SizeOfValues()))
	}
	return nil
}

// NewWriteDirectory builds a striped directory describing rasters, ready
// to be written.
func NewWriteDirectory(rasters *Rasters, planarConfiguration int, opts ...Option) (*FileDirectory, error) {
	d, err := NewFileDirectory(nil, nil, opts...)
	if err != nil {
		return nil, err
	}
	d.SetImageWidth(rasters.Width())
	d.SetImageHeight(rasters.Height())
	d.SetBitsPerSample(rasters.BitsPerSample()...)
	d.SetSamplesPerPixel(rasters.SamplesPerPixel())
	d.SetSampleFormat(rasters.SampleFormat()...)
	if err := d.SetPlanarConfiguration(planarConfiguration); err != nil {
		return nil, err
	}
	d.SetRowsPerStrip(rasters.CalculateRowsPerStrip(planarConfiguration, DefaultMaxBytesPerStrip))
	if rasters.SamplesPerPixel() >= 3 {
		d.SetPhotometricInterpretation(PhotometricRGB)
	} else {
		d.SetPhotometricInterpretation(PhotometricBlackIsZero)
	}
	d.WriteRasters = rasters
	return d, nil
}
