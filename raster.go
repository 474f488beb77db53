package tiff

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// RasterOptions selects what a raster read returns. The zero value reads
// every sample of the whole image into per sample buffers.
type RasterOptions struct {
	// Window restricts the read to a sub-rectangle. nil is the whole image.
	Window *ImageWindow
	// Samples lists the sample indices to read. nil reads every sample.
	Samples []int
	// SampleValues and InterleaveValues select the storage forms of the
	// result. When both are false, SampleValues is used.
	SampleValues     bool
	InterleaveValues bool
}

// geometry is the block layout of a directory.
type geometry struct {
	width, height          int
	tileWidth, tileHeight  int
	tilesPerRow, tilesDown int
}

func (d *FileDirectory) geometry() (g geometry, err error) {
	if g.width, err = d.ImageWidth(); err != nil {
		return
	}
	if g.height, err = d.ImageHeight(); err != nil {
		return
	}
	if g.tileWidth, err = d.TileWidth(); err != nil {
		return
	}
	if g.tileHeight, err = d.TileHeight(); err != nil {
		return
	}
	if g.tileWidth <= 0 || g.tileHeight <= 0 {
		return g, FormatError(fmt.Sprintf("block size %dx%d", g.tileWidth, g.tileHeight))
	}
	g.tilesPerRow = ceilDiv(g.width, g.tileWidth)
	g.tilesDown = ceilDiv(g.height, g.tileHeight)
	return g, nil
}

// blockIndex returns the linear index of the block at tile (x, y) holding sample.
func (d *FileDirectory) blockIndex(g geometry, x, y, sample int) int {
	if d.planar == PlanarConfigurationPlanar {
		return sample*g.tilesPerRow*g.tilesDown + y*g.tilesPerRow + x
	}
	return y*g.tilesPerRow + x
}

// FieldTypeForSample resolves the field type of sample from the
// SampleFormat (unsigned when absent) and BitsPerSample entries. Short
// lists fall back to their first value.
func (d *FileDirectory) FieldTypeForSample(sample int) (FieldType, error) {
	format := SampleFormatUnsignedInt
	if d.has(TagSampleFormat) {
		formats, err := d.SampleFormat()
		if err != nil {
			return 0, err
		}
		if len(formats) > 0 {
			format = formats[0]
			if sample < len(formats) {
				format = formats[sample]
			}
		}
	}
	bits, err := d.sampleBits(sample)
	if err != nil {
		return 0, err
	}
	return FieldTypeForSample(format, bits)
}

func (d *FileDirectory) sampleBits(sample int) (int, error) {
	bits, err := d.BitsPerSample()
	if err != nil {
		return 0, err
	}
	if len(bits) == 0 {
		return 0, FormatError("empty BitsPerSample")
	}
	if sample < len(bits) {
		return bits[sample], nil
	}
	return bits[0], nil
}

// sampleByteSize returns the byte width of one sample.
func (d *FileDirectory) sampleByteSize(sample int) (int, error) {
	bits, err := d.sampleBits(sample)
	if err != nil {
		return 0, err
	}
	if bits%8 != 0 {
		return 0, UnsupportedError(fmt.Sprintf("sample bit-width of %d", bits))
	}
	return bits / 8, nil
}

// bytesPerPixel returns the byte size of a chunky pixel. Every sample must
// be byte aligned and of the same width.
func (d *FileDirectory) bytesPerPixel(samplesPerPixel int) (int, error) {
	first, err := d.sampleBits(0)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := 0; i < samplesPerPixel; i++ {
		bits, err := d.sampleBits(i)
		if err != nil {
			return 0, err
		}
		switch {
		case bits%8 != 0:
			return 0, UnsupportedError(fmt.Sprintf("sample bit-width of %d", bits))
		case bits != first:
			return 0, UnsupportedError(fmt.Sprintf("differing sample sizes in a pixel: sample 0 = %d, sample %d = %d", first, i, bits))
		}
		total += bits
	}
	return total / 8, nil
}

// block returns the decoded strip or tile at tile (x, y) holding sample.
func (d *FileDirectory) block(g geometry, x, y, sample int) ([]byte, error) {
	index := d.blockIndex(g, x, y, sample)
	if b, ok := d.cache.get(index); ok {
		return b, nil
	}
	if d.reader == nil {
		return nil, FormatError("directory has no source bytes")
	}

	var offsets, counts []uint64
	var err error
	if d.tiled {
		if offsets, err = d.TileOffsets(); err != nil {
			return nil, err
		}
		if counts, err = d.TileByteCounts(); err != nil {
			return nil, err
		}
	} else {
		if offsets, err = d.StripOffsets(); err != nil {
			return nil, err
		}
		if counts, err = d.StripByteCounts(); err != nil {
			return nil, err
		}
	}
	if index >= len(offsets) || index >= len(counts) {
		return nil, FormatError(fmt.Sprintf("block %d missing, %d offsets and %d byte counts", index, len(offsets), len(counts)))
	}

	raw, err := d.reader.ReadBytesAt(int(offsets[index]), int(counts[index]))
	if err != nil {
		return nil, errors.Wrapf(err, "block %d", index)
	}
	b, err := d.codec.Decode(raw, d.reader.Order())
	if err != nil {
		return nil, errors.Wrapf(err, "block %d", index)
	}
	d.logger.Debug("tiff: block decoded",
		slog.Int("index", index),
		slog.Int("raw", len(raw)),
		slog.Int("decoded", len(b)))
	d.cache.add(index, b)
	return b, nil
}

// plan validates the window and sample selection of a read.
func (d *FileDirectory) plan(opts RasterOptions) (g geometry, window ImageWindow, samples []int, err error) {
	if d.reader == nil {
		err = FormatError("directory has no source bytes")
		return
	}
	if g, err = d.geometry(); err != nil {
		return
	}
	window = FullWindow(g.width, g.height)
	if opts.Window != nil {
		window = *opts.Window
	}
	if err = window.validate(g.width, g.height); err != nil {
		return
	}
	samplesPerPixel, err := d.SamplesPerPixel()
	if err != nil {
		return
	}
	samples = opts.Samples
	if samples == nil {
		samples = make([]int, samplesPerPixel)
		for i := range samples {
			samples[i] = i
		}
	}
	for _, s := range samples {
		if s < 0 || s >= samplesPerPixel {
			err = RangeError(fmt.Sprintf("sample %d, samples per pixel %d", s, samplesPerPixel))
			return
		}
	}
	return
}

// readRaster walks every block covering window and hands each value of the
// requested samples to set, with window relative coordinates.
func (d *FileDirectory) readRaster(g geometry, window ImageWindow, samples []int, set func(sampleIndex, x, y int, v float64)) error {
	samplesPerPixel, err := d.SamplesPerPixel()
	if err != nil {
		return err
	}

	fieldTypes := make([]FieldType, len(samples))
	srcOffsets := make([]int, len(samples))
	pixelBytes := make([]int, len(samples))
	for i, s := range samples {
		if fieldTypes[i], err = d.FieldTypeForSample(s); err != nil {
			return err
		}
		if d.planar == PlanarConfigurationPlanar {
			if pixelBytes[i], err = d.sampleByteSize(s); err != nil {
				return err
			}
			continue
		}
		if pixelBytes[i], err = d.bytesPerPixel(samplesPerPixel); err != nil {
			return err
		}
		for j := 0; j < s; j++ {
			n, err := d.sampleByteSize(j)
			if err != nil {
				return err
			}
			srcOffsets[i] += n
		}
	}

	minXTile := window.MinX / g.tileWidth
	maxXTile := ceilDiv(window.MaxX, g.tileWidth)
	minYTile := window.MinY / g.tileHeight
	maxYTile := ceilDiv(window.MaxY, g.tileHeight)

	for yTile := minYTile; yTile < maxYTile; yTile++ {
		for xTile := minXTile; xTile < maxXTile; xTile++ {
			firstLine := yTile * g.tileHeight
			firstCol := xTile * g.tileWidth
			y0 := maxInt(0, window.MinY-firstLine)
			y1 := minInt(g.tileHeight, window.MaxY-firstLine)
			x0 := maxInt(0, window.MinX-firstCol)
			x1 := minInt(g.tileWidth, window.MaxX-firstCol)

			for i, s := range samples {
				b, err := d.block(g, xTile, yTile, s)
				if err != nil {
					return err
				}
				br := NewByteReader(b, d.reader.Order())
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						offset := (y*g.tileWidth+x)*pixelBytes[i] + srcOffsets[i]
						v, err := readSample(br, fieldTypes[i], offset)
						if err != nil {
							return errors.Wrapf(err, "sample %d at (%d,%d)", s, firstCol+x, firstLine+y)
						}
						set(i, firstCol+x-window.MinX, firstLine+y-window.MinY, v)
					}
				}
			}
		}
	}
	return nil
}

// ReadRasters reads every sample of the whole image into per sample buffers.
func (d *FileDirectory) ReadRasters() (*Rasters, error) {
	return d.ReadRastersWith(RasterOptions{SampleValues: true})
}

// ReadInterleavedRasters reads every sample of the whole image into an
// interleaved buffer.
func (d *FileDirectory) ReadInterleavedRasters() (*Rasters, error) {
	return d.ReadRastersWith(RasterOptions{InterleaveValues: true})
}

// ReadRastersWith reads the window and samples selected by opts.
func (d *FileDirectory) ReadRastersWith(opts RasterOptions) (*Rasters, error) {
	g, window, samples, err := d.plan(opts)
	if err != nil {
		return nil, err
	}
	fieldTypes := make([]FieldType, len(samples))
	for i, s := range samples {
		if fieldTypes[i], err = d.FieldTypeForSample(s); err != nil {
			return nil, err
		}
	}
	sampleValues := opts.SampleValues || !opts.InterleaveValues
	rasters, err := NewRasters(window.Width(), window.Height(), fieldTypes, d.reader.Order(), sampleValues, opts.InterleaveValues)
	if err != nil {
		return nil, err
	}
	if err := d.readRaster(g, window, samples, rasters.setPixelSample); err != nil {
		return nil, err
	}
	return rasters, nil
}

// ReadTypedRasters reads the window and samples selected by opts into
// natively typed buffers. The storage form flags of opts are ignored.
func (d *FileDirectory) ReadTypedRasters(opts RasterOptions) (*TypedRasters, error) {
	g, window, samples, err := d.plan(opts)
	if err != nil {
		return nil, err
	}
	fieldTypes := make([]FieldType, len(samples))
	for i, s := range samples {
		if fieldTypes[i], err = d.FieldTypeForSample(s); err != nil {
			return nil, err
		}
	}
	typed, err := NewTypedRasters(window.Width(), window.Height(), fieldTypes)
	if err != nil {
		return nil, err
	}
	width := window.Width()
	err = d.readRaster(g, window, samples, func(i, x, y int, v float64) {
		typed.Samples[i].set(y*width+x, v)
	})
	if err != nil {
		return nil, err
	}
	return typed, nil
}
