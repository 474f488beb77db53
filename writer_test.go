package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xtiff "golang.org/x/image/tiff"
)

func sampleValue(ft FieldType, s, x, y int) float64 {
	switch ft {
	case TypeByte:
		return float64((x + 7*y + s) % 256)
	case TypeSShort, TypeSLong:
		return float64(-x*y - s)
	case TypeFloat, TypeDouble:
		return float64(x)/4 + float64(y)
	}
	return float64(x + y + s)
}

func filledRasters(t testing.TB, width, height int, fieldTypes []FieldType) *Rasters {
	r, err := NewRasters(width, height, fieldTypes, binary.BigEndian, true, false)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for s, ft := range fieldTypes {
				require.NoError(t, r.SetPixelSample(s, x, y, sampleValue(ft, s, x, y)))
			}
		}
	}
	return r
}

func assertSameRasters(t *testing.T, want, got *Rasters) {
	t.Helper()
	require.Equal(t, want.Width(), got.Width())
	require.Equal(t, want.Height(), got.Height())
	require.Equal(t, want.FieldTypes(), got.FieldTypes())
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			w, _ := want.GetPixel(x, y)
			g, _ := got.GetPixel(x, y)
			require.Equal(t, w, g, "pixel (%d,%d)", x, y)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	layouts := map[int][]FieldType{
		// Chunky pixels need samples of one width.
		PlanarConfigurationChunky: {TypeSLong, TypeFloat, TypeLong},
		PlanarConfigurationPlanar: {TypeByte, TypeSShort, TypeDouble},
	}
	for _, compression := range []int{CompressionNone, CompressionDeflate} {
		for planar, fieldTypes := range layouts {
			for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
				name := fmt.Sprintf("compression=%d/planar=%d/%s", compression, planar, order)
				t.Run(name, func(t *testing.T) {
					rasters := filledRasters(t, 13, 7, fieldTypes)
					d, err := NewWriteDirectory(rasters, planar)
					require.NoError(t, err)
					d.SetRowsPerStrip(3)
					require.NoError(t, d.SetCompression(compression))
					d.SetStringEntry(TagImageDescription, "round trip")

					b, err := NewWriter(WithByteOrder(order)).WriteTiff(NewImage(d))
					require.NoError(t, err)

					img, err := ReadTiff(b)
					require.NoError(t, err)
					require.Len(t, img.Directories, 1)
					read := img.Directory()

					assert.Equal(t, compression, read.Compression())
					assert.Equal(t, planar, read.PlanarConfiguration())
					description, err := read.StringEntry(TagImageDescription)
					require.NoError(t, err)
					assert.Equal(t, "round trip", description)

					offsets, err := read.StripOffsets()
					require.NoError(t, err)
					strips := 3 // ceil(7 / 3)
					if planar == PlanarConfigurationPlanar {
						strips *= len(fieldTypes)
					}
					assert.Len(t, offsets, strips)

					// Entries are laid out in ascending tag order.
					entries := read.Entries()
					for i := 1; i < len(entries); i++ {
						assert.Less(t, entries[i-1].Tag, entries[i].Tag)
					}

					got, err := read.ReadRasters()
					require.NoError(t, err)
					assertSameRasters(t, rasters, got)
				})
			}
		}
	}
}

func TestWriteHeader(t *testing.T) {
	d, err := NewWriteDirectory(filledRasters(t, 2, 2, []FieldType{TypeByte}), PlanarConfigurationChunky)
	require.NoError(t, err)

	b, err := NewWriter(WithByteOrder(binary.LittleEndian)).WriteTiff(NewImage(d))
	require.NoError(t, err)
	assert.Equal(t, []byte{'I', 'I', 42, 0, 8, 0, 0, 0}, b[:8])

	b, err = NewWriter().WriteTiff(NewImage(d))
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 'M', 0, 42, 0, 0, 0, 8}, b[:8])
}

func TestWriteMultipleDirectories(t *testing.T) {
	first := filledRasters(t, 5, 4, []FieldType{TypeByte})
	second := filledRasters(t, 3, 9, []FieldType{TypeFloat, TypeFloat})

	d1, err := NewWriteDirectory(first, PlanarConfigurationChunky)
	require.NoError(t, err)
	d1.SetRowsPerStrip(1)
	d2, err := NewWriteDirectory(second, PlanarConfigurationPlanar)
	require.NoError(t, err)
	require.NoError(t, d2.SetCompression(CompressionPKZIPDeflate))

	var buf bytes.Buffer
	n, err := NewWriter().WriteTo(&buf, NewImage(d1, d2))
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	img, err := ReadTiff(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, img.Directories, 2)

	got, err := img.Directories[0].ReadRasters()
	require.NoError(t, err)
	assertSameRasters(t, first, got)

	got, err = img.Directories[1].ReadRasters()
	require.NoError(t, err)
	assertSameRasters(t, second, got)
}

func TestWriteFile(t *testing.T) {
	rasters := filledRasters(t, 4, 4, []FieldType{TypeShort})
	d, err := NewWriteDirectory(rasters, PlanarConfigurationChunky)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.tif")
	require.NoError(t, WriteFile(path, NewImage(d), WithByteOrder(binary.LittleEndian)))

	img, err := ReadFile(path)
	require.NoError(t, err)
	got, err := img.Directory().ReadRasters()
	require.NoError(t, err)
	assertSameRasters(t, rasters, got)
}

func TestWriteASCIICount(t *testing.T) {
	d, err := NewWriteDirectory(filledRasters(t, 1, 1, []FieldType{TypeByte}), PlanarConfigurationChunky)
	require.NoError(t, err)
	require.NoError(t, d.AddEntry(NewEntry(TagArtist, TypeASCII, 3, ScalarString("abcdef"))))
	require.NoError(t, d.AddEntry(NewEntry(TagMake, TypeASCII, 8, ListString("ab", "cd"))))

	b, err := NewWriter().WriteTiff(NewImage(d))
	require.NoError(t, err)
	img, err := ReadTiff(b)
	require.NoError(t, err)

	artist, err := img.Directory().StringEntry(TagArtist)
	require.NoError(t, err)
	assert.Equal(t, "abc", artist, "strings are cut to the entry count")

	e, _ := img.Directory().Entry(TagMake)
	texts, err := e.Value.Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "cd"}, texts, "NUL padding reads back as nothing")
	assert.Equal(t, uint32(8), e.Count)
}

func TestWriteErrors(t *testing.T) {
	rasters := filledRasters(t, 4, 4, []FieldType{TypeByte})

	_, err := NewWriter().WriteTiff(NewImage())
	assert.IsType(t, FormatError(""), err)

	bare, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	bare.SetRowsPerStrip(1)
	_, err = NewWriter().WriteTiff(NewImage(bare))
	assert.IsType(t, FormatError(""), errors.Cause(err), "no write rasters")

	tiled, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	tiled.WriteRasters = rasters
	_, err = NewWriter().WriteTiff(NewImage(tiled))
	assert.IsType(t, UnsupportedError(""), errors.Cause(err), "tiled")

	for _, compression := range []int{CompressionLZW, CompressionPackBits} {
		d, err := NewWriteDirectory(rasters, PlanarConfigurationChunky)
		require.NoError(t, err)
		require.NoError(t, d.SetCompression(compression))
		_, err = NewWriter().WriteTiff(NewImage(d))
		assert.IsType(t, UnsupportedError(""), errors.Cause(err), "compression %d", compression)
	}

	d, err := NewWriteDirectory(rasters, PlanarConfigurationChunky)
	require.NoError(t, err)
	require.NoError(t, d.AddEntry(NewEntry(TagXResolution, TypeRational, 2, ListUint(72, 1))))
	_, err = NewWriter().WriteTiff(NewImage(d))
	assert.IsType(t, FormatError(""), errors.Cause(err), "value count mismatch")

	narrow, err := NewWriteDirectory(rasters, PlanarConfigurationChunky)
	require.NoError(t, err)
	narrow.SetImageWidth(3)
	_, err = NewWriter().WriteTiff(NewImage(narrow))
	assert.IsType(t, FormatError(""), errors.Cause(err), "width mismatch")

	extra, err := NewWriteDirectory(rasters, PlanarConfigurationChunky)
	require.NoError(t, err)
	extra.SetSamplesPerPixel(2)
	_, err = NewWriter().WriteTiff(NewImage(extra))
	assert.IsType(t, FormatError(""), errors.Cause(err), "samples per pixel mismatch")
}

func TestWriteDecodesWithXImage(t *testing.T) {
	for _, compression := range []int{CompressionNone, CompressionDeflate} {
		gray := filledRasters(t, 9, 5, []FieldType{TypeByte})
		d, err := NewWriteDirectory(gray, PlanarConfigurationChunky)
		require.NoError(t, err)
		d.SetRowsPerStrip(2)
		require.NoError(t, d.SetCompression(compression))

		b, err := NewWriter(WithByteOrder(binary.LittleEndian)).WriteTiff(NewImage(d))
		require.NoError(t, err)

		m, err := xtiff.Decode(bytes.NewReader(b))
		require.NoError(t, err)
		g, ok := m.(*image.Gray)
		require.True(t, ok, "%T", m)
		for y := 0; y < 5; y++ {
			for x := 0; x < 9; x++ {
				want, _ := gray.GetFirstPixelSample(x, y)
				assert.Equal(t, uint8(want), g.GrayAt(x, y).Y)
			}
		}

		rgb := filledRasters(t, 6, 3, []FieldType{TypeByte, TypeByte, TypeByte})
		d, err = NewWriteDirectory(rgb, PlanarConfigurationChunky)
		require.NoError(t, err)
		require.NoError(t, d.SetCompression(compression))

		b, err = NewWriter().WriteTiff(NewImage(d))
		require.NoError(t, err)

		m, err = xtiff.Decode(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 6, 3), m.Bounds())
		for y := 0; y < 3; y++ {
			for x := 0; x < 6; x++ {
				pixel, _ := rgb.GetPixel(x, y)
				cr, cg, cb, _ := m.At(x, y).RGBA()
				assert.Equal(t, []uint32{uint32(pixel[0]), uint32(pixel[1]), uint32(pixel[2])}, []uint32{cr >> 8, cg >> 8, cb >> 8})
			}
		}
	}
}
