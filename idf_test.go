package tiff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortEntry(tag FieldTagType, v uint64) DirectoryEntry {
	return NewEntry(tag, TypeShort, 1, ScalarUint(v))
}

func TestNewFileDirectoryValidation(t *testing.T) {
	_, err := NewFileDirectory([]DirectoryEntry{shortEntry(TagPlanarConfiguration, 3)}, nil)
	assert.IsType(t, FormatError(""), err)

	for _, code := range []uint64{2, 3, 4, 6, 7, 99} {
		_, err := NewFileDirectory([]DirectoryEntry{shortEntry(TagCompression, code)}, nil)
		assert.IsType(t, FormatError(""), err, "compression %d", code)
	}

	d, err := NewFileDirectory([]DirectoryEntry{shortEntry(TagCompression, CompressionPackBits)}, nil)
	require.NoError(t, err)
	assert.IsType(t, PackBitsCompression{}, d.Decoder())

	_, err = NewFileDirectory(nil, nil, WithCache(CachePolicy(9)))
	assert.Error(t, err)
}

func TestFileDirectoryDynamicResolution(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	assert.IsType(t, RawCompression{}, d.Decoder())
	assert.True(t, d.IsTiled())

	require.NoError(t, d.SetCompression(CompressionDeflate))
	assert.IsType(t, DeflateCompression{}, d.Decoder())
	assert.Equal(t, CompressionDeflate, d.Compression())

	// Invalid values leave the directory untouched.
	assert.Error(t, d.SetCompression(CompressionJPEG))
	assert.Equal(t, CompressionDeflate, d.Compression())
	assert.IsType(t, DeflateCompression{}, d.Decoder())
	assert.Error(t, d.AddEntry(NewEntry(TagCompression, TypeASCII, 2, ScalarString("8"))), "wrong shape")
	assert.Equal(t, CompressionDeflate, d.Compression())

	require.NoError(t, d.SetPlanarConfiguration(PlanarConfigurationPlanar))
	assert.Equal(t, PlanarConfigurationPlanar, d.PlanarConfiguration())
	assert.Error(t, d.SetPlanarConfiguration(0))
	assert.Equal(t, PlanarConfigurationPlanar, d.PlanarConfiguration())

	d.SetRowsPerStrip(16)
	assert.False(t, d.IsTiled())
}

func TestFileDirectoryRollbackRestoresOrder(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	d.SetImageWidth(10)
	require.NoError(t, d.SetCompression(CompressionNone))
	d.SetImageHeight(20)

	require.Error(t, d.AddEntry(shortEntry(TagCompression, 42)))

	var tags []FieldTagType
	for _, e := range d.Entries() {
		tags = append(tags, e.Tag)
	}
	assert.Equal(t, []FieldTagType{TagImageWidth, TagCompression, TagImageLength}, tags)
}

func TestFileDirectoryEntriesOrder(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	d.SetImageWidth(1)
	d.SetImageHeight(2)
	d.SetImageWidth(3) // moves to the end

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, TagImageLength, entries[0].Tag)
	assert.Equal(t, TagImageWidth, entries[1].Tag)
	assert.Equal(t, 2, d.NumEntries())
}

func TestFileDirectoryAccessors(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)

	_, err = d.ImageWidth()
	var missing MissingEntryError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, TagImageWidth, FieldTagType(missing))

	samples, err := d.SamplesPerPixel()
	require.NoError(t, err)
	assert.Equal(t, 1, samples)
	assert.Equal(t, CompressionNone, d.Compression())
	assert.Equal(t, PlanarConfigurationChunky, d.PlanarConfiguration())

	d.SetImageWidth(70000)
	e, _ := d.Entry(TagImageWidth)
	assert.Equal(t, TypeLong, e.Type, "values above 65535 need a LONG")
	d.SetImageHeight(30)
	e, _ = d.Entry(TagImageLength)
	assert.Equal(t, TypeShort, e.Type)

	d.SetBitsPerSample(8, 16, 8)
	bits, err := d.BitsPerSample()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 16, 8}, bits)
	maxBits, err := d.MaxBitsPerSample()
	require.NoError(t, err)
	assert.Equal(t, 16, maxBits)

	d.SetSampleFormat(SampleFormatUnsignedInt, SampleFormatFloat)
	maxFormat, err := d.MaxSampleFormat()
	require.NoError(t, err)
	assert.Equal(t, SampleFormatFloat, maxFormat)

	d.SetSampleFormat(SampleFormatSignedInt)
	ft, err := d.FieldTypeForSample(2)
	require.NoError(t, err)
	assert.Equal(t, TypeSByte, ft, "short lists fall back to their first value")

	d.SetRowsPerStrip(5)
	tw, err := d.TileWidth()
	require.NoError(t, err)
	assert.Equal(t, 70000, tw)
	th, err := d.TileHeight()
	require.NoError(t, err)
	assert.Equal(t, 5, th)

	d.SetXResolution(300, 1)
	d.SetYResolution(150, 2)
	d.SetResolutionUnit(ResolutionUnitInch)
	y, err := d.YResolution()
	require.NoError(t, err)
	assert.Equal(t, []uint64{150, 2}, y)
	unit, err := d.ResolutionUnit()
	require.NoError(t, err)
	assert.Equal(t, ResolutionUnitInch, unit)

	d.SetPhotometricInterpretation(PhotometricPalette)
	d.SetColorMap(1, 2, 3)
	cm, err := d.ColorMap()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, cm)

	d.SetStringEntry(TagSoftware, "tiffany")
	s, err := d.StringEntry(TagSoftware)
	require.NoError(t, err)
	assert.Equal(t, "tiffany", s)
	e, _ = d.Entry(TagSoftware)
	assert.Equal(t, uint32(8), e.Count)

	_, err = d.StringEntry(TagImageWidth)
	assert.Error(t, err)
}

func TestFileDirectoryTiles(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	d.SetTileWidth(16)
	d.SetTileHeight(8)
	d.SetTileOffsets(100)
	d.SetTileByteCounts(128)

	assert.True(t, d.IsTiled())
	tw, err := d.TileWidth()
	require.NoError(t, err)
	assert.Equal(t, 16, tw)

	offsets, err := d.TileOffsets()
	require.NoError(t, err)
	assert.Equal(t, []uint64{100}, offsets)
	e, _ := d.Entry(TagTileOffsets)
	assert.True(t, e.Value.IsList())

	counts, err := d.TileByteCounts()
	require.NoError(t, err)
	assert.Equal(t, []uint64{128}, counts)
}

func TestFileDirectorySizes(t *testing.T) {
	d, err := NewFileDirectory(nil, nil)
	require.NoError(t, err)
	d.SetImageWidth(1)                 // inline
	d.SetXResolution(72, 1)            // 8 bytes outside
	d.SetStripOffsets(1, 2, 3)         // 12 bytes outside
	d.SetStringEntry(TagSoftware, "a") // inline

	assert.Equal(t, 2+4*12+4, d.Size())
	assert.Equal(t, 2+4*12+4+8+12, d.SizeWithValues())

	img := NewImage(d, d)
	assert.Equal(t, HeaderBytes+2*d.Size(), img.SizeHeaderAndDirectories())
	assert.Equal(t, HeaderBytes+2*d.SizeWithValues(), img.SizeHeaderAndDirectoriesWithValues())
	assert.Same(t, d, img.Directory())
	assert.Nil(t, NewImage().Directory())
}

func TestFileDirectorySetCachePurges(t *testing.T) {
	d, err := NewFileDirectory(nil, nil, WithCache(CacheFull))
	require.NoError(t, err)
	d.cache.add(0, []byte{1})

	require.NoError(t, d.SetCache(CacheLRU, 8))
	assert.Equal(t, CacheLRU, d.CachePolicy())
	_, ok := d.cache.get(0)
	assert.False(t, ok)

	d.cache.add(0, []byte{1})
	d.SetImageWidth(4)
	_, ok = d.cache.get(0)
	assert.False(t, ok, "entry mutations drop cached blocks")
}
