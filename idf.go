package tiff

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"
)

// A FileDirectory is one Image File Directory: its entries, the derived
// raster geometry and the codec used for its strips or tiles.
//
// Decoded blocks are cached according to the CachePolicy. A FileDirectory
// is not safe for concurrent use: raster reads mutate the cache.
type FileDirectory struct {
	order   []FieldTagType
	entries map[FieldTagType]DirectoryEntry

	reader      *ByteReader
	tiled       bool
	planar      int
	compression int
	codec       Compression
	policy      CachePolicy
	size        int
	cache       blockCache
	logger      *slog.Logger

	// WriteRasters holds the pixels serialized by the Writer.
	WriteRasters *Rasters
}

// NewFileDirectory builds a directory from parsed entries. reader holds the
// whole file and may be nil for directories only meant to be written.
// The planar configuration and the compression are validated immediately.
func NewFileDirectory(entries []DirectoryEntry, reader *ByteReader, opts ...Option) (*FileDirectory, error) {
	o := newOptions(opts)
	d := &FileDirectory{
		entries: make(map[FieldTagType]DirectoryEntry, len(entries)),
		reader:  reader,
		logger:  o.logger,
	}
	for _, e := range entries {
		d.put(e)
	}
	if err := d.SetCache(o.cache, o.cacheSize); err != nil {
		return nil, err
	}
	if err := d.resolve(); err != nil {
		return nil, err
	}
	return d, nil
}

// resolve derives the tiling, planar configuration and codec from the entries.
func (d *FileDirectory) resolve() error {
	_, hasRowsPerStrip := d.entries[TagRowsPerStrip]

	planar := PlanarConfigurationChunky
	if _, ok := d.entries[TagPlanarConfiguration]; ok {
		v, err := d.uintEntry(TagPlanarConfiguration)
		if err != nil {
			return err
		}
		planar = v
	}
	if planar != PlanarConfigurationChunky && planar != PlanarConfigurationPlanar {
		return FormatError(fmt.Sprintf("invalid planar configuration %d", planar))
	}

	compression := CompressionNone
	if _, ok := d.entries[TagCompression]; ok {
		v, err := d.uintEntry(TagCompression)
		if err != nil {
			return err
		}
		compression = v
	}
	codec, err := compressionFor(compression)
	if err != nil {
		return err
	}

	d.tiled = !hasRowsPerStrip
	d.planar = planar
	d.compression = compression
	d.codec = codec
	return nil
}

// SetCache switches the cache policy and drops every retained block.
// size is only used by CacheLRU.
func (d *FileDirectory) SetCache(policy CachePolicy, size int) error {
	c, err := newBlockCache(policy, size)
	if err != nil {
		return err
	}
	d.policy = policy
	d.size = size
	d.cache = c
	return nil
}

// CachePolicy returns the cache policy in use.
func (d *FileDirectory) CachePolicy() CachePolicy {
	return d.policy
}

// put stores e, replacing any entry with the same tag. The replaced entry
// moves to the end of the insertion order.
func (d *FileDirectory) put(e DirectoryEntry) {
	if _, ok := d.entries[e.Tag]; ok {
		d.remove(e.Tag)
	}
	d.entries[e.Tag] = e
	d.order = append(d.order, e.Tag)
	if d.cache != nil {
		d.cache.purge()
	}
}

func (d *FileDirectory) remove(tag FieldTagType) {
	delete(d.entries, tag)
	for i, t := range d.order {
		if t == tag {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// AddEntry adds or replaces an entry. When the entry makes the directory
// invalid (planar configuration, compression) the directory is left
// unchanged and the error is returned.
func (d *FileDirectory) AddEntry(e DirectoryEntry) error {
	previous, existed := d.entries[e.Tag]
	order := append([]FieldTagType(nil), d.order...)
	d.put(e)
	if err := d.resolve(); err != nil {
		if existed {
			d.entries[e.Tag] = previous
		} else {
			delete(d.entries, e.Tag)
		}
		d.order = order
		return err
	}
	return nil
}

// Entry returns the entry of tag.
func (d *FileDirectory) Entry(tag FieldTagType) (DirectoryEntry, bool) {
	e, ok := d.entries[tag]
	return e, ok
}

// Entries returns the entries in insertion order.
func (d *FileDirectory) Entries() []DirectoryEntry {
	entries := make([]DirectoryEntry, 0, len(d.order))
	for _, t := range d.order {
		entries = append(entries, d.entries[t])
	}
	return entries
}

func (d *FileDirectory) NumEntries() int {
	return len(d.order)
}

// IsTiled reports whether the directory stores tiles (no RowsPerStrip entry).
func (d *FileDirectory) IsTiled() bool {
	return d.tiled
}

// Decoder returns the resolved codec.
func (d *FileDirectory) Decoder() Compression {
	return d.codec
}

// Size returns the byte size of the directory without external values.
func (d *FileDirectory) Size() int {
	return IFDHeaderBytes + len(d.order)*IFDEntryBytes + IFDOffsetBytes
}

// SizeWithValues returns the byte size of the directory and its external values.
func (d *FileDirectory) SizeWithValues() int {
	size := IFDHeaderBytes + IFDOffsetBytes
	for _, e := range d.entries {
		size += e.SizeWithValues()
	}
	return size
}

//------------------------//
// Entry accessors        //
//------------------------//

func (d *FileDirectory) value(tag FieldTagType) (Value, error) {
	e, ok := d.entries[tag]
	if !ok {
		return Value{}, MissingEntryError(tag)
	}
	return e.Value, nil
}

// uintEntry returns the single unsigned value of tag.
func (d *FileDirectory) uintEntry(tag FieldTagType) (int, error) {
	v, err := d.value(tag)
	if err != nil {
		return 0, err
	}
	u, err := v.Uints()
	if err != nil {
		return 0, errors.Wrap(err, tag.Name())
	}
	if len(u) != 1 {
		return 0, FormatError(fmt.Sprintf("%s holds %d values, expected 1", tag, len(u)))
	}
	return int(u[0]), nil
}

func (d *FileDirectory) uintsEntry(tag FieldTagType) ([]uint64, error) {
	v, err := d.value(tag)
	if err != nil {
		return nil, err
	}
	u, err := v.Uints()
	if err != nil {
		return nil, errors.Wrap(err, tag.Name())
	}
	return u, nil
}

func (d *FileDirectory) intsEntry(tag FieldTagType) ([]int, error) {
	u, err := d.uintsEntry(tag)
	if err != nil {
		return nil, err
	}
	ints := make([]int, len(u))
	for i, v := range u {
		ints[i] = int(v)
	}
	return ints, nil
}

func (d *FileDirectory) maxEntry(tag FieldTagType) (int, error) {
	ints, err := d.intsEntry(tag)
	if err != nil {
		return 0, err
	}
	if len(ints) == 0 {
		return 0, FormatError(fmt.Sprintf("%s is empty", tag))
	}
	m := ints[0]
	for _, v := range ints[1:] {
		m = maxInt(m, v)
	}
	return m, nil
}

func (d *FileDirectory) ImageWidth() (int, error) {
	return d.uintEntry(TagImageWidth)
}

func (d *FileDirectory) ImageHeight() (int, error) {
	return d.uintEntry(TagImageLength)
}

func (d *FileDirectory) BitsPerSample() ([]int, error) {
	return d.intsEntry(TagBitsPerSample)
}

func (d *FileDirectory) MaxBitsPerSample() (int, error) {
	return d.maxEntry(TagBitsPerSample)
}

// SamplesPerPixel defaults to 1 when the entry is absent.
func (d *FileDirectory) SamplesPerPixel() (int, error) {
	if _, ok := d.entries[TagSamplesPerPixel]; !ok {
		return 1, nil
	}
	return d.uintEntry(TagSamplesPerPixel)
}

// Compression is the code of the resolved codec, CompressionNone when the
// entry is absent.
func (d *FileDirectory) Compression() int {
	return d.compression
}

func (d *FileDirectory) PhotometricInterpretation() (int, error) {
	return d.uintEntry(TagPhotometricInterpretation)
}

// PlanarConfiguration defaults to PlanarConfigurationChunky when the entry is absent.
func (d *FileDirectory) PlanarConfiguration() int {
	return d.planar
}

func (d *FileDirectory) RowsPerStrip() (int, error) {
	return d.uintEntry(TagRowsPerStrip)
}

func (d *FileDirectory) StripOffsets() ([]uint64, error) {
	return d.uintsEntry(TagStripOffsets)
}

func (d *FileDirectory) StripByteCounts() ([]uint64, error) {
	return d.uintsEntry(TagStripByteCounts)
}

// TileWidth is the image width for striped directories.
func (d *FileDirectory) TileWidth() (int, error) {
	if d.tiled {
		return d.uintEntry(TagTileWidth)
	}
	return d.ImageWidth()
}

// TileHeight is the rows per strip for striped directories.
func (d *FileDirectory) TileHeight() (int, error) {
	if d.tiled {
		return d.uintEntry(TagTileLength)
	}
	return d.RowsPerStrip()
}

func (d *FileDirectory) TileOffsets() ([]uint64, error) {
	return d.uintsEntry(TagTileOffsets)
}

func (d *FileDirectory) TileByteCounts() ([]uint64, error) {
	return d.uintsEntry(TagTileByteCounts)
}

func (d *FileDirectory) SampleFormat() ([]int, error) {
	return d.intsEntry(TagSampleFormat)
}

func (d *FileDirectory) MaxSampleFormat() (int, error) {
	return d.maxEntry(TagSampleFormat)
}

// XResolution returns the numerator/denominator pair.
func (d *FileDirectory) XResolution() ([]uint64, error) {
	return d.uintsEntry(TagXResolution)
}

// YResolution returns the numerator/denominator pair.
func (d *FileDirectory) YResolution() ([]uint64, error) {
	return d.uintsEntry(TagYResolution)
}

func (d *FileDirectory) ResolutionUnit() (int, error) {
	return d.uintEntry(TagResolutionUnit)
}

func (d *FileDirectory) ColorMap() ([]int, error) {
	return d.intsEntry(TagColorMap)
}

// StringEntry returns the first string of an ASCII entry.
func (d *FileDirectory) StringEntry(tag FieldTagType) (string, error) {
	v, err := d.value(tag)
	if err != nil {
		return "", err
	}
	s, err := v.Texts()
	if err != nil {
		return "", errors.Wrap(err, tag.Name())
	}
	if len(s) == 0 {
		return "", nil
	}
	return s[0], nil
}

//------------------------//
// Entry setters          //
//------------------------//

// setUint stores a single unsigned value as SHORT or LONG.
func (d *FileDirectory) setUint(tag FieldTagType, v int) {
	typ := TypeShort
	if v > math.MaxUint16 {
		typ = TypeLong
	}
	d.setUints(tag, typ, uint64(v))
}

func (d *FileDirectory) setUints(tag FieldTagType, typ FieldType, v ...uint64) {
	value := ListUint(v...)
	if len(v) == 1 && !tag.IsArray() {
		value = ScalarUint(v[0])
	}
	d.put(NewEntry(tag, typ, uint32(len(v)), value))
	d.tiled = !d.has(TagRowsPerStrip)
}

func (d *FileDirectory) setInts(tag FieldTagType, typ FieldType, v []int) {
	u := make([]uint64, len(v))
	for i, x := range v {
		u[i] = uint64(x)
	}
	d.setUints(tag, typ, u...)
}

func (d *FileDirectory) has(tag FieldTagType) bool {
	_, ok := d.entries[tag]
	return ok
}

func (d *FileDirectory) SetImageWidth(width int) {
	d.setUint(TagImageWidth, width)
}

func (d *FileDirectory) SetImageHeight(height int) {
	d.setUint(TagImageLength, height)
}

func (d *FileDirectory) SetBitsPerSample(bits ...int) {
	d.setInts(TagBitsPerSample, TypeShort, bits)
}

func (d *FileDirectory) SetSamplesPerPixel(samples int) {
	d.setUint(TagSamplesPerPixel, samples)
}

// SetCompression changes the compression and resolves the matching codec.
func (d *FileDirectory) SetCompression(compression int) error {
	return d.AddEntry(NewEntry(TagCompression, TypeShort, 1, ScalarUint(uint64(compression))))
}

func (d *FileDirectory) SetPhotometricInterpretation(photometric int) {
	d.setUint(TagPhotometricInterpretation, photometric)
}

// SetPlanarConfiguration changes the planar configuration. Values other
// than chunky and planar are rejected.
func (d *FileDirectory) SetPlanarConfiguration(planar int) error {
	return d.AddEntry(NewEntry(TagPlanarConfiguration, TypeShort, 1, ScalarUint(uint64(planar))))
}

// SetRowsPerStrip makes the directory striped.
func (d *FileDirectory) SetRowsPerStrip(rows int) {
	d.setUint(TagRowsPerStrip, rows)
}

func (d *FileDirectory) SetStripOffsets(offsets ...uint64) {
	d.setUints(TagStripOffsets, TypeLong, offsets...)
}

func (d *FileDirectory) SetStripByteCounts(counts ...uint64) {
	d.setUints(TagStripByteCounts, TypeLong, counts...)
}

func (d *FileDirectory) SetTileWidth(width int) {
	d.setUint(TagTileWidth, width)
}

func (d *FileDirectory) SetTileHeight(height int) {
	d.setUint(TagTileLength, height)
}

func (d *FileDirectory) SetTileOffsets(offsets ...uint64) {
	d.setUints(TagTileOffsets, TypeLong, offsets...)
}

func (d *FileDirectory) SetTileByteCounts(counts ...uint64) {
	d.setUints(TagTileByteCounts, TypeLong, counts...)
}

func (d *FileDirectory) SetSampleFormat(formats ...int) {
	d.setInts(TagSampleFormat, TypeShort, formats)
}

func (d *FileDirectory) SetXResolution(numerator, denominator uint32) {
	d.put(NewEntry(TagXResolution, TypeRational, 1, ListUint(uint64(numerator), uint64(denominator))))
}

func (d *FileDirectory) SetYResolution(numerator, denominator uint32) {
	d.put(NewEntry(TagYResolution, TypeRational, 1, ListUint(uint64(numerator), uint64(denominator))))
}

func (d *FileDirectory) SetResolutionUnit(unit int) {
	d.setUint(TagResolutionUnit, unit)
}

func (d *FileDirectory) SetColorMap(colorMap ...int) {
	d.setInts(TagColorMap, TypeShort, colorMap)
}

// SetStringEntry stores s as a NUL terminated ASCII entry.
func (d *FileDirectory) SetStringEntry(tag FieldTagType, s string) {
	d.put(NewEntry(tag, TypeASCII, uint32(len(s)+1), ScalarString(s)))
}
