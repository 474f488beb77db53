package tiff

import (
	"encoding/binary"
	"fmt"
)

// Rasters holds pixel values either per sample (one buffer per sample,
// pixels in row order), interleaved (all samples of a pixel together) or
// both. When both are present every write updates both forms.
//
// Values cross the API as float64, which represents every supported
// sample type exactly.
type Rasters struct {
	width      int
	height     int
	fieldTypes []FieldType
	order      binary.ByteOrder

	sampleValues     [][]byte
	interleaveValues []byte

	pixelSize int
}

// NewRasters allocates zeroed rasters with the requested storage forms.
func NewRasters(width, height int, fieldTypes []FieldType, order binary.ByteOrder, samples, interleave bool) (*Rasters, error) {
	r := &Rasters{
		width:      width,
		height:     height,
		fieldTypes: fieldTypes,
		order:      order,
	}
	if err := r.validateTypes(); err != nil {
		return nil, err
	}
	if samples {
		r.sampleValues = make([][]byte, len(fieldTypes))
		for i, ft := range fieldTypes {
			r.sampleValues[i] = make([]byte, width*height*ft.Bytes())
		}
	}
	if interleave {
		r.interleaveValues = make([]byte, r.Size())
	}
	if err := r.validateValues(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRastersFrom wraps existing buffers encoded in order. Either may be nil
// but not both.
func NewRastersFrom(width, height int, fieldTypes []FieldType, order binary.ByteOrder, sampleValues [][]byte, interleaveValues []byte) (*Rasters, error) {
	r := &Rasters{
		width:            width,
		height:           height,
		fieldTypes:       fieldTypes,
		order:            order,
		sampleValues:     sampleValues,
		interleaveValues: interleaveValues,
	}
	if err := r.validateTypes(); err != nil {
		return nil, err
	}
	if err := r.validateValues(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rasters) validateTypes() error {
	if r.width < 0 || r.height < 0 {
		return RangeError(fmt.Sprintf("raster size %dx%d", r.width, r.height))
	}
	if len(r.fieldTypes) == 0 {
		return FormatError("rasters need at least one sample")
	}
	for _, ft := range r.fieldTypes {
		if _, err := SampleFormatOf(ft); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rasters) validateValues() error {
	if r.sampleValues == nil && r.interleaveValues == nil {
		return FormatError("rasters must be sample and/or interleave based")
	}
	if r.sampleValues != nil {
		if len(r.sampleValues) != len(r.fieldTypes) {
			return FormatError(fmt.Sprintf("%d sample buffers for %d samples", len(r.sampleValues), len(r.fieldTypes)))
		}
		for i, b := range r.sampleValues {
			if want := r.NumPixels() * r.fieldTypes[i].Bytes(); len(b) != want {
				return FormatError(fmt.Sprintf("sample %d buffer holds %d bytes, expected %d", i, len(b), want))
			}
		}
	}
	if r.interleaveValues != nil && len(r.interleaveValues) != r.Size() {
		return FormatError(fmt.Sprintf("interleave buffer holds %d bytes, expected %d", len(r.interleaveValues), r.Size()))
	}
	return nil
}

func (r *Rasters) Width() int {
	return r.width
}

func (r *Rasters) Height() int {
	return r.height
}

func (r *Rasters) FieldTypes() []FieldType {
	return r.fieldTypes
}

// ByteOrder returns the order the buffers are encoded in.
func (r *Rasters) ByteOrder() binary.ByteOrder {
	return r.order
}

func (r *Rasters) SamplesPerPixel() int {
	return len(r.fieldTypes)
}

func (r *Rasters) NumPixels() int {
	return r.width * r.height
}

func (r *Rasters) HasSampleValues() bool {
	return r.sampleValues != nil
}

func (r *Rasters) HasInterleaveValues() bool {
	return r.interleaveValues != nil
}

// SampleValues returns the per sample buffers, nil when absent.
func (r *Rasters) SampleValues() [][]byte {
	return r.sampleValues
}

// InterleaveValues returns the interleaved buffer, nil when absent.
func (r *Rasters) InterleaveValues() []byte {
	return r.interleaveValues
}

// BitsPerSample returns the bit width of every sample.
func (r *Rasters) BitsPerSample() []int {
	bits := make([]int, len(r.fieldTypes))
	for i, ft := range r.fieldTypes {
		bits[i] = ft.Bits()
	}
	return bits
}

// SampleFormat returns the SampleFormat value of every sample.
func (r *Rasters) SampleFormat() []int {
	formats := make([]int, len(r.fieldTypes))
	for i, ft := range r.fieldTypes {
		formats[i], _ = SampleFormatOf(ft) // checked at construction
	}
	return formats
}

// SizePixel returns the byte size of one pixel, all samples included.
func (r *Rasters) SizePixel() int {
	if r.pixelSize == 0 {
		for _, ft := range r.fieldTypes {
			r.pixelSize += ft.Bytes()
		}
	}
	return r.pixelSize
}

// Size returns the byte size of the whole raster.
func (r *Rasters) Size() int {
	return r.NumPixels() * r.SizePixel()
}

func (r *Rasters) sampleIndex(x, y int) int {
	return y*r.width + x
}

func (r *Rasters) interleaveIndex(x, y int) int {
	return y*r.width*r.SizePixel() + x*r.SizePixel()
}

// sampleOffset returns the byte offset of sample within an interleaved pixel.
func (r *Rasters) sampleOffset(sample int) int {
	offset := 0
	for i := 0; i < sample; i++ {
		offset += r.fieldTypes[i].Bytes()
	}
	return offset
}

func (r *Rasters) validateCoordinates(x, y int) error {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return RangeError(fmt.Sprintf("pixel (%d,%d) outside of %dx%d raster", x, y, r.width, r.height))
	}
	return nil
}

func (r *Rasters) validateSample(sample int) error {
	if sample < 0 || sample >= len(r.fieldTypes) {
		return RangeError(fmt.Sprintf("sample %d, samples per pixel %d", sample, len(r.fieldTypes)))
	}
	return nil
}

// GetPixel returns every sample value of the pixel (x, y).
func (r *Rasters) GetPixel(x, y int) ([]float64, error) {
	if err := r.validateCoordinates(x, y); err != nil {
		return nil, err
	}
	pixel := make([]float64, len(r.fieldTypes))
	for i := range pixel {
		pixel[i] = r.pixelSample(i, x, y)
	}
	return pixel, nil
}

// GetPixelSample returns one sample value of the pixel (x, y).
func (r *Rasters) GetPixelSample(sample, x, y int) (float64, error) {
	if err := r.validateCoordinates(x, y); err != nil {
		return 0, err
	}
	if err := r.validateSample(sample); err != nil {
		return 0, err
	}
	return r.pixelSample(sample, x, y), nil
}

// GetFirstPixelSample returns the first sample value of the pixel (x, y).
func (r *Rasters) GetFirstPixelSample(x, y int) (float64, error) {
	return r.GetPixelSample(0, x, y)
}

// pixelSample reads from validated coordinates.
func (r *Rasters) pixelSample(sample, x, y int) float64 {
	ft := r.fieldTypes[sample]
	var p []byte
	if r.sampleValues != nil {
		i := r.sampleIndex(x, y) * ft.Bytes()
		p = r.sampleValues[sample][i : i+ft.Bytes()]
	} else {
		i := r.interleaveIndex(x, y) + r.sampleOffset(sample)
		p = r.interleaveValues[i : i+ft.Bytes()]
	}
	v, _ := getSample(p, ft, r.order) // field types checked at construction
	return v
}

// SetPixel sets every sample value of the pixel (x, y).
func (r *Rasters) SetPixel(x, y int, values []float64) error {
	if err := r.validateCoordinates(x, y); err != nil {
		return err
	}
	if len(values) != len(r.fieldTypes) {
		return RangeError(fmt.Sprintf("%d values for %d samples per pixel", len(values), len(r.fieldTypes)))
	}
	for i, v := range values {
		r.setPixelSample(i, x, y, v)
	}
	return nil
}

// SetPixelSample sets one sample value of the pixel (x, y).
func (r *Rasters) SetPixelSample(sample, x, y int, value float64) error {
	if err := r.validateCoordinates(x, y); err != nil {
		return err
	}
	if err := r.validateSample(sample); err != nil {
		return err
	}
	r.setPixelSample(sample, x, y, value)
	return nil
}

// SetFirstPixelSample sets the first sample value of the pixel (x, y).
func (r *Rasters) SetFirstPixelSample(x, y int, value float64) error {
	return r.SetPixelSample(0, x, y, value)
}

func (r *Rasters) setPixelSample(sample, x, y int, value float64) {
	ft := r.fieldTypes[sample]
	if r.sampleValues != nil {
		i := r.sampleIndex(x, y) * ft.Bytes()
		putSample(r.sampleValues[sample][i:i+ft.Bytes()], ft, r.order, value)
	}
	if r.interleaveValues != nil {
		i := r.interleaveIndex(x, y) + r.sampleOffset(sample)
		putSample(r.interleaveValues[i:i+ft.Bytes()], ft, r.order, value)
	}
}

// GetPixelRow returns row y interleaved and encoded in order.
func (r *Rasters) GetPixelRow(y int, order binary.ByteOrder) ([]byte, error) {
	if err := r.validateCoordinates(0, y); err != nil {
		return nil, err
	}
	row := make([]byte, r.width*r.SizePixel())
	off := 0
	for x := 0; x < r.width; x++ {
		for s, ft := range r.fieldTypes {
			putSample(row[off:off+ft.Bytes()], ft, order, r.pixelSample(s, x, y))
			off += ft.Bytes()
		}
	}
	return row, nil
}

// GetSampleRow returns the values of one sample along row y encoded in order.
func (r *Rasters) GetSampleRow(y, sample int, order binary.ByteOrder) ([]byte, error) {
	if err := r.validateCoordinates(0, y); err != nil {
		return nil, err
	}
	if err := r.validateSample(sample); err != nil {
		return nil, err
	}
	ft := r.fieldTypes[sample]
	row := make([]byte, r.width*ft.Bytes())
	for x := 0; x < r.width; x++ {
		off := x * ft.Bytes()
		putSample(row[off:off+ft.Bytes()], ft, order, r.pixelSample(sample, x, y))
	}
	return row, nil
}

// CalculateRowsPerStrip returns the largest row count keeping a strip under
// maxBytesPerStrip, at least one. A non positive maxBytesPerStrip selects
// DefaultMaxBytesPerStrip.
func (r *Rasters) CalculateRowsPerStrip(planarConfiguration, maxBytesPerStrip int) int {
	if maxBytesPerStrip <= 0 {
		maxBytesPerStrip = DefaultMaxBytesPerStrip
	}
	if planarConfiguration != PlanarConfigurationPlanar {
		return r.rowsPerStrip(r.SizePixel(), maxBytesPerStrip)
	}
	rows := 0
	for _, ft := range r.fieldTypes {
		if n := r.rowsPerStrip(ft.Bytes(), maxBytesPerStrip); rows == 0 || n < rows {
			rows = n
		}
	}
	return rows
}

func (r *Rasters) rowsPerStrip(bytesPerPixel, maxBytesPerStrip int) int {
	bytesPerRow := bytesPerPixel * r.width
	if bytesPerRow == 0 {
		return 1
	}
	return maxInt(1, maxBytesPerStrip/bytesPerRow)
}
