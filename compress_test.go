package tiff

import (
	"bytes"
	stdlzw "compress/lzw"
	"encoding/binary"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lzwClearCode = 256
	lzwEOICode   = 257
	lzwFirstCode = 258
	lzwMinBits   = 9
	lzwMaxBits   = 12
	lzwMaxCodes  = 1 << lzwMaxBits
)

var lzwFixture = []byte{0x80, 0x0B, 0x60, 0x50, 0x22, 0x0C, 0x0C, 0x85, 0x01}

func TestCompressionFor(t *testing.T) {
	for code, want := range map[int]Compression{
		CompressionNone:         RawCompression{},
		CompressionLZW:          LZWCompression{},
		CompressionPackBits:     PackBitsCompression{},
		CompressionDeflate:      nil,
		CompressionPKZIPDeflate: nil,
	} {
		c, err := compressionFor(code)
		require.NoError(t, err)
		if want != nil {
			assert.Equal(t, want, c)
		} else {
			assert.IsType(t, DeflateCompression{}, c)
		}
	}

	for _, code := range []int{CompressionCCITTHuffman, CompressionT4, CompressionT6, CompressionJPEGOld, CompressionJPEG, 99} {
		_, err := compressionFor(code)
		assert.IsType(t, FormatError(""), err, "compression %d", code)
	}
}

func TestRawCompression(t *testing.T) {
	b := []byte{1, 2, 3}
	out, err := RawCompression{}.Decode(b, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, b, out)

	out, err = RawCompression{}.Encode(b, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, b, out)
	assert.False(t, RawCompression{}.RowEncoding())
}

func TestPackBitsDecode(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"replicate and literal", []byte{0xFE, 0xAA, 0x02, 0x22, 0x33, 0x44}, []byte{0xAA, 0xAA, 0xAA, 0x22, 0x33, 0x44}},
		{"no-op", []byte{0x80, 0x00, 0x11}, []byte{0x11}},
		{"empty", nil, []byte{}},
		{
			"TIFF 6.0 sample",
			[]byte{0xFE, 0xAA, 0x02, 0x80, 0x00, 0x2A, 0xFD, 0xAA, 0x03, 0x80, 0x00, 0x2A, 0x22, 0xF7, 0xAA},
			[]byte{
				0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0xAA, 0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0x22,
				0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA,
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := PackBitsCompression{}.Decode(c.in, binary.BigEndian)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
		})
	}

	_, err := PackBitsCompression{}.Decode([]byte{0x03, 0x01}, binary.BigEndian)
	assert.IsType(t, FormatError(""), errors.Cause(err))
	_, err = PackBitsCompression{}.Decode([]byte{0xFE}, binary.BigEndian)
	assert.IsType(t, FormatError(""), errors.Cause(err))
}

func TestLZWDecode(t *testing.T) {
	out, err := LZWCompression{}.Decode(lzwFixture, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, []byte{45, 45, 45, 45, 45, 65, 45, 45, 45, 66}, out)
}

func TestLZWDecodeEncodedStream(t *testing.T) {
	// Few enough codes that the early code width change never comes into play.
	data := bytes.Repeat([]byte("tiff codec "), 20)

	var buf bytes.Buffer
	w := stdlzw.NewWriter(&buf, stdlzw.MSB, 8)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := LZWCompression{}.Decode(buf.Bytes(), binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLZWDecodeLongStream(t *testing.T) {
	// Enough distinct codes to go through every code width and a table reset.
	data := make([]byte, 0, 64*1024)
	for i := 0; i < 64*1024; i++ {
		data = append(data, byte(i*7+i/251))
	}
	src := encodeTIFFLZW(data)

	out, err := LZWCompression{}.Decode(src, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLZWErrors(t *testing.T) {
	_, err := LZWCompression{}.Decode(lzwFixture[:4], binary.BigEndian)
	assert.IsType(t, FormatError(""), err, "truncated stream")

	_, err = LZWCompression{}.Decode([]byte{0x80, 0x00}, binary.BigEndian)
	assert.IsType(t, FormatError(""), err, "clear code without EOI")

	// Clear code followed by code 300, beyond the table.
	_, err = LZWCompression{}.Decode([]byte{0x80, 0x4B, 0x00}, binary.BigEndian)
	assert.IsType(t, FormatError(""), err, "invalid code")

	_, err = LZWCompression{}.Encode([]byte{1}, binary.BigEndian)
	assert.IsType(t, UnsupportedError(""), err)
	_, err = PackBitsCompression{}.Encode([]byte{1}, binary.BigEndian)
	assert.IsType(t, UnsupportedError(""), err)
	assert.True(t, PackBitsCompression{}.RowEncoding())
	assert.False(t, LZWCompression{}.RowEncoding())
}

func TestDeflateRoundTrip(t *testing.T) {
	c := NewDeflateCompression()
	for _, size := range []int{0, 1, deflateChunk - 1, deflateChunk, 10 * deflateChunk} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i % 13)
		}
		encoded, err := c.Encode(data, binary.BigEndian)
		require.NoError(t, err)

		decoded, err := c.Decode(encoded, binary.BigEndian)
		require.NoError(t, err)
		assert.Equal(t, len(data), len(decoded), "size %d", size)
		assert.True(t, bytes.Equal(data, decoded), "size %d", size)
	}

	_, err := c.Decode([]byte{0x00, 0x01, 0x02}, binary.BigEndian)
	assert.Error(t, err)
}

type failingInflater struct{}

func (failingInflater) SetInput([]byte)             {}
func (failingInflater) Finished() bool              { return false }
func (failingInflater) Inflate([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDeflateInjectedInflater(t *testing.T) {
	c := NewDeflateCompression()
	c.NewInflater = func() Inflater { return failingInflater{} }

	_, err := c.Decode([]byte{1, 2, 3}, binary.BigEndian)
	assert.Equal(t, io.ErrUnexpectedEOF, errors.Cause(err))
}

// encodeTIFFLZW is a minimal TIFF flavoured LZW encoder: MSB first codes,
// early code width change and a clear code when the table is full.
func encodeTIFFLZW(data []byte) []byte {
	var out []byte
	var acc uint32
	var nbits uint
	width := uint(lzwMinBits)
	put := func(code int) {
		acc = acc<<width | uint32(code)
		nbits += width
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
		}
		acc &= 1<<nbits - 1
	}

	table := map[string]int{}
	next := lzwFirstCode
	put(lzwClearCode)
	var w []byte
	for _, c := range data {
		wc := append(append([]byte(nil), w...), c)
		if _, ok := table[string(wc)]; ok || len(wc) == 1 {
			w = wc
			continue
		}
		put(codeOf(table, w))
		table[string(wc)] = next
		next++
		if next >= 1<<width && width < lzwMaxBits {
			width++
		}
		if next >= lzwMaxCodes-1 {
			put(lzwClearCode)
			table = map[string]int{}
			next = lzwFirstCode
			width = lzwMinBits
		}
		w = []byte{c}
	}
	if len(w) > 0 {
		put(codeOf(table, w))
		next++
		if next >= 1<<width && width < lzwMaxBits {
			width++
		}
	}
	put(lzwEOICode)
	if nbits > 0 {
		out = append(out, byte(acc<<(8-nbits)))
	}
	return out
}

func codeOf(table map[string]int, w []byte) int {
	if len(w) == 1 {
		return int(w[0])
	}
	return table[string(w)]
}
