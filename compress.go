package tiff

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// A CompressionDecoder decodes one strip or tile.
type CompressionDecoder interface {
	Decode(b []byte, order binary.ByteOrder) ([]byte, error)
}

// A CompressionEncoder encodes rasters for writing. Row encoders are
// called once per scanline before the strip is assembled, block encoders
// once on the assembled strip.
type CompressionEncoder interface {
	RowEncoding() bool
	Encode(b []byte, order binary.ByteOrder) ([]byte, error)
}

// A Compression is a codec able to decode and, possibly, encode.
type Compression interface {
	CompressionDecoder
	CompressionEncoder
}

// compressionFor resolves the codec of a Compression tag value.
func compressionFor(code int) (Compression, error) {
	switch code {
	case CompressionNone:
		return RawCompression{}, nil
	case CompressionLZW:
		return LZWCompression{}, nil
	case CompressionDeflate, CompressionPKZIPDeflate:
		return NewDeflateCompression(), nil
	case CompressionPackBits:
		return PackBitsCompression{}, nil
	case CompressionCCITTHuffman, CompressionT4, CompressionT6:
		return nil, FormatError(fmt.Sprintf("CCITT compression %d", code))
	case CompressionJPEGOld, CompressionJPEG:
		return nil, FormatError(fmt.Sprintf("JPEG compression %d", code))
	}
	return nil, FormatError(fmt.Sprintf("compression value %d", code))
}

//------------------------//
// Raw                    //
//------------------------//

// RawCompression is the identity codec (Compression = 1).
type RawCompression struct{}

func (RawCompression) Decode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	return b, nil
}

func (RawCompression) RowEncoding() bool {
	return false
}

func (RawCompression) Encode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	return b, nil
}

//------------------------//
// PackBits               //
//------------------------//

// PackBitsCompression is the Macintosh RLE codec (Compression = 32773).
// Only decoding is implemented.
type PackBitsCompression struct{}

func (PackBitsCompression) Decode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	return unpackBits(bytes.NewReader(b))
}

func (PackBitsCompression) RowEncoding() bool {
	return true
}

func (PackBitsCompression) Encode([]byte, binary.ByteOrder) ([]byte, error) {
	return nil, UnsupportedError("PackBits encoding")
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// unpackBits decodes the PackBits-compressed data in r and returns the
// uncompressed data.
//
// The PackBits compression format is described in section 9 (p. 42)
// of TIFF 6.0.
func unpackBits(r io.Reader) ([]byte, error) {
	var n int
	buf := make([]byte, 129)
	dst := make([]byte, 0, 1024)
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return dst, nil
			}
			return nil, err
		}
		code := int(int8(b))
		switch {
		case code >= 0:
			n, err = io.ReadFull(br, buf[:code+1])
			if err != nil {
				return nil, errors.Wrap(FormatError("truncated PackBits literal run"), err.Error())
			}
			dst = append(dst, buf[:n]...)
		case code == -128:
			// No-op.
		default:
			if b, err = br.ReadByte(); err != nil {
				return nil, errors.Wrap(FormatError("truncated PackBits replicate run"), err.Error())
			}
			for j := 0; j < 1-code; j++ {
				buf[j] = b
			}
			dst = append(dst, buf[:1-code]...)
		}
	}
}
