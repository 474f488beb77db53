package tiff

import (
	"bytes"
	"encoding/binary"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// LZWCompression is the TIFF LZW codec (Compression = 5): MSB first codes
// from 9 to 12 bits, widened one code early. Only decoding is implemented.
type LZWCompression struct{}

// Decode reads b up to its end of information code. A stream that ends
// before that code, or that holds a code missing from the table, is a
// FormatError.
func (LZWCompression) Decode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(b), lzw.MSB, 8)
	defer r.Close()

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, FormatError("LZW: " + err.Error())
	}
	return buf, nil
}

func (LZWCompression) RowEncoding() bool {
	return false
}

func (LZWCompression) Encode([]byte, binary.ByteOrder) ([]byte, error) {
	return nil, UnsupportedError("LZW encoding")
}
