package tiff

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// An Inflater is a zlib stream decompressor fed with one complete input.
type Inflater interface {
	SetInput(b []byte)
	Finished() bool
	// Inflate fills buf with decompressed bytes and returns how many were written.
	Inflate(buf []byte) (int, error)
}

// A Deflater is a zlib stream compressor fed with one complete input.
type Deflater interface {
	SetInput(b []byte)
	// Finish signals that no more input follows.
	Finish()
	Finished() bool
	// Deflate fills buf with compressed bytes and returns how many were written.
	Deflate(buf []byte) (int, error)
}

// DeflateCompression is the zlib codec (Compression = 8 or 32946).
// The zlib primitive is injected through the constructor functions.
type DeflateCompression struct {
	NewInflater func() Inflater
	NewDeflater func() Deflater
}

// NewDeflateCompression returns a codec backed by klauspost/compress.
func NewDeflateCompression() DeflateCompression {
	return DeflateCompression{
		NewInflater: func() Inflater { return &zlibInflater{} },
		NewDeflater: func() Deflater { return &zlibDeflater{} },
	}
}

const deflateChunk = 1024

func (c DeflateCompression) Decode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	inflater := c.NewInflater()
	inflater.SetInput(b)

	var out bytes.Buffer
	buf := make([]byte, deflateChunk)
	for !inflater.Finished() {
		n, err := inflater.Inflate(buf)
		if err != nil {
			return nil, errors.Wrap(err, "tiff: inflate")
		}
		out.Write(buf[:n])
	}
	return out.Bytes(), nil
}

func (DeflateCompression) RowEncoding() bool {
	return false
}

func (c DeflateCompression) Encode(b []byte, _ binary.ByteOrder) ([]byte, error) {
	deflater := c.NewDeflater()
	deflater.SetInput(b)
	deflater.Finish()

	var out bytes.Buffer
	buf := make([]byte, deflateChunk)
	for !deflater.Finished() {
		n, err := deflater.Deflate(buf)
		if err != nil {
			return nil, errors.Wrap(err, "tiff: deflate")
		}
		out.Write(buf[:n])
	}
	return out.Bytes(), nil
}

//------------------------//
// zlib primitives        //
//------------------------//

type zlibInflater struct {
	input    []byte
	r        io.ReadCloser
	finished bool
}

func (z *zlibInflater) SetInput(b []byte) {
	z.input = b
	z.r = nil
	z.finished = false
}

func (z *zlibInflater) Finished() bool {
	return z.finished
}

func (z *zlibInflater) Inflate(buf []byte) (int, error) {
	if z.finished {
		return 0, nil
	}
	if z.r == nil {
		r, err := zlib.NewReader(bytes.NewReader(z.input))
		if err != nil {
			return 0, err
		}
		z.r = r
	}
	n, err := z.r.Read(buf)
	if err == io.EOF {
		z.finished = true
		return n, z.r.Close()
	}
	return n, err
}

type zlibDeflater struct {
	input    []byte
	out      *bytes.Reader
	finish   bool
	finished bool
}

func (z *zlibDeflater) SetInput(b []byte) {
	z.input = b
	z.out = nil
	z.finish = false
	z.finished = false
}

func (z *zlibDeflater) Finish() {
	z.finish = true
}

func (z *zlibDeflater) Finished() bool {
	return z.finished
}

func (z *zlibDeflater) Deflate(buf []byte) (int, error) {
	if !z.finish || z.finished {
		return 0, nil
	}
	if z.out == nil {
		var compressed bytes.Buffer
		w := zlib.NewWriter(&compressed)
		if _, err := w.Write(z.input); err != nil {
			return 0, err
		}
		if err := w.Close(); err != nil {
			return 0, err
		}
		z.out = bytes.NewReader(compressed.Bytes())
	}
	n, _ := z.out.Read(buf) // bytes.Reader only fails with io.EOF
	if z.out.Len() == 0 {
		z.finished = true
	}
	return n, nil
}
