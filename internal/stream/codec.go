package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("stream: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: 1 << 27,
	}.DecMode()
	if err != nil {
		panic("stream: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode writes s to w with the given body compression.
func Encode(w io.Writer, s *Stream, c Compression) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("encode stream: %w", err)
	}

	body, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode stream: %w", err)
	}

	header := make([]byte, 0, headerSize)
	header = append(header, magic[:]...)
	header = append(header, Version, byte(c))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cw, err := compressWriter(w, c)
	if err != nil {
		return err
	}
	if _, err := cw.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("flush body: %w", err)
	}
	return nil
}

// Decode reads a stream written by Encode.
func Decode(r io.Reader) (*Stream, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header", ErrBadMagic)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := header[4]; v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	body, err := decompressReader(r, Compression(header[5]))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var s Stream
	if err := decMode.NewDecoder(body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode stream body: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	return &s, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

func decompressReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(bufio.NewReader(r)), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
