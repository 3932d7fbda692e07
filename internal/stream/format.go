package stream

import (
	"errors"
	"fmt"
)

// Version is the current format version.
const Version = 1

var magic = [4]byte{'D', 'S', 'T', 'M'}

const headerSize = len(magic) + 2

var (
	// ErrBadMagic is returned when the input does not start with "DSTM".
	ErrBadMagic = errors.New("not a delta stream")
	// ErrUnsupportedVersion is returned for streams written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported stream version")
	// ErrUnknownCompression is returned for an unrecognized compression tag.
	ErrUnknownCompression = errors.New("unknown compression tag")
)

// Compression identifies how the body is compressed. Values are written to the
// header and must not change.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

// String returns the name accepted by ParseCompression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// Op is a frame operation.
type Op uint8

const (
	OpLoad       Op = 1
	OpAccumulate Op = 2
	OpRollback   Op = 3
)

// String returns the lower-case operation name.
func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpAccumulate:
		return "accumulate"
	case OpRollback:
		return "rollback"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Frame is one register operation. Value is used by load and accumulate,
// Count by rollback. An empty Field selects the only field of single-field
// schemas.
type Frame struct {
	Op    Op     `cbor:"1,keyasint"`
	Field string `cbor:"2,keyasint,omitempty"`
	Value uint64 `cbor:"3,keyasint,omitempty"`
	Count uint32 `cbor:"4,keyasint,omitempty"`
}

// Stream is a sequence of frames for one object.
type Stream struct {
	// ID identifies the stream, typically the producer's run id.
	ID string `cbor:"1,keyasint,omitempty"`

	// Schema is the dotted namespace of the target object. Empty means the
	// bare single-field register.
	Schema string `cbor:"2,keyasint,omitempty"`

	// Width is the bare register width; zero means 64.
	Width int `cbor:"3,keyasint,omitempty"`

	// MaxHistory overrides the schema history depth when set.
	MaxHistory *int `cbor:"4,keyasint,omitempty"`

	Frames []Frame `cbor:"5,keyasint"`
}

// Validate checks that every frame carries a known op.
func (s *Stream) Validate() error {
	if s.MaxHistory != nil && *s.MaxHistory < 0 {
		return fmt.Errorf("max history %d is negative", *s.MaxHistory)
	}
	for i, f := range s.Frames {
		switch f.Op {
		case OpLoad, OpAccumulate:
			if f.Count != 0 {
				return fmt.Errorf("frame %d: %s carries a count", i, f.Op)
			}
		case OpRollback:
			if f.Value != 0 {
				return fmt.Errorf("frame %d: rollback carries a value", i)
			}
		default:
			return fmt.Errorf("frame %d: unknown op %d", i, uint8(f.Op))
		}
	}
	return nil
}
