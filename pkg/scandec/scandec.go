package scandec

import "errors"

var (
	// ErrInvalidConfig is returned by Open for geometry that cannot
	// produce a line, such as a zero pixel count.
	ErrInvalidConfig = errors.New("scandec: invalid session config")

	// ErrAllocation is returned by Open when plane buffer reservation
	// cannot be satisfied.
	ErrAllocation = errors.New("scandec: plane buffer allocation failed")
)

// ColorMode selects the negotiated output pixel format.
type ColorMode uint8

const (
	// Monochrome1Bit packs 8 threshold-quantized pixels per byte.
	Monochrome1Bit ColorMode = iota
	// Gray8Bit emits one byte per pixel.
	Gray8Bit
	// RGB24Bit emits interleaved R,G,B bytes per pixel.
	RGB24Bit
)

func (m ColorMode) String() string {
	switch m {
	case Monochrome1Bit:
		return "mono1"
	case Gray8Bit:
		return "gray8"
	case RGB24Bit:
		return "rgb24"
	default:
		return "unknown"
	}
}

// Compression identifies how a line record's payload is encoded. The
// values are the scanner's wire codes.
type Compression uint8

const (
	// WhiteFill marks an entirely white line; the record carries no
	// payload.
	WhiteFill Compression = 1
	// Raw marks uncompressed 8-bit samples.
	Raw Compression = 2
	// PackBits marks TIFF PackBits compressed samples.
	PackBits Compression = 3
)

func (c Compression) String() string {
	switch c {
	case WhiteFill:
		return "white"
	case Raw:
		return "raw"
	case PackBits:
		return "packbits"
	default:
		return "unknown"
	}
}

// Plane identifies the color channel of a planar record. The values
// are the scanner's wire codes; PlaneNone marks non-planar data.
type Plane uint8

const (
	PlaneNone  Plane = 0
	PlaneRed   Plane = 2
	PlaneGreen Plane = 3
	PlaneBlue  Plane = 4
)

func (p Plane) String() string {
	switch p {
	case PlaneRed:
		return "red"
	case PlaneGreen:
		return "green"
	case PlaneBlue:
		return "blue"
	default:
		return "none"
	}
}

// LineRecord is one framed transmission from the scanner, produced by
// the transport layer. Size is the transport's declared payload length;
// the decoder never reads past min(Size, len(Data)).
type LineRecord struct {
	Compression Compression
	Plane       Plane
	Data        []byte
	Size        uint32
}

// payload returns the usable slice of the record's data, clamped to
// the declared size.
func (r LineRecord) payload() []byte {
	n := int(r.Size)
	if n > len(r.Data) {
		n = len(r.Data)
	}
	return r.Data[:n]
}

// Status reports the outcome of a Submit call.
type Status int

const (
	// Buffered means the record was consumed but no output line was
	// produced (partial color row, or a structurally empty call).
	Buffered Status = 0
	// Emitted means a complete decoded line was written to the
	// destination.
	Emitted Status = 1
	// Fault means a structurally required input was absent.
	Fault Status = -1
)

func (s Status) String() string {
	switch s {
	case Emitted:
		return "emitted"
	case Fault:
		return "fault"
	default:
		return "buffered"
	}
}
