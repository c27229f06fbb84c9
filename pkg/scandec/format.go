package scandec

import "fmt"

// Config describes one scan session. It is fixed at Open and immutable
// for the session's lifetime. The resolution fields are informational
// passthrough from the host negotiation and take no part in decode
// arithmetic.
type Config struct {
	Mode   ColorMode
	Pixels uint32 // input pixels per line

	// LongBoundary pads each output line to a 4-byte boundary, as
	// some host raster consumers require.
	LongBoundary bool

	XRes int
	YRes int
}

// LineLayout is the output geometry derived from a Config. The caller
// must consult it to size destination buffers before submitting lines.
type LineLayout struct {
	// BytesPerLine is the size of one decoded output line.
	BytesPerLine int

	// MaxWriteSize is the largest buffer the host should hand to a
	// batched multi-line delivery (16 lines).
	MaxWriteSize int
}

// batchLines is the multi-line delivery depth the hardware protocol
// assumes when sizing host buffers.
const batchLines = 16

// Negotiate computes the output line geometry for a config.
//
// An unrecognized color mode negotiates 1-bit geometry; the hardware
// only ever requests the three known modes, and the narrowest layout is
// the safe fallback for anything else.
func Negotiate(cfg Config) (LineLayout, error) {
	if cfg.Pixels == 0 {
		return LineLayout{}, fmt.Errorf("%w: zero pixels per line", ErrInvalidConfig)
	}

	var bpl int
	switch cfg.Mode {
	case RGB24Bit:
		bpl = int(cfg.Pixels) * 3
	case Gray8Bit:
		bpl = int(cfg.Pixels)
	default:
		bpl = (int(cfg.Pixels) + 7) / 8
	}

	if cfg.LongBoundary {
		bpl = (bpl + 3) &^ 3
	}

	return LineLayout{
		BytesPerLine: bpl,
		MaxWriteSize: bpl * batchLines,
	}, nil
}
