package scandec

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jpfielding/scandec.go/pkg/compress/rle"
)

// maxLinePixels bounds plane and scratch buffer reservation. Real
// hardware tops out around 80k pixels per line (A4 at 9600 dpi); a
// config past this cap is a corrupt negotiation, not a scan.
const maxLinePixels = 1 << 24

// Session owns the configuration, derived layout, and plane buffers of
// one open scan. One goroutine drives one session; concurrent scans
// need separate Session instances.
//
// The zero value is a closed session. Open, a loop of Submit calls,
// then Close; a closed session may be reopened with a new config.
type Session struct {
	cfg    Config
	layout LineLayout
	planes *planeAssembler
	// scratch holds expanded 8-bit samples between PackBits decode and
	// 1-bit quantization in monochrome mode.
	scratch []byte
	id      string
	open    bool
}

// NewSession returns a closed session ready for Open.
func NewSession() *Session {
	return &Session{}
}

// Open validates cfg, computes the output line layout, and reserves the
// session's working buffers. Any buffers from a previous Open are
// released first. On error no partially reserved state is retained.
func (s *Session) Open(cfg Config) (LineLayout, error) {
	s.reset()

	layout, err := Negotiate(cfg)
	if err != nil {
		return LineLayout{}, err
	}
	if cfg.Pixels > maxLinePixels {
		return LineLayout{}, fmt.Errorf("%w: %d pixels per line", ErrAllocation, cfg.Pixels)
	}

	switch cfg.Mode {
	case RGB24Bit:
		s.planes = newPlaneAssembler(int(cfg.Pixels))
	case Gray8Bit:
		// No working buffers: lines decode straight into the caller's
		// destination.
	default:
		s.scratch = make([]byte, cfg.Pixels)
	}

	s.cfg = cfg
	s.layout = layout
	s.id = uuid.NewString()
	s.open = true
	return layout, nil
}

// Submit decodes one line record into dst, which must hold at least
// Layout().BytesPerLine bytes. It returns the number of bytes emitted
// and a status: Emitted for a completed line, Buffered when the record
// was consumed without producing output, Fault when a structurally
// required input is absent.
func (s *Session) Submit(rec LineRecord, dst []byte) (int, Status) {
	if dst == nil || (rec.Data == nil && rec.Size > 0) {
		return 0, Fault
	}
	if !s.open || s.layout.BytesPerLine == 0 || s.layout.BytesPerLine > len(dst) {
		return 0, Buffered
	}
	out := dst[:s.layout.BytesPerLine]

	if s.planes != nil && rec.Plane >= PlaneRed && rec.Plane <= PlaneBlue {
		return s.planes.submit(rec, out)
	}

	for i := range out {
		out[i] = 0
	}
	src := rec.payload()
	pixels := int(s.cfg.Pixels)

	switch rec.Compression {
	case WhiteFill:
		for i := range out {
			out[i] = white
		}
	case PackBits:
		if s.scratch != nil {
			// Monochrome: expand to 8-bit samples, then quantize.
			for i := range s.scratch {
				s.scratch[i] = 0
			}
			rle.DecodeInto(s.scratch, src)
			quantizeLine(out, s.scratch, pixels)
		} else {
			rle.DecodeInto(out, src)
		}
	default:
		// Raw, and unrecognized codes falling back to raw copy. The
		// monochrome payload is 8-bit samples counted per pixel, so it
		// goes through quantization rather than a byte copy.
		if s.scratch != nil {
			quantizeLine(out, src, pixels)
		} else {
			copy(out, src)
		}
	}

	return s.layout.BytesPerLine, Emitted
}

// Close releases the session's buffers and clears its configuration.
// Closing a session that is not open is a no-op; partially buffered
// color rows are discarded.
func (s *Session) Close() error {
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.planes = nil
	s.scratch = nil
	s.cfg = Config{}
	s.layout = LineLayout{}
	s.id = ""
	s.open = false
}

// Layout returns the line geometry negotiated by the last Open. It is
// the zero LineLayout on a closed session.
func (s *Session) Layout() LineLayout { return s.layout }

// Config returns the active session config.
func (s *Session) Config() Config { return s.cfg }

// ID returns an opaque identifier assigned at Open, for log
// correlation by the host. The engine itself never logs.
func (s *Session) ID() string { return s.id }

// IsOpen reports whether the session is between Open and Close.
func (s *Session) IsOpen() bool { return s.open }
