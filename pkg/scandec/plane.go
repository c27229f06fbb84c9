package scandec

import "github.com/jpfielding/scandec.go/pkg/compress/rle"

// planeAssembler buffers the per-channel plane streams of a 24-bit
// session and interleaves them into pixel RGB. The scanner transmits
// each row as three independent records (red, green, blue, in any
// order); blue is the flush trigger.
type planeAssembler struct {
	red, green, blue []byte
	haveRed          bool
	haveGreen        bool
}

func newPlaneAssembler(pixels int) *planeAssembler {
	return &planeAssembler{
		red:   make([]byte, pixels),
		green: make([]byte, pixels),
		blue:  make([]byte, pixels),
	}
}

// reset drops any partially buffered row.
func (a *planeAssembler) reset() {
	a.haveRed = false
	a.haveGreen = false
}

// submit decodes one planar record into its channel buffer and, on a
// blue record completing a red+green+blue triple, interleaves the row
// into dst. A blue record arriving before both red and green simply
// buffers: the incomplete row is dropped without error, which keeps a
// scrambled plane stream from wedging the whole scan.
func (a *planeAssembler) submit(rec LineRecord, dst []byte) (int, Status) {
	var buf []byte
	switch rec.Plane {
	case PlaneRed:
		buf = a.red
		a.haveRed = true
	case PlaneGreen:
		buf = a.green
		a.haveGreen = true
	default:
		buf = a.blue
	}

	src := rec.payload()
	switch rec.Compression {
	case WhiteFill:
		for i := range buf {
			buf[i] = white
		}
	case PackBits:
		rle.DecodeInto(buf, src)
	default:
		// Raw, and unrecognized codes falling back to raw copy.
		n := copy(buf, src)
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
	}

	if rec.Plane != PlaneBlue || !a.haveRed || !a.haveGreen {
		return 0, Buffered
	}

	// Never interleave past the destination, even if the negotiated
	// layout and the plane size disagree.
	pixels := len(a.red)
	if pixels > len(dst)/3 {
		pixels = len(dst) / 3
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < pixels; i++ {
		dst[i*3+0] = a.red[i]
		dst[i*3+1] = a.green[i]
		dst[i*3+2] = a.blue[i]
	}
	a.reset()

	return pixels * 3, Emitted
}
