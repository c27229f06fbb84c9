package scandec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// A capture stream is a replay container for framed line records, used
// by tooling and tests in place of the live transport: a fixed header
// describing the session config, followed by the records exactly as the
// scanner framed them. Streams may be transparently gzip compressed.
//
// Layout (all integers little-endian):
//
//	magic  "SDC1"
//	header mode u8, longBoundary u8, pixels u32, lines u32
//	record compression u8, plane u8, size u32, payload [size]byte

const captureMagic = "SDC1"

// maxRecordSize bounds a single record's declared payload; anything
// larger is a corrupt stream, not scan data.
const maxRecordSize = 1 << 26

// ErrBadCapture is returned when a capture stream is structurally
// malformed: bad magic, a truncated header or record, or an absurd
// declared payload size.
var ErrBadCapture = errors.New("scandec: malformed capture stream")

// CaptureHeader describes the session a capture was recorded under.
type CaptureHeader struct {
	Mode         ColorMode
	LongBoundary bool
	Pixels       uint32
	Lines        uint32
}

// Config returns the session config the capture should be replayed
// into.
func (h CaptureHeader) Config() Config {
	return Config{
		Mode:         h.Mode,
		Pixels:       h.Pixels,
		LongBoundary: h.LongBoundary,
	}
}

// CaptureReader reads line records from a capture stream.
type CaptureReader struct {
	r   *bufio.Reader
	hdr CaptureHeader
}

// NewCaptureReader sniffs gzip, validates the magic, and reads the
// capture header.
func NewCaptureReader(r io.Reader) (*CaptureReader, error) {
	br := bufio.NewReader(r)
	if peek, err := br.Peek(2); err == nil && peek[0] == 0x1f && peek[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("scandec: gzip capture: %w", err)
		}
		br = bufio.NewReader(zr)
	}

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: missing magic: %v", ErrBadCapture, err)
	}
	if string(magic[:]) != captureMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadCapture, magic[:])
	}

	var raw [10]byte
	if _, err := io.ReadFull(br, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrBadCapture, err)
	}
	hdr := CaptureHeader{
		Mode:         ColorMode(raw[0]),
		LongBoundary: raw[1] != 0,
		Pixels:       binary.LittleEndian.Uint32(raw[2:6]),
		Lines:        binary.LittleEndian.Uint32(raw[6:10]),
	}
	return &CaptureReader{r: br, hdr: hdr}, nil
}

// Header returns the capture's session header.
func (cr *CaptureReader) Header() CaptureHeader { return cr.hdr }

// Next returns the next line record, or io.EOF at the clean end of the
// stream. A record truncated mid-frame is ErrBadCapture.
func (cr *CaptureReader) Next() (LineRecord, error) {
	var raw [6]byte
	if _, err := io.ReadFull(cr.r, raw[:]); err != nil {
		if err == io.EOF {
			return LineRecord{}, io.EOF
		}
		return LineRecord{}, fmt.Errorf("%w: truncated record header: %v", ErrBadCapture, err)
	}

	size := binary.LittleEndian.Uint32(raw[2:6])
	if size > maxRecordSize {
		return LineRecord{}, fmt.Errorf("%w: record size %d", ErrBadCapture, size)
	}
	rec := LineRecord{
		Compression: Compression(raw[0]),
		Plane:       Plane(raw[1]),
		Size:        size,
	}
	if size > 0 {
		rec.Data = make([]byte, size)
		if _, err := io.ReadFull(cr.r, rec.Data); err != nil {
			return LineRecord{}, fmt.Errorf("%w: truncated record payload: %v", ErrBadCapture, err)
		}
	}
	return rec, nil
}

// CaptureWriter writes line records to a capture stream.
type CaptureWriter struct {
	w  io.Writer
	zw *gzip.Writer
}

// NewCaptureWriter writes the magic and header and returns a writer
// for appending records. With compress set, the stream is gzip'd and
// Close must be called to flush it.
func NewCaptureWriter(w io.Writer, hdr CaptureHeader, compress bool) (*CaptureWriter, error) {
	cw := &CaptureWriter{w: w}
	if compress {
		cw.zw = gzip.NewWriter(w)
		cw.w = cw.zw
	}

	var raw [14]byte
	copy(raw[:4], captureMagic)
	raw[4] = byte(hdr.Mode)
	if hdr.LongBoundary {
		raw[5] = 1
	}
	binary.LittleEndian.PutUint32(raw[6:10], hdr.Pixels)
	binary.LittleEndian.PutUint32(raw[10:14], hdr.Lines)
	if _, err := cw.w.Write(raw[:]); err != nil {
		return nil, fmt.Errorf("scandec: write capture header: %w", err)
	}
	return cw, nil
}

// WriteRecord appends one framed record. The record's declared Size is
// ignored; the payload written is exactly len(rec.Data).
func (cw *CaptureWriter) WriteRecord(rec LineRecord) error {
	var raw [6]byte
	raw[0] = byte(rec.Compression)
	raw[1] = byte(rec.Plane)
	binary.LittleEndian.PutUint32(raw[2:6], uint32(len(rec.Data)))
	if _, err := cw.w.Write(raw[:]); err != nil {
		return fmt.Errorf("scandec: write record header: %w", err)
	}
	if _, err := cw.w.Write(rec.Data); err != nil {
		return fmt.Errorf("scandec: write record payload: %w", err)
	}
	return nil
}

// Close flushes the gzip stream if the capture is compressed. It does
// not close the underlying writer.
func (cw *CaptureWriter) Close() error {
	if cw.zw != nil {
		return cw.zw.Close()
	}
	return nil
}
