package scandec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/scandec.go/pkg/compress/rle"
)

func TestSession_WhiteFillMono(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Monochrome1Bit, Pixels: 16})
	require.NoError(t, err)
	require.Equal(t, 2, layout.BytesPerLine)

	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: WhiteFill}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xFF, 0xFF}, dst)
}

func TestSession_RawGray(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 4})
	require.NoError(t, err)
	require.Equal(t, 4, layout.BytesPerLine)

	in := []byte{10, 200, 5, 255}
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: Raw, Data: in, Size: 4}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 4, n)
	assert.Equal(t, in, dst)
}

func TestSession_RawMonoQuantizes(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Monochrome1Bit, Pixels: 8})
	require.NoError(t, err)
	require.Equal(t, 1, layout.BytesPerLine)

	samples := []byte{0, 255, 200, 10, 130, 127, 128, 5}
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: Raw, Data: samples, Size: 8}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x6A), dst[0])
}

func TestSession_PackBitsMonoQuantizes(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Monochrome1Bit, Pixels: 8})
	require.NoError(t, err)

	samples := []byte{0, 255, 200, 10, 130, 127, 128, 5}
	packed := rle.Encode(samples)
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: PackBits, Data: packed, Size: uint32(len(packed))}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x6A), dst[0])
}

func TestSession_PackBitsGray(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 10})
	require.NoError(t, err)

	line := []byte{7, 7, 7, 7, 7, 7, 1, 2, 3, 4}
	packed := rle.Encode(line)
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: PackBits, Data: packed, Size: uint32(len(packed))}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 10, n)
	assert.Equal(t, line, dst)
}

func TestSession_RGBPlaneAssembly(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: RGB24Bit, Pixels: 2})
	require.NoError(t, err)
	require.Equal(t, 6, layout.BytesPerLine)

	dst := make([]byte, layout.BytesPerLine)
	raw := func(plane Plane, data []byte) LineRecord {
		return LineRecord{Compression: Raw, Plane: plane, Data: data, Size: uint32(len(data))}
	}

	n, status := s.Submit(raw(PlaneRed, []byte{1, 2}), dst)
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 0, n)

	n, status = s.Submit(raw(PlaneGreen, []byte{3, 4}), dst)
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 0, n)

	n, status = s.Submit(raw(PlaneBlue, []byte{5, 6}), dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{1, 3, 5, 2, 4, 6}, dst)
}

func TestSession_BlueWithoutRedGreenBuffers(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: RGB24Bit, Pixels: 2})
	require.NoError(t, err)

	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: Raw, Plane: PlaneBlue, Data: []byte{5, 6}, Size: 2}, dst)
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Close())
}

func TestSession_RGBRowFlagsResetAfterEmit(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: RGB24Bit, Pixels: 1})
	require.NoError(t, err)

	dst := make([]byte, layout.BytesPerLine)
	submit := func(plane Plane, v byte) Status {
		_, status := s.Submit(LineRecord{Compression: Raw, Plane: plane, Data: []byte{v}, Size: 1}, dst)
		return status
	}

	require.Equal(t, Buffered, submit(PlaneRed, 1))
	require.Equal(t, Buffered, submit(PlaneGreen, 2))
	require.Equal(t, Emitted, submit(PlaneBlue, 3))
	assert.Equal(t, []byte{1, 2, 3}, dst)

	// A second blue straight after must not emit: the row flags were
	// cleared by the interleave.
	assert.Equal(t, Buffered, submit(PlaneBlue, 9))

	require.Equal(t, Buffered, submit(PlaneGreen, 5))
	require.Equal(t, Buffered, submit(PlaneRed, 4))
	require.Equal(t, Emitted, submit(PlaneBlue, 6))
	assert.Equal(t, []byte{4, 5, 6}, dst)
}

func TestSession_RGBWhiteFillPlane(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: RGB24Bit, Pixels: 2})
	require.NoError(t, err)

	dst := make([]byte, layout.BytesPerLine)
	s.Submit(LineRecord{Compression: WhiteFill, Plane: PlaneRed}, dst)
	s.Submit(LineRecord{Compression: Raw, Plane: PlaneGreen, Data: []byte{8, 9}, Size: 2}, dst)
	n, status := s.Submit(LineRecord{Compression: Raw, Plane: PlaneBlue, Data: []byte{1, 2}, Size: 2}, dst)
	require.Equal(t, Emitted, status)
	require.Equal(t, 6, n)
	assert.Equal(t, []byte{0xFF, 8, 1, 0xFF, 9, 2}, dst)
}

func TestSession_UnknownCompressionFallsBackToRaw(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 4})
	require.NoError(t, err)

	in := []byte{1, 2, 3, 4}
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: Compression(99), Data: in, Size: 4}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 4, n)
	assert.Equal(t, in, dst)
}

func TestSession_ShortRawPayloadZeroFills(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 6})
	require.NoError(t, err)
	require.Equal(t, 6, layout.BytesPerLine)

	dst := []byte{9, 9, 9, 9, 9, 9}
	n, status := s.Submit(LineRecord{Compression: Raw, Data: []byte{1, 2}, Size: 2}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 0}, dst)
}

func TestSession_DeclaredSizeClampsPayload(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 4})
	require.NoError(t, err)

	// Size lies high: only the slice length is readable.
	dst := make([]byte, layout.BytesPerLine)
	n, status := s.Submit(LineRecord{Compression: Raw, Data: []byte{1, 2}, Size: 400}, dst)
	assert.Equal(t, Emitted, status)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 0, 0}, dst)
}

func TestSession_Faults(t *testing.T) {
	s := NewSession()
	_, err := s.Open(Config{Mode: Gray8Bit, Pixels: 4})
	require.NoError(t, err)

	n, status := s.Submit(LineRecord{Compression: Raw, Data: []byte{1}, Size: 1}, nil)
	assert.Equal(t, Fault, status)
	assert.Equal(t, 0, n)

	n, status = s.Submit(LineRecord{Compression: Raw, Data: nil, Size: 4}, make([]byte, 4))
	assert.Equal(t, Fault, status)
	assert.Equal(t, 0, n)

	// Zero-length input is a tolerated no-op, not a fault.
	_, status = s.Submit(LineRecord{Compression: Raw}, make([]byte, 4))
	assert.Equal(t, Emitted, status)
}

func TestSession_UndersizedDestinationBuffers(t *testing.T) {
	s := NewSession()
	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 8})
	require.NoError(t, err)
	require.Equal(t, 8, layout.BytesPerLine)

	n, status := s.Submit(LineRecord{Compression: WhiteFill}, make([]byte, 4))
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 0, n)
}

func TestSession_SubmitWhileClosedBuffers(t *testing.T) {
	s := NewSession()
	n, status := s.Submit(LineRecord{Compression: WhiteFill}, make([]byte, 8))
	assert.Equal(t, Buffered, status)
	assert.Equal(t, 0, n)
}

func TestSession_CloseIdempotentAndReopen(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Close()) // never opened

	_, err := s.Open(Config{Mode: RGB24Bit, Pixels: 4})
	require.NoError(t, err)
	assert.True(t, s.IsOpen())
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.False(t, s.IsOpen())
	assert.Zero(t, s.Layout())

	// Mid-row close then reopen in another mode.
	_, err = s.Open(Config{Mode: RGB24Bit, Pixels: 2})
	require.NoError(t, err)
	dst := make([]byte, 6)
	s.Submit(LineRecord{Compression: Raw, Plane: PlaneRed, Data: []byte{1, 2}, Size: 2}, dst)
	require.NoError(t, s.Close())

	layout, err := s.Open(Config{Mode: Gray8Bit, Pixels: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, layout.BytesPerLine)
}

func TestSession_FailedReopenClearsState(t *testing.T) {
	s := NewSession()
	_, err := s.Open(Config{Mode: Gray8Bit, Pixels: 4})
	require.NoError(t, err)
	require.True(t, s.IsOpen())

	_, err = s.Open(Config{Mode: Gray8Bit, Pixels: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)

	// Nothing of the prior session survives a failed reopen.
	assert.False(t, s.IsOpen())
	assert.Zero(t, s.Layout())
	assert.Zero(t, s.Config())
	assert.Empty(t, s.ID())
}

func TestSession_OpenErrors(t *testing.T) {
	s := NewSession()

	_, err := s.Open(Config{Mode: Gray8Bit, Pixels: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, s.IsOpen())

	_, err = s.Open(Config{Mode: RGB24Bit, Pixels: maxLinePixels + 1})
	assert.ErrorIs(t, err, ErrAllocation)
	assert.False(t, s.IsOpen())
}
