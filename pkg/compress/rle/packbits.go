package rle

import (
	"bytes"
	"errors"
	"fmt"
)

// PackBits implementation for Brother scan line compression.
// Reference: TIFF 6.0 specification, section 9 (Apple PackBits variant).

// Encode compresses data using the PackBits algorithm.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		// Attempt to find run
		runLen := 1
		for i+runLen < len(data) && runLen < 128 && data[i+runLen] == data[i] {
			runLen++
		}

		if runLen > 1 {
			// Write run
			header := int8(-(runLen - 1))
			buf.WriteByte(byte(header))
			buf.WriteByte(data[i])
			i += runLen
		} else {
			// Literal run
			// Consume until we find a run of 3 identical bytes, or 128 chars
			litStart := i
			litLen := 1
			for i+litLen < len(data) && litLen < 128 {
				// Check for run break (3 chars)
				if i+litLen+2 < len(data) &&
					data[i+litLen] == data[i+litLen+1] &&
					data[i+litLen] == data[i+litLen+2] {
					break
				}
				litLen++
			}

			// Write literal
			header := int8(litLen - 1)
			buf.WriteByte(byte(header))
			buf.Write(data[litStart : litStart+litLen])
			i += litLen
		}
	}
	return buf.Bytes()
}

// Decode decompresses PackBits data into a fresh buffer. A truncated
// stream is an error here; DecodeInto is the clamping variant used on
// the scan data path.
func Decode(data []byte, expectedLen int) ([]byte, error) {
	var buf bytes.Buffer
	if expectedLen > 0 {
		buf.Grow(expectedLen)
	}

	i := 0
	for i < len(data) {
		if expectedLen > 0 && buf.Len() >= expectedLen {
			break
		}

		n := int8(data[i])
		i++

		if n == -128 {
			// No-op
			continue
		}

		if n >= 0 {
			// Literal run: read n+1 bytes
			count := int(n) + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("rle: compressed data truncated in literal run (i=%d, count=%d, len=%d)", i, count, len(data))
			}
			buf.Write(data[i : i+count])
			i += count
		} else {
			// Replicate run: read 1 byte, repeat -n+1 times
			count := int(-n) + 1
			if i >= len(data) {
				return nil, errors.New("rle: compressed data truncated in replicate run")
			}
			val := data[i]
			i++
			for k := 0; k < count; k++ {
				buf.WriteByte(val)
			}
		}
	}
	return buf.Bytes(), nil
}

// DecodeInto expands PackBits data into dst and returns the number of
// bytes written. Scanner wire data is routinely truncated or oversized,
// so every run is clamped to both the remaining input and the remaining
// destination capacity; the function never errors and never writes past
// len(dst). Bytes of dst beyond the returned count are left untouched.
func DecodeInto(dst, src []byte) int {
	iP, oP := 0, 0
	for iP < len(src) && oP < len(dst) {
		n := int8(src[iP])
		iP++

		switch {
		case n >= 0:
			// Copy next n+1 bytes literally
			c := int(n) + 1
			if iP+c > len(src) {
				c = len(src) - iP
			}
			if oP+c > len(dst) {
				c = len(dst) - oP
			}
			copy(dst[oP:oP+c], src[iP:])
			iP += c
			oP += c
		case n != -128:
			// Repeat next byte 1-n times
			if iP >= len(src) {
				return oP
			}
			c := 1 - int(n)
			v := src[iP]
			iP++
			if oP+c > len(dst) {
				c = len(dst) - oP
			}
			for k := 0; k < c; k++ {
				dst[oP+k] = v
			}
			oP += c
		}
		// n == -128: no-op
	}
	return oP
}
