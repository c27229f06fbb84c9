package scandec

// whiteThreshold is the fixed 8-bit brightness above which a pixel
// quantizes to white. It defines wire compatibility with the hardware
// and is not configurable.
const whiteThreshold = 128

// white is the sample value used for whole-line white fill, for packed
// 1-bit and byte-per-pixel output alike.
const white = 0xFF

// quantizeLine packs up to pixels 8-bit samples into dst as 1-bit
// samples, MSB first within each byte. dst must be pre-zeroed; padding
// bits past the last pixel stay 0. Samples beyond len(samples) are
// treated as black.
func quantizeLine(dst []byte, samples []byte, pixels int) {
	if pixels > len(samples) {
		pixels = len(samples)
	}
	if pixels > len(dst)*8 {
		pixels = len(dst) * 8
	}
	for i := 0; i < pixels; i++ {
		if samples[i] >= whiteThreshold {
			dst[i/8] |= 0x80 >> (i % 8)
		}
	}
}
