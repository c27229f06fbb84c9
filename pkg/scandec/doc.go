// Package scandec decodes the compressed per-line raster data produced
// by Brother-class flatbed scanners into caller-owned pixel buffers.
//
// The wire protocol delivers one framed line record at a time; each
// record is whole-line white fill, uncompressed samples, or PackBits
// compressed samples. Monochrome output is quantized to packed 1-bit,
// color arrives as separate red/green/blue planes that are interleaved
// once a full triple has been received.
package scandec
