package scandec

import "image"

// FrameAssembler accumulates emitted lines into a standard library
// image for host-side consumers. It copies each line, so the caller
// may reuse its destination buffer between Submit calls.
type FrameAssembler struct {
	cfg    Config
	layout LineLayout
	data   []byte
	lines  int
}

func NewFrameAssembler(cfg Config, layout LineLayout) *FrameAssembler {
	return &FrameAssembler{cfg: cfg, layout: layout}
}

// AppendLine copies one decoded line. Short lines are padded with
// zeros to the layout stride.
func (f *FrameAssembler) AppendLine(line []byte) {
	if len(line) > f.layout.BytesPerLine {
		line = line[:f.layout.BytesPerLine]
	}
	f.data = append(f.data, line...)
	f.data = append(f.data, make([]byte, f.layout.BytesPerLine-len(line))...)
	f.lines++
}

// Lines returns the number of lines appended so far.
func (f *FrameAssembler) Lines() int { return f.lines }

// Bytes returns the raw raster: Lines() rows of BytesPerLine each.
func (f *FrameAssembler) Bytes() []byte { return f.data }

// Image renders the accumulated lines. Monochrome bits expand to 0x00
// and 0xFF gray; RGB lines map straight into an RGBA image.
func (f *FrameAssembler) Image() image.Image {
	w, h := int(f.cfg.Pixels), f.lines
	stride := f.layout.BytesPerLine

	switch f.cfg.Mode {
	case RGB24Bit:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := f.data[y*stride:]
			for x := 0; x < w; x++ {
				i := img.PixOffset(x, y)
				img.Pix[i+0] = row[x*3+0]
				img.Pix[i+1] = row[x*3+1]
				img.Pix[i+2] = row[x*3+2]
				img.Pix[i+3] = 0xFF
			}
		}
		return img
	case Gray8Bit:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], f.data[y*stride:])
		}
		return img
	default:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			row := f.data[y*stride:]
			for x := 0; x < w; x++ {
				if row[x/8]&(0x80>>(x%8)) != 0 {
					img.Pix[y*img.Stride+x] = 0xFF
				}
			}
		}
		return img
	}
}
