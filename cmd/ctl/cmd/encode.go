package cmd

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/jpfielding/scandec.go/pkg/compress/rle"
	"github.com/jpfielding/scandec.go/pkg/scandec"
	"github.com/jpfielding/scandec.go/pkg/util"
	"github.com/spf13/cobra"
)

// NewEncodeCmd creates the encode cobra command. It frames an image as
// the line records a scanner would transmit, which is how decode
// fixtures and bench captures get made without hardware.
func NewEncodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "frame an image as a scanner capture",
		Long:  "Converts a PNG/JPEG image into a framed scanner capture, compressing each line the way the hardware would.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			outPath, _ := cmd.Flags().GetString("out")
			modeName, _ := cmd.Flags().GetString("mode")
			gz, _ := cmd.Flags().GetBool("gzip")
			boundary, _ := cmd.Flags().GetBool("long-boundary")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" || outPath == "" {
				return fmt.Errorf("both --file and --out are required")
			}

			var mode scandec.ColorMode
			switch modeName {
			case "mono1":
				mode = scandec.Monochrome1Bit
			case "gray8":
				mode = scandec.Gray8Bit
			case "rgb24":
				mode = scandec.RGB24Bit
			default:
				return fmt.Errorf("unknown mode %q (mono1|gray8|rgb24)", modeName)
			}

			return runEncode(ctx, filePath, outPath, mode, boundary, gz)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "input image (PNG or JPEG)")
	pf.StringP("out", "o", "", "capture output path")
	pf.StringP("mode", "m", "gray8", "capture color mode (mono1|gray8|rgb24)")
	pf.Bool("gzip", false, "gzip the capture stream")
	pf.Bool("long-boundary", false, "pad output lines to a 4-byte boundary")

	return cmd
}

func runEncode(ctx context.Context, filePath, outPath string, mode scandec.ColorMode, boundary, gz bool) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()

	hdr := scandec.CaptureHeader{
		Mode:         mode,
		LongBoundary: boundary,
		Pixels:       uint32(bounds.Dx()),
		Lines:        uint32(bounds.Dy()),
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	defer out.Close()

	cw, err := scandec.NewCaptureWriter(out, hdr, gz)
	if err != nil {
		return err
	}

	records := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if mode == scandec.RGB24Bit {
			for _, p := range []scandec.Plane{scandec.PlaneRed, scandec.PlaneGreen, scandec.PlaneBlue} {
				if err := cw.WriteRecord(frameLine(channelSamples(img, y, p), p)); err != nil {
					return err
				}
				records++
			}
			continue
		}
		if err := cw.WriteRecord(frameLine(graySamples(img, y), scandec.PlaneNone)); err != nil {
			return err
		}
		records++
	}
	if err := cw.Close(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "capture written",
		"capture", util.HashUUID(hdr),
		"mode", mode.String(),
		"pixels", hdr.Pixels,
		"lines", hdr.Lines,
		"records", records,
	)
	return nil
}

// frameLine picks the cheapest wire encoding for one line of samples:
// a bare WhiteFill record for all-white lines, PackBits when it
// actually shrinks the payload, raw otherwise.
func frameLine(samples []byte, plane scandec.Plane) scandec.LineRecord {
	allWhite := true
	for _, s := range samples {
		if s != 0xFF {
			allWhite = false
			break
		}
	}
	if allWhite {
		return scandec.LineRecord{Compression: scandec.WhiteFill, Plane: plane}
	}

	if packed := rle.Encode(samples); len(packed) < len(samples) {
		return scandec.LineRecord{
			Compression: scandec.PackBits,
			Plane:       plane,
			Data:        packed,
			Size:        uint32(len(packed)),
		}
	}
	return scandec.LineRecord{
		Compression: scandec.Raw,
		Plane:       plane,
		Data:        samples,
		Size:        uint32(len(samples)),
	}
}

func graySamples(img image.Image, y int) []byte {
	bounds := img.Bounds()
	row := make([]byte, bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		row[x-bounds.Min.X] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
	}
	return row
}

func channelSamples(img image.Image, y int, plane scandec.Plane) []byte {
	bounds := img.Bounds()
	row := make([]byte, bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		r, g, b, _ := img.At(x, y).RGBA()
		switch plane {
		case scandec.PlaneRed:
			row[x-bounds.Min.X] = byte(r >> 8)
		case scandec.PlaneGreen:
			row[x-bounds.Min.X] = byte(g >> 8)
		default:
			row[x-bounds.Min.X] = byte(b >> 8)
		}
	}
	return row
}
