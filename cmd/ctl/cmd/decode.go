package cmd

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/jpfielding/scandec.go/pkg/scandec"
	"github.com/jpfielding/scandec.go/pkg/util"
	"github.com/spf13/cobra"
)

// NewDecodeCmd creates the decode cobra command
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode a scanner capture into an image",
		Long:  "Replays a framed scanner capture through the raster decode engine and writes the result as PNG or raw raster bytes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			outPath, _ := cmd.Flags().GetString("out")
			rawOut, _ := cmd.Flags().GetBool("raw")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("capture path is required. Use --file flag or provide as argument")
			}

			var in io.Reader
			if filePath == "-" {
				in = os.Stdin
			} else {
				f, err := os.Open(filePath)
				if err != nil {
					return fmt.Errorf("failed to open capture: %w", err)
				}
				defer f.Close()
				in = f
			}

			return runDecode(ctx, in, outPath, rawOut)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "capture file to decode ('-' for stdin)")
	pf.StringP("out", "o", "", "output path (default stdout)")
	pf.Bool("raw", false, "write raw raster bytes instead of PNG")

	return cmd
}

func runDecode(ctx context.Context, in io.Reader, outPath string, rawOut bool) error {
	cr, err := scandec.NewCaptureReader(in)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	hdr := cr.Header()

	session := scandec.NewSession()
	layout, err := session.Open(hdr.Config())
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	slog.InfoContext(ctx, "decoding capture",
		"capture", util.HashUUID(hdr),
		"session", session.ID(),
		"mode", hdr.Config().Mode.String(),
		"pixels", hdr.Pixels,
		"bytes_per_line", layout.BytesPerLine,
	)

	frame := scandec.NewFrameAssembler(hdr.Config(), layout)
	dst := make([]byte, layout.BytesPerLine)
	records, buffered, faults := 0, 0, 0
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read record %d: %w", records, err)
		}
		records++

		n, status := session.Submit(rec, dst)
		switch status {
		case scandec.Emitted:
			frame.AppendLine(dst[:n])
		case scandec.Buffered:
			buffered++
		case scandec.Fault:
			faults++
			slog.WarnContext(ctx, "record fault", "record", records, "plane", rec.Plane.String())
		}
	}

	slog.InfoContext(ctx, "capture decoded",
		"records", records,
		"lines", frame.Lines(),
		"buffered", buffered,
		"faults", faults,
	)

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if rawOut {
		_, err = out.Write(frame.Bytes())
		return err
	}
	return png.Encode(out, frame.Image())
}
