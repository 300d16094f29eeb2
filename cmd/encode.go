package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-steganography/imageio"
)

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <image> <offset> <message> <output-image>",
		Short: "Hide a message in an image",
		Long: `Encode writes the message, followed by a zero byte terminator, into the blue
channel of the image starting at the given offset, and saves the result to
output-image. The output format follows its extension and must be lossless
(png, bmp, tif/tiff or qoi). Images with transparency need png or tiff.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, message, outputPath := args[0], args[2], args[3]
			offset, err := parseOffset(args[1])
			if err != nil {
				return err
			}

			// fail before doing any work if the output can't hold the payload
			outFormat, err := imageio.FormatFromPath(outputPath)
			if err != nil {
				return err
			}
			if !outFormat.Lossless() {
				return fmt.Errorf("%w: %s", imageio.ErrLossyFormat, outputPath)
			}

			a.logger.Info("encoding message",
				zap.String("message", message),
				zap.String("offset", fmt.Sprintf("%#x", offset)),
				zap.String("image", imagePath),
			)

			canvas, _, err := a.decoder.LoadFile(imagePath)
			if err != nil {
				return err
			}
			if !outFormat.Preserves(canvas) {
				return fmt.Errorf("%w: %s cannot keep the transparency of %s", imageio.ErrLossyFormat, outFormat, imagePath)
			}

			report, err := imageio.Embed(a.codec(), canvas, offset, message)
			if err != nil {
				return err
			}

			if err := a.decoder.SaveFile(outputPath, canvas); err != nil {
				return err
			}

			a.logger.Info("message encoded",
				zap.String("output", outputPath),
				zap.Int("changed_bits", report.ChangedBits),
				zap.Int("total_bits", report.TotalBits),
				zap.Float64("psnr", report.PSNR),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d bits changed, written to %s\n", report.ChangedBits, report.TotalBits, outputPath)
			return nil
		},
	}
}
