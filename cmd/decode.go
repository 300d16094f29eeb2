package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image> <offset>",
		Short: "Recover a message hidden in an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := args[0]
			offset, err := parseOffset(args[1])
			if err != nil {
				return err
			}

			a.logger.Info("decoding message",
				zap.String("offset", fmt.Sprintf("%#x", offset)),
				zap.String("image", imagePath),
			)

			canvas, _, err := a.decoder.LoadFile(imagePath)
			if err != nil {
				return err
			}

			message, err := a.codec().Decode(canvas, offset)
			if err != nil {
				return err
			}

			a.logger.Info("decoded message", zap.String("message", message))
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}
