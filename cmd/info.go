package cmd

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <image> [offset]",
		Short: "Show how much text an image can hide",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var offset uint
			if len(args) == 2 {
				var err error
				if offset, err = parseOffset(args[1]); err != nil {
					return err
				}
			}

			canvas, format, err := a.decoder.LoadFile(args[0])
			if err != nil {
				return err
			}
			meta := a.decoder.AnalyzeImage(canvas, format, offset)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Property", "Value"})
			table.AppendBulk([][]string{
				{"Image", args[0]},
				{"Format", meta.Format},
				{"Dimensions", fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
				{"Capacity", fmt.Sprintf("%s (%d bits)", bytefmt.ByteSize(uint64(meta.CapacityBytes)), meta.CapacityBits)},
				{"Offset", fmt.Sprintf("%d (%#x)", meta.Offset, meta.Offset)},
				{"Max message length", strconv.Itoa(meta.MaxMessageLength)},
			})
			table.Render()
			return nil
		},
	}
}
