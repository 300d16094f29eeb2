// Package cmd implements the stegimg command line interface.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-steganography/config"
	"image-steganography/imageio"
	"image-steganography/logging"
	"image-steganography/stego"
)

// Set at build time with
// -ldflags "-X image-steganography/cmd.Version=... -X image-steganography/cmd.Commit=...".
var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""
)

// app carries the state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	decoder    *imageio.ImageDecoder
}

func (a *app) codec() *stego.Codec {
	return stego.NewCodec(stego.WithLogger(a.logger.Named("codec")))
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{decoder: imageio.NewImageDecoder()}

	rootCmd := &cobra.Command{
		Use:   "stegimg",
		Short: "Hide text messages in the blue channel of images",
		Long: `stegimg hides a text message in the least significant bit of the blue channel
of a raster image, starting at a chosen pixel offset, and recovers it later.
Offsets accept any integer notation, for example 64, 0x40 or 0o100.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a config file (yaml, toml or json)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Bool("log-dev", false, "human friendly development logging")

	rootCmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newInfoCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// parseOffset accepts decimal, hex (0x), octal (0o) and binary (0b) offsets.
func parseOffset(s string) (uint, error) {
	offset, err := strconv.ParseUint(s, 0, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return uint(offset), nil
}
