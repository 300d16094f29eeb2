// Package imageio loads images into mutable canvases and writes them back
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"image-steganography/models"
	"image-steganography/stego"
)

// DefaultMaxPixels bounds decoded images to about 256 MiB of NRGBA pixels.
const DefaultMaxPixels = 64 << 20

type ImageDecoder struct {
	maxPixels int64
}

type DecoderOption func(*ImageDecoder)

// WithMaxPixels rejects images whose declared width times height exceeds n.
// n <= 0 disables the check.
func WithMaxPixels(n int64) DecoderOption {
	return func(d *ImageDecoder) {
		d.maxPixels = n
	}
}

func NewImageDecoder(opts ...DecoderOption) *ImageDecoder {
	d := &ImageDecoder{
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads an image in any supported format into a new canvas. The
// header is checked against the pixel limit before any pixel is decoded.
func (d *ImageDecoder) Decode(data []byte) (*Canvas, Format, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}

	cfg, err := decodeConfig(format, bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s header: %w", format, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); d.maxPixels > 0 && pixels > d.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d is over %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, d.maxPixels)
	}

	r := bytes.NewReader(data)
	var img image.Image
	switch format {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatQOI:
		img, err = qoi.Decode(r)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", format, err)
	}

	return NewCanvas(img), format, nil
}

func decodeConfig(format Format, r io.Reader) (image.Config, error) {
	switch format {
	case FormatPNG:
		return png.DecodeConfig(r)
	case FormatJPEG:
		return jpeg.DecodeConfig(r)
	case FormatGIF:
		return gif.DecodeConfig(r)
	case FormatBMP:
		return bmp.DecodeConfig(r)
	case FormatTIFF:
		return tiff.DecodeConfig(r)
	case FormatQOI:
		return qoi.DecodeConfig(r)
	}
	return image.Config{}, ErrUnsupportedFormat
}

// Encode writes canvas in format, refusing any format that would not give
// back the same pixels.
func (d *ImageDecoder) Encode(w io.Writer, canvas *Canvas, format Format) error {
	if !format.Lossless() {
		return fmt.Errorf("%w: %s", ErrLossyFormat, format)
	}
	if !format.Preserves(canvas) {
		return fmt.Errorf("%w: %s does not keep translucent pixels", ErrLossyFormat, format)
	}

	img := canvas.Image()
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatQOI:
		err = qoi.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// OutputFormat returns the format a stego canvas decoded from format should
// be written in: the same one when it preserves canvas, PNG otherwise.
func OutputFormat(format Format, canvas *Canvas) Format {
	if format.Preserves(canvas) {
		return format
	}
	return FormatPNG
}

// LoadFile reads and decodes the image at path.
func (d *ImageDecoder) LoadFile(path string) (*Canvas, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return d.Decode(data)
}

// SaveFile encodes canvas in the format implied by the extension of path and
// replaces path atomically.
func (d *ImageDecoder) SaveFile(path string, canvas *Canvas) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf, canvas, format); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// AnalyzeImage describes the hiding capacity of canvas at offset.
func (d *ImageDecoder) AnalyzeImage(canvas *Canvas, format Format, offset uint) *models.ImageMetadata {
	return &models.ImageMetadata{
		Width:            canvas.Width(),
		Height:           canvas.Height(),
		Format:           string(format),
		CapacityBytes:    stego.Capacity(canvas),
		CapacityBits:     stego.Capacity(canvas) * stego.BitsInByte,
		Offset:           offset,
		MaxMessageLength: stego.MaxMessageLength(canvas, offset),
	}
}
