package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrLossyFormat is returned when asked to write a format that would not
	// preserve least significant bits.
	ErrLossyFormat = errors.New("lossy image format cannot carry hidden data")

	ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatQOI  Format = "qoi"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
)

var magics = []struct {
	format Format
	prefix []byte
}{
	{FormatPNG, []byte("\x89PNG\r\n\x1a\n")},
	{FormatJPEG, []byte{0xff, 0xd8, 0xff}},
	{FormatGIF, []byte("GIF8")},
	{FormatBMP, []byte("BM")},
	{FormatTIFF, []byte("II*\x00")},
	{FormatTIFF, []byte("MM\x00*")},
	{FormatQOI, []byte("qoif")},
}

var extensions = map[string]Format{
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".qoi":  FormatQOI,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
}

// Sniff detects the image format from its leading bytes.
func Sniff(data []byte) (Format, error) {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.prefix) {
			return m.format, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// FormatFromPath picks the format matching the file extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
}

// Lossless reports whether the format can store 8-bit RGB channels exactly,
// at least for opaque images.
func (f Format) Lossless() bool {
	switch f {
	case FormatPNG, FormatBMP, FormatTIFF, FormatQOI:
		return true
	}
	return false
}

// Preserves reports whether canvas reads back pixel for pixel after being
// written in f. The BMP writer drops alpha and the QOI writer premultiplies
// it, so both only hold for opaque canvases.
func (f Format) Preserves(canvas *Canvas) bool {
	switch f {
	case FormatPNG, FormatTIFF:
		return true
	case FormatBMP, FormatQOI:
		return canvas.Image().Opaque()
	}
	return false
}

func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatQOI:
		return "image/qoi"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	}
	return "application/octet-stream"
}
