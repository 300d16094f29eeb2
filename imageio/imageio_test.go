package imageio_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"image-steganography/imageio"
	"image-steganography/stego"
)

func makeTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: 255,
			})
		}
	}
	return img
}

// makeTranslucentImage cycles alpha through 0, 128 and 255 so that any
// premultiplying or alpha dropping writer shows up in the pixels.
func makeTranslucentImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	alphas := []uint8{0, 128, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(10 + x),
				G: uint8(20 + y),
				B: uint8(31 + x*y),
				A: alphas[(y*w+x)%len(alphas)],
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCanvasPixelAccess(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.SetNRGBA(11, 21, color.NRGBA{R: 1, G: 2, B: 3, A: 40})

	canvas := imageio.NewCanvas(src)
	require.Equal(t, 3, canvas.Width())
	require.Equal(t, 2, canvas.Height())

	r, g, b := canvas.Pixel(1, 1)
	require.Equal(t, []uint8{1, 2, 3}, []uint8{r, g, b})

	canvas.SetPixel(1, 1, 9, 8, 7)
	require.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 40}, canvas.Image().NRGBAAt(11, 21))

	// the source is copied, not shared
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 40}, src.NRGBAAt(11, 21))

	clone := canvas.Clone()
	clone.SetPixel(0, 0, 255, 255, 255)
	r, _, _ = canvas.Pixel(0, 0)
	require.Zero(t, r)
}

func TestSniff(t *testing.T) {
	t.Parallel()

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, makeTestImage(4, 4), nil))

	for _, tc := range []struct {
		data []byte
		want imageio.Format
	}{
		{data: encodePNG(t, makeTestImage(2, 2)), want: imageio.FormatPNG},
		{data: jpg.Bytes(), want: imageio.FormatJPEG},
		{data: []byte("GIF89a...."), want: imageio.FormatGIF},
		{data: []byte("BM\x00\x00"), want: imageio.FormatBMP},
		{data: []byte("II*\x00...."), want: imageio.FormatTIFF},
		{data: []byte("MM\x00*...."), want: imageio.FormatTIFF},
		{data: []byte("qoif...."), want: imageio.FormatQOI},
	} {
		got, err := imageio.Sniff(tc.data)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := imageio.Sniff([]byte("not an image"))
	require.ErrorIs(t, err, imageio.ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]imageio.Format{
		"out.png":       imageio.FormatPNG,
		"OUT.PNG":       imageio.FormatPNG,
		"a/b/c.bmp":     imageio.FormatBMP,
		"scan.tif":      imageio.FormatTIFF,
		"scan.tiff":     imageio.FormatTIFF,
		"frame.qoi":     imageio.FormatQOI,
		"photo.jpeg":    imageio.FormatJPEG,
		"animation.gif": imageio.FormatGIF,
	} {
		got, err := imageio.FormatFromPath(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := imageio.FormatFromPath("notes.txt")
	require.ErrorIs(t, err, imageio.ErrUnsupportedFormat)
}

func TestLosslessRoundTrip(t *testing.T) {
	t.Parallel()

	decoder := imageio.NewImageDecoder()
	codec := stego.NewCodec(stego.WithLogger(zaptest.NewLogger(t)))

	for _, format := range []imageio.Format{imageio.FormatPNG, imageio.FormatBMP, imageio.FormatTIFF, imageio.FormatQOI} {
		t.Run(string(format), func(t *testing.T) {
			canvas := imageio.NewCanvas(makeTestImage(32, 24))
			_, err := codec.Encode(canvas, 5, "hidden in "+string(format))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, decoder.Encode(&buf, canvas, format))

			decoded, got, err := decoder.Decode(buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, format, got)
			require.Equal(t, canvas.Image().Pix, decoded.Image().Pix)

			message, err := codec.Decode(decoded, 5)
			require.NoError(t, err)
			require.Equal(t, "hidden in "+string(format), message)
		})
	}
}

func TestTranslucentRoundTrip(t *testing.T) {
	t.Parallel()

	decoder := imageio.NewImageDecoder()
	codec := stego.NewCodec(stego.WithLogger(zaptest.NewLogger(t)))

	for _, format := range []imageio.Format{imageio.FormatPNG, imageio.FormatTIFF} {
		t.Run(string(format), func(t *testing.T) {
			canvas := imageio.NewCanvas(makeTranslucentImage(16, 16))
			require.True(t, format.Preserves(canvas))
			_, err := codec.Encode(canvas, 0, "alpha test msg")
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, decoder.Encode(&buf, canvas, format))

			decoded, _, err := decoder.Decode(buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, canvas.Image().Pix, decoded.Image().Pix)

			message, err := codec.Decode(decoded, 0)
			require.NoError(t, err)
			require.Equal(t, "alpha test msg", message)
		})
	}

	for _, format := range []imageio.Format{imageio.FormatBMP, imageio.FormatQOI} {
		t.Run(string(format), func(t *testing.T) {
			canvas := imageio.NewCanvas(makeTranslucentImage(16, 16))
			require.False(t, format.Preserves(canvas))

			var buf bytes.Buffer
			require.ErrorIs(t, decoder.Encode(&buf, canvas, format), imageio.ErrLossyFormat)
			require.Zero(t, buf.Len())
			require.Equal(t, imageio.FormatPNG, imageio.OutputFormat(format, canvas))

			err := decoder.SaveFile(filepath.Join(t.TempDir(), "out"+format.Extension()), canvas)
			require.ErrorIs(t, err, imageio.ErrLossyFormat)
		})
	}
}

func TestEncodeRejectsLossyFormats(t *testing.T) {
	t.Parallel()

	decoder := imageio.NewImageDecoder()
	canvas := imageio.NewBlankCanvas(4, 4)
	for _, format := range []imageio.Format{imageio.FormatJPEG, imageio.FormatGIF} {
		var buf bytes.Buffer
		require.ErrorIs(t, decoder.Encode(&buf, canvas, format), imageio.ErrLossyFormat)
		require.Zero(t, buf.Len())
	}

	require.Equal(t, imageio.FormatPNG, imageio.OutputFormat(imageio.FormatJPEG, canvas))
	require.Equal(t, imageio.FormatPNG, imageio.OutputFormat(imageio.FormatGIF, canvas))
	require.Equal(t, imageio.FormatBMP, imageio.OutputFormat(imageio.FormatBMP, canvas))
	require.Equal(t, imageio.FormatQOI, imageio.OutputFormat(imageio.FormatQOI, canvas))
}

func TestDecodeLossyInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, makeTestImage(8, 8), nil))

	canvas, format, err := imageio.NewImageDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, imageio.FormatGIF, format)
	require.Equal(t, 8, canvas.Width())
	require.Equal(t, 8, canvas.Height())
}

func TestDecodeCorruptImage(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, makeTestImage(8, 8))
	_, _, err := imageio.NewImageDecoder().Decode(data[:20])
	require.Error(t, err)
}

func TestDecodePixelLimit(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, makeTestImage(16, 16))

	_, _, err := imageio.NewImageDecoder(imageio.WithMaxPixels(255)).Decode(data)
	require.ErrorIs(t, err, imageio.ErrImageTooLarge)

	canvas, _, err := imageio.NewImageDecoder(imageio.WithMaxPixels(256)).Decode(data)
	require.NoError(t, err)
	require.Equal(t, 16, canvas.Width())

	_, _, err = imageio.NewImageDecoder(imageio.WithMaxPixels(0)).Decode(data)
	require.NoError(t, err)

	// a header declaring a huge image is refused without decoding pixels
	huge := encodePNG(t, makeTestImage(1, 1))
	binary.BigEndian.PutUint32(huge[16:], 1<<20)
	binary.BigEndian.PutUint32(huge[20:], 1<<20)
	binary.BigEndian.PutUint32(huge[29:], crc32.ChecksumIEEE(huge[12:29]))
	_, _, err = imageio.NewImageDecoder().Decode(huge)
	require.ErrorIs(t, err, imageio.ErrImageTooLarge)
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Parallel()

	decoder := imageio.NewImageDecoder()
	dir := t.TempDir()
	canvas := imageio.NewCanvas(makeTestImage(16, 16))

	path := filepath.Join(dir, "out.png")
	require.NoError(t, decoder.SaveFile(path, canvas))

	loaded, format, err := decoder.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, imageio.FormatPNG, format)
	require.Equal(t, canvas.Image().Pix, loaded.Image().Pix)

	err = decoder.SaveFile(filepath.Join(dir, "out.jpg"), canvas)
	require.ErrorIs(t, err, imageio.ErrLossyFormat)
	_, statErr := os.Stat(filepath.Join(dir, "out.jpg"))
	require.True(t, os.IsNotExist(statErr))

	_, _, err = decoder.LoadFile(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestCalculatePSNR(t *testing.T) {
	t.Parallel()

	original := imageio.NewCanvas(makeTestImage(8, 8))

	psnr, err := imageio.CalculatePSNR(original, original.Clone())
	require.NoError(t, err)
	require.True(t, math.IsInf(psnr, 1))
	require.True(t, imageio.ValidatePSNR(psnr, 40))

	modified := original.Clone()
	r, g, b := modified.Pixel(0, 0)
	modified.SetPixel(0, 0, r, g, b^1)
	psnr, err = imageio.CalculatePSNR(original, modified)
	require.NoError(t, err)
	// one unit of error over 192 samples
	assert.InDelta(t, 20*math.Log10(255/math.Sqrt(1.0/192)), psnr, 1e-9)
	require.True(t, imageio.ValidatePSNR(psnr, 40))
	require.False(t, imageio.ValidatePSNR(psnr, 100))

	_, err = imageio.CalculatePSNR(original, imageio.NewBlankCanvas(4, 4))
	require.Error(t, err)
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	codec := stego.NewCodec()
	canvas := imageio.NewCanvas(makeTestImage(16, 16))

	report, err := imageio.Embed(codec, canvas, 0, "report")
	require.NoError(t, err)
	require.Equal(t, 56, report.TotalBits)
	require.LessOrEqual(t, report.ChangedBits, report.TotalBits)
	require.Greater(t, report.PSNR, 40.0)

	_, err = imageio.Embed(codec, imageio.NewBlankCanvas(4, 4), 0, "too long")
	require.ErrorIs(t, err, stego.ErrMessageTooLarge)
}

func TestAnalyzeImage(t *testing.T) {
	t.Parallel()

	meta := imageio.NewImageDecoder().AnalyzeImage(imageio.NewBlankCanvas(10, 10), imageio.FormatPNG, 16)
	require.Equal(t, 10, meta.Width)
	require.Equal(t, 10, meta.Height)
	require.Equal(t, "png", meta.Format)
	require.Equal(t, 12, meta.CapacityBytes)
	require.Equal(t, 96, meta.CapacityBits)
	require.Equal(t, uint(16), meta.Offset)
	require.Equal(t, 9, meta.MaxMessageLength)
}
