package imageio

import (
	"image"
	"image/draw"
)

// Canvas is a mutable RGB view over a non-premultiplied image, so channel
// values read back exactly as they were written. Alpha is preserved.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas copies src into a fresh canvas.
func NewCanvas(src image.Image) *Canvas {
	if nrgba, ok := src.(*image.NRGBA); ok {
		return &Canvas{img: cloneNRGBA(nrgba)}
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return &Canvas{img: dst}
}

// NewBlankCanvas returns an opaque black canvas of the given size.
func NewBlankCanvas(width, height int) *Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &Canvas{img: img}
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Pixel returns the RGB channels at (x, y), relative to the image origin.
func (c *Canvas) Pixel(x, y int) (r, g, b uint8) {
	i := c.offset(x, y)
	return c.img.Pix[i], c.img.Pix[i+1], c.img.Pix[i+2]
}

// SetPixel overwrites the RGB channels at (x, y), keeping alpha.
func (c *Canvas) SetPixel(x, y int, r, g, b uint8) {
	i := c.offset(x, y)
	c.img.Pix[i], c.img.Pix[i+1], c.img.Pix[i+2] = r, g, b
}

// Image exposes the underlying image. Mutating it mutates the canvas.
func (c *Canvas) Image() *image.NRGBA {
	return c.img
}

func (c *Canvas) Clone() *Canvas {
	return &Canvas{img: cloneNRGBA(c.img)}
}

func (c *Canvas) offset(x, y int) int {
	return c.img.PixOffset(c.img.Rect.Min.X+x, c.img.Rect.Min.Y+y)
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(src.Rect.Min.X, y):dst.PixOffset(src.Rect.Max.X, y)],
			src.Pix[src.PixOffset(src.Rect.Min.X, y):src.PixOffset(src.Rect.Max.X, y)])
	}
	return dst
}
