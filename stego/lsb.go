// Package stego to implement LSB steganography over the blue channel of an image
package stego

import (
	"fmt"

	"go.uber.org/zap"
)

// Canvas is a mutable grid of RGB pixels. Implementations are owned by the
// caller; Codec only borrows them for the duration of a call.
type Canvas interface {
	Width() int
	Height() int
	Pixel(x, y int) (r, g, b uint8)
	SetPixel(x, y int, r, g, b uint8)
}

// Codec writes and reads bitstreams in the least significant bit of the blue
// channel. It holds no per-canvas state; concurrent calls on the same canvas
// must be serialized by the caller.
type Codec struct {
	logger *zap.Logger
}

type Option func(*Codec)

// WithLogger sets the logger used for per-bit diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the image length of the canvas: one usable bit per pixel,
// expressed in whole bytes.
func Capacity(canvas Canvas) int {
	return canvas.Width() * canvas.Height() / BitsInByte
}

// MaxMessageLength returns how many characters fit in canvas when encoding at
// offset, or 0 if not even the terminator fits.
func MaxMessageLength(canvas Canvas, offset uint) int {
	capacityBits := Capacity(canvas) * BitsInByte
	if offset > uint(capacityBits) {
		return 0
	}
	n := (capacityBits-int(offset))/BitsInByte - 1
	if n < 0 {
		return 0
	}
	return n
}

// Encode frames message and writes it at offset, returning the number of
// blue channel bits that actually changed.
func (c *Codec) Encode(canvas Canvas, offset uint, message string) (int, error) {
	bits, err := Frame(message)
	if err != nil {
		return 0, err
	}
	return c.Write(canvas, offset, bits)
}

// Decode reads the terminated bitstream at offset and unframes it.
func (c *Codec) Decode(canvas Canvas, offset uint) (string, error) {
	bits, err := c.Read(canvas, offset)
	if err != nil {
		return "", err
	}
	return Unframe(bits), nil
}

// Write stores bits in canvas starting at offset. Red and green channels are
// never touched, and pixels outside [offset, offset+len(bits)) are left as is.
func (c *Codec) Write(canvas Canvas, offset uint, bits Bitstream) (int, error) {
	width, height := canvas.Width(), canvas.Height()
	imageLength := Capacity(canvas)
	capacityBits := imageLength * BitsInByte
	total := len(bits)

	c.logger.Debug("data bitstream",
		zap.Stringer("bits", bits),
		zap.Int("length", total),
	)
	c.logger.Debug("image dimensions", zap.Int("width", width), zap.Int("height", height))

	switch {
	case capacityBits < total:
		return 0, fmt.Errorf("%w: %d bits needed, image length %d bytes", ErrMessageTooLarge, total, imageLength)
	case offset > uint(capacityBits):
		return 0, fmt.Errorf("%w: offset %d, image length %d bytes", ErrOffsetOutOfRange, offset, imageLength)
	case capacityBits-int(offset) < total:
		return 0, fmt.Errorf("%w: offset %d leaves %d bits, %d needed",
			ErrInsufficientSpace, offset, capacityBits-int(offset), total)
	}

	changed := 0
	for i, bit := range bits {
		x, y := position(i, offset, width)
		r, g, b := canvas.Pixel(x, y)
		modified := b&^1 | bit&1
		if modified == b {
			continue
		}
		canvas.SetPixel(x, y, r, g, modified)
		if ce := c.logger.Check(zap.DebugLevel, "bit changed"); ce != nil {
			ce.Write(
				zap.Int("index", i),
				zap.Int("total", total),
				zap.Uint8s("from", []uint8{r, g, b}),
				zap.Uint8s("to", []uint8{r, g, modified}),
			)
		}
		changed++
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(changed) / float64(total) * 100
	}
	c.logger.Debug("bits changed",
		zap.Int("changed", changed),
		zap.Int("total", total),
		zap.Float64("percent", ratio),
	)
	return changed, nil
}

// Read scans canvas from offset until a byte-aligned terminator appears and
// returns the bits read, terminator included. The scan never goes past the
// canvas capacity.
func (c *Codec) Read(canvas Canvas, offset uint) (Bitstream, error) {
	width := canvas.Width()
	imageLength := Capacity(canvas)
	capacityBits := imageLength * BitsInByte

	c.logger.Debug("image dimensions", zap.Int("width", width), zap.Int("height", canvas.Height()))

	if offset > uint(capacityBits) {
		return nil, fmt.Errorf("%w: offset %d, image length %d bytes", ErrOffsetOutOfRange, offset, imageLength)
	}

	available := capacityBits - int(offset)
	bits := make(Bitstream, 0, BitsInByte*4)
	for i := 0; !IsFinished(bits); i++ {
		if i >= available {
			return nil, fmt.Errorf("%w: scanned %d bits from offset %d", ErrNoTerminator, i, offset)
		}
		x, y := position(i, offset, width)
		_, _, b := canvas.Pixel(x, y)
		bits = append(bits, b&1)
	}

	c.logger.Debug("message terminated",
		zap.Stringer("bits", bits),
		zap.Int("length", len(bits)),
	)
	return bits, nil
}

// position maps bit index i to its pixel in row-major order.
func position(i int, offset uint, width int) (x, y int) {
	linear := i + int(offset)
	return linear % width, linear / width
}
