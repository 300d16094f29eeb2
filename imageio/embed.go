package imageio

import (
	"image-steganography/models"
	"image-steganography/stego"
)

// Embed hides message in canvas at offset and reports how much of the image
// changed.
func Embed(codec *stego.Codec, canvas *Canvas, offset uint, message string) (*models.EncodeReport, error) {
	original := canvas.Clone()

	changed, err := codec.Encode(canvas, offset, message)
	if err != nil {
		return nil, err
	}

	psnr, err := CalculatePSNR(original, canvas)
	if err != nil {
		return nil, err
	}

	return &models.EncodeReport{
		ChangedBits: changed,
		TotalBits:   stego.FramedLength(message),
		PSNR:        psnr,
	}, nil
}
