// Package handlers is made to handle requests
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"image-steganography/imageio"
	"image-steganography/models"
	"image-steganography/stego"
)

type StegoHandler struct {
	imageDecoder   *imageio.ImageDecoder
	codec          *stego.Codec
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewStegoHandler(logger *zap.Logger, maxUploadBytes, maxPixels int64) *StegoHandler {
	return &StegoHandler{
		imageDecoder:   imageio.NewImageDecoder(imageio.WithMaxPixels(maxPixels)),
		codec:          stego.NewCodec(stego.WithLogger(logger.Named("codec"))),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

func (h *StegoHandler) InsertMessage(c *gin.Context) {
	var req models.InsertRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	canvas, format, filename, ok := h.readImage(c)
	if !ok {
		return
	}

	report, err := imageio.Embed(h.codec, canvas, req.Offset, req.Message)
	if err != nil {
		h.abortWithStegoError(c, "Failed to embed message", err)
		return
	}

	outFormat := imageio.OutputFormat(format, canvas)
	var out bytes.Buffer
	if err := h.imageDecoder.Encode(&out, canvas, outFormat); err != nil {
		h.abortWithStegoError(c, "Failed to encode stego image", err)
		return
	}

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename(filename, outFormat)))

	c.Header("X-Stego-Method", "Blue channel LSB")
	c.Header("X-Stego-Changed-Bits", fmt.Sprintf("%d", report.ChangedBits))
	c.Header("X-Stego-Total-Bits", fmt.Sprintf("%d", report.TotalBits))
	c.Header("X-Stego-PSNR", formatPSNR(report.PSNR))
	c.Header("X-Stego-Capacity", fmt.Sprintf("%d", stego.Capacity(canvas)))

	c.Data(http.StatusOK, outFormat.ContentType(), out.Bytes())

	h.logger.Info("message embedded",
		zap.String("file", filename),
		zap.Uint("offset", req.Offset),
		zap.Int("changed_bits", report.ChangedBits),
		zap.Int("total_bits", report.TotalBits),
	)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	var req models.ExtractRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	canvas, _, filename, ok := h.readImage(c)
	if !ok {
		return
	}

	secret, err := h.codec.Decode(canvas, req.Offset)
	if err != nil {
		h.abortWithStegoError(c, "Failed to extract message", err)
		return
	}

	h.logger.Info("message extracted",
		zap.String("file", filename),
		zap.Uint("offset", req.Offset),
		zap.Int("length", utf8.RuneCountInString(secret)),
	)
	c.JSON(http.StatusOK, models.ExtractResponse{
		Success: true,
		Message: "Message extracted",
		Secret:  secret,
		Length:  utf8.RuneCountInString(secret),
	})
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	var req models.CapacityRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	canvas, format, _, ok := h.readImage(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:  true,
		Metadata: h.imageDecoder.AnalyzeImage(canvas, format, req.Offset),
	})
}

// readImage decodes the uploaded image_file. On failure it writes the error
// response and returns ok == false.
func (h *StegoHandler) readImage(c *gin.Context) (*imageio.Canvas, imageio.Format, string, bool) {
	file, header, err := c.Request.FormFile("image_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: "Image file is required",
		})
		return nil, "", "", false
	}
	defer file.Close()

	data, err := readUpload(file, h.maxUploadBytes)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, models.StegoResponse{
			Success: false,
			Message: err.Error(),
		})
		return nil, "", "", false
	}

	canvas, format, err := h.imageDecoder.Decode(data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, imageio.ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to decode image: %v", err),
		})
		return nil, "", "", false
	}

	h.logger.Debug("image decoded",
		zap.String("file", header.Filename),
		zap.String("format", string(format)),
		zap.Int("width", canvas.Width()),
		zap.Int("height", canvas.Height()),
	)
	return canvas, format, header.Filename, true
}

func (h *StegoHandler) abortWithStegoError(c *gin.Context, prefix string, err error) {
	status := stegoErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(prefix, zap.Error(err))
	}
	c.JSON(status, models.StegoResponse{
		Success: false,
		Message: fmt.Sprintf("%s: %v", prefix, err),
	})
}

func stegoErrorStatus(err error) int {
	switch {
	case errors.Is(err, stego.ErrEncodingRange),
		errors.Is(err, stego.ErrMessageTooLarge),
		errors.Is(err, stego.ErrOffsetOutOfRange),
		errors.Is(err, stego.ErrInsufficientSpace):
		return http.StatusBadRequest
	case errors.Is(err, stego.ErrNoTerminator):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func readUpload(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image file exceeds %d bytes", limit)
	}
	return data, nil
}

func outputFilename(filename string, format imageio.Format) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s_stego%s", base, format.Extension())
}

func formatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", psnr)
}
