// Package models contain needed models
package models

// InsertRequest represents the form fields for hiding a message
type InsertRequest struct {
	Offset  uint   `form:"offset"`
	Message string `form:"message" binding:"required"`
}

// ExtractRequest represents the form fields for recovering a message
type ExtractRequest struct {
	Offset uint `form:"offset"`
}

// CapacityRequest represents the form fields for a capacity report
type CapacityRequest struct {
	Offset uint `form:"offset"`
}

// StegoResponse represents an error or status response
type StegoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Secret  string `json:"secret"`
	Length  int    `json:"length"`
}

// CapacityResponse represents the response of a capacity report
type CapacityResponse struct {
	Success  bool           `json:"success"`
	Metadata *ImageMetadata `json:"metadata"`
}

// ImageMetadata describes an image and how much it can hide
type ImageMetadata struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Format           string `json:"format"`
	CapacityBytes    int    `json:"capacity_bytes"`
	CapacityBits     int    `json:"capacity_bits"`
	Offset           uint   `json:"offset"`
	MaxMessageLength int    `json:"max_message_length"`
}

// EncodeReport summarizes a completed insertion
type EncodeReport struct {
	ChangedBits int
	TotalBits   int
	PSNR        float64
}
