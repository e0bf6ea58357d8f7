// Package models contain needed models
package models

// StegoResponse represents the JSON body returned when insertion fails
type StegoResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	PSNR    float64 `json:"psnr,omitempty"`
}

// ExtractResponse represents the JSON body returned when extraction fails
type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CapacityResponse reports how much payload a carrier image can take
type CapacityResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Format        string `json:"format,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	CarrierBytes  int    `json:"carrier_bytes"`
	HeaderBits    int    `json:"header_bits"`
	CapacityBytes int    `json:"capacity_bytes"`
}

// ImageMetadata represents metadata about a decoded carrier image
type ImageMetadata struct {
	Format     string
	Width      int
	Height     int
	Channels   int
	TotalBytes int
}

// StegoConfig represents configuration for steganography operations.
// Embedding and extraction must use the same values.
type StegoConfig struct {
	HeaderWidth int    `yaml:"header_width"`
	Channels    string `yaml:"channels"`
	Compress    bool   `yaml:"compress"`
}
