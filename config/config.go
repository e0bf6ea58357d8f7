package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"image-steganography/imaging"
	"image-steganography/models"
	"image-steganography/stego"
)

// Config holds all application configuration
type Config struct {
	// HTTP Server
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb"`

	// Protocol, must match between embedding and extraction
	Stego models.StegoConfig `yaml:"stego"`

	// Quality threshold below which an embed is logged as visible
	PSNRThreshold float64 `yaml:"psnr_threshold"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load loads configuration from environment variables with defaults, then
// overlays the YAML file named by STEGO_CONFIG if set.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		MaxUploadMB: getIntEnv("STEGO_MAX_UPLOAD_MB", 32),
		Stego: models.StegoConfig{
			HeaderWidth: getIntEnv("STEGO_HEADER_WIDTH", int(stego.HeaderWidth32)),
			Channels:    getEnv("STEGO_CHANNELS", imaging.ChannelsRGB),
			Compress:    getBoolEnv("STEGO_COMPRESS", false),
		},
		PSNRThreshold: getFloatEnv("STEGO_PSNR_THRESHOLD", 40),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	if path := os.Getenv("STEGO_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the fields present in a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := stego.HeaderWidth(c.Stego.HeaderWidth).Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := imaging.NewImageDecoder(c.Stego.Channels); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid config: max upload must be positive, got %d MB", c.MaxUploadMB)
	}
	return nil
}

// StegoConfig returns a copy of the protocol settings.
func (c *Config) StegoConfig() *models.StegoConfig {
	sc := c.Stego
	return &sc
}

// Helper functions to get environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
