// Package service wires image decoding, optional compression and the LSB
// core into the embed and extract pipelines used by the CLI and HTTP API.
package service

import (
	"bytes"
	"errors"
	"fmt"

	"image-steganography/compression"
	"image-steganography/imaging"
	"image-steganography/models"
	"image-steganography/stego"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidImage   = errors.New("invalid carrier image")
	ErrCorruptPayload = errors.New("extracted payload is corrupt")
)

type StegoService struct {
	config  models.StegoConfig
	decoder *imaging.ImageDecoder
	lsb     *stego.LSBSteganography
	codec   *compression.ZstdCodec
	logger  logrus.FieldLogger
}

// EmbedResult is a re-encoded carrier with its quality report.
type EmbedResult struct {
	Image    []byte
	Format   string
	PSNR     float64
	Capacity int
	Payload  int
	Metadata *models.ImageMetadata
}

func NewStegoService(config *models.StegoConfig, logger logrus.FieldLogger) (*StegoService, error) {
	if config == nil {
		config = &models.StegoConfig{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}

	decoder, err := imaging.NewImageDecoder(config.Channels)
	if err != nil {
		return nil, err
	}

	lsb, err := stego.NewLSBSteganography(config, logger)
	if err != nil {
		return nil, err
	}

	s := &StegoService{
		config:  *config,
		decoder: decoder,
		lsb:     lsb,
		logger:  logger,
	}

	if config.Compress {
		if s.codec, err = compression.NewZstdCodec(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *StegoService) HeaderWidth() stego.HeaderWidth {
	return s.lsb.HeaderWidth()
}

func (s *StegoService) Close() error {
	if s.codec != nil {
		return s.codec.Close()
	}
	return nil
}

// Embed hides payload in the image and re-encodes it in format.
func (s *StegoService) Embed(imageData, payload []byte, format string) (*EmbedResult, error) {
	raster, err := s.decode(imageData)
	if err != nil {
		return nil, err
	}

	if s.codec != nil {
		compressed := s.codec.Compress(payload)
		s.logger.WithFields(logrus.Fields{
			"raw_bytes":        len(payload),
			"compressed_bytes": len(compressed),
		}).Debug("payload compressed")
		payload = compressed
	}

	samples := raster.Samples()
	stegoSamples, err := s.lsb.Embed(samples, payload)
	if err != nil {
		return nil, err
	}

	img, err := raster.WithSamples(stegoSamples)
	if err != nil {
		return nil, err
	}

	encoded, err := s.decoder.Encode(img, format)
	if err != nil {
		return nil, err
	}
	if err := s.verify(encoded, stegoSamples); err != nil {
		return nil, fmt.Errorf("%w: %s", err, format)
	}

	psnr := imaging.CalculatePSNR(samples, stegoSamples)
	s.logger.WithFields(logrus.Fields{
		"format":        format,
		"width":         raster.Metadata.Width,
		"height":        raster.Metadata.Height,
		"payload_bytes": len(payload),
		"psnr":          imaging.FormatPSNR(psnr),
	}).Info("payload embedded")

	return &EmbedResult{
		Image:    encoded,
		Format:   format,
		PSNR:     psnr,
		Capacity: s.lsb.CalculateCapacity(samples),
		Payload:  len(payload),
		Metadata: raster.Metadata,
	}, nil
}

// Extract recovers the payload hidden in the image.
func (s *StegoService) Extract(imageData []byte) ([]byte, *models.ImageMetadata, error) {
	raster, err := s.decode(imageData)
	if err != nil {
		return nil, nil, err
	}

	payload, err := s.lsb.Extract(raster.Samples())
	if err != nil {
		return nil, raster.Metadata, err
	}

	if s.codec != nil {
		if payload, err = s.codec.Decompress(payload); err != nil {
			return nil, raster.Metadata, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"format":        raster.Metadata.Format,
		"payload_bytes": len(payload),
	}).Info("payload extracted")

	return payload, raster.Metadata, nil
}

// Capacity reports how many framed payload bytes the image can carry.
func (s *StegoService) Capacity(imageData []byte) (*models.CapacityResponse, error) {
	raster, err := s.decode(imageData)
	if err != nil {
		return nil, err
	}

	samples := raster.Samples()
	return &models.CapacityResponse{
		Success:       true,
		Format:        raster.Metadata.Format,
		Width:         raster.Metadata.Width,
		Height:        raster.Metadata.Height,
		CarrierBytes:  len(samples),
		HeaderBits:    int(s.lsb.HeaderWidth()),
		CapacityBytes: s.lsb.CalculateCapacity(samples),
	}, nil
}

// verify decodes the written container and checks that every carrier sample
// survived. Containers that premultiply alpha lose samples of translucent
// pixels.
func (s *StegoService) verify(encoded, want []byte) error {
	raster, err := s.decoder.Decode(encoded)
	if err != nil {
		return fmt.Errorf("%w: re-reading output: %v", imaging.ErrLossyFormat, err)
	}
	if !bytes.Equal(raster.Samples(), want) {
		return fmt.Errorf("%w: container altered samples of translucent pixels", imaging.ErrLossyFormat)
	}
	return nil
}

func (s *StegoService) decode(imageData []byte) (*imaging.Raster, error) {
	raster, err := s.decoder.Decode(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return raster, nil
}
