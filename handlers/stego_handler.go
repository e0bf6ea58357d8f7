// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"image-steganography/imaging"
	"image-steganography/metrics"
	"image-steganography/models"
	"image-steganography/service"
	"image-steganography/stego"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StegoHandler struct {
	defaults      models.StegoConfig
	psnrThreshold float64
	maxUpload     int64
	metrics       *metrics.Metrics
	logger        logrus.FieldLogger
}

func NewStegoHandler(defaults *models.StegoConfig, psnrThreshold float64, maxUploadMB int, m *metrics.Metrics, logger logrus.FieldLogger) *StegoHandler {
	return &StegoHandler{
		defaults:      *defaults,
		psnrThreshold: psnrThreshold,
		maxUpload:     int64(maxUploadMB) << 20,
		metrics:       m,
		logger:        logger,
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
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(c, "embed", "input", http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	config, err := h.requestConfig(c)
	if err != nil {
		h.fail(c, "embed", "input", http.StatusBadRequest, err.Error())
		return
	}

	format := strings.ToLower(c.DefaultPostForm("format", imaging.FormatPNG))
	if format == "tif" {
		format = imaging.FormatTIFF
	}

	imageData, imageHeader, err := readFormFile(c, "image_file")
	if err != nil {
		h.fail(c, "embed", "input", http.StatusBadRequest, "Image file is required")
		return
	}

	secretData, _, err := readFormFile(c, "secret_file")
	if err != nil {
		h.fail(c, "embed", "input", http.StatusBadRequest, "Secret file is required")
		return
	}

	svc, err := service.NewStegoService(config, h.logger)
	if err != nil {
		h.fail(c, "embed", "input", http.StatusBadRequest, err.Error())
		return
	}
	defer svc.Close()

	result, err := svc.Embed(imageData, secretData, format)
	if err != nil {
		status, reason := classify(err)
		h.fail(c, "embed", reason, status, fmt.Sprintf("Failed to embed secret data: %v", err))
		return
	}

	if !imaging.ValidatePSNR(result.PSNR, h.psnrThreshold) {
		h.logger.WithFields(logrus.Fields{
			"psnr":      result.PSNR,
			"threshold": h.psnrThreshold,
		}).Warn("stego image below PSNR threshold")
	}
	h.metrics.RecordEmbed(result.Payload, result.Metadata.TotalBytes, result.PSNR)

	baseFilename := strings.TrimSuffix(imageHeader.Filename, filepath.Ext(imageHeader.Filename))
	outputFilename := fmt.Sprintf("%s_stego.%s", baseFilename, format)

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", attachment(outputFilename))

	// Include metadata about the steganography operation
	c.Header("X-Stego-Method", "LSB parity")
	c.Header("X-Stego-Message", "Secret message successfully embedded")
	c.Header("X-Stego-PSNR", imaging.FormatPSNR(result.PSNR))
	c.Header("X-Stego-Capacity", strconv.Itoa(result.Capacity))
	c.Header("X-Stego-Header-Width", strconv.Itoa(int(svc.HeaderWidth())))

	c.Data(http.StatusOK, imaging.ContentType(format), result.Image)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(c, "extract", "input", http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	config, err := h.requestConfig(c)
	if err != nil {
		h.fail(c, "extract", "input", http.StatusBadRequest, err.Error())
		return
	}

	stegoData, _, err := readFormFile(c, "stego_file")
	if err != nil {
		h.fail(c, "extract", "input", http.StatusBadRequest, "Stego image file is required")
		return
	}

	svc, err := service.NewStegoService(config, h.logger)
	if err != nil {
		h.fail(c, "extract", "input", http.StatusBadRequest, err.Error())
		return
	}
	defer svc.Close()

	secretData, meta, err := svc.Extract(stegoData)
	if err != nil {
		status, reason := classify(err)
		h.fail(c, "extract", reason, status, fmt.Sprintf("Failed to extract secret data: %v", err))
		return
	}
	h.metrics.RecordExtract(len(secretData), meta.TotalBytes)

	filename := c.DefaultPostForm("secret_filename", "secret.bin")

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", attachment(filepath.Base(filename)))

	c.Data(http.StatusOK, "application/octet-stream", secretData)
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Message: fmt.Sprintf("Failed to parse form: %v", err)})
		return
	}

	config, err := h.requestConfig(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Message: err.Error()})
		return
	}

	imageData, _, err := readFormFile(c, "image_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Message: "Image file is required"})
		return
	}

	svc, err := service.NewStegoService(config, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{Message: err.Error()})
		return
	}
	defer svc.Close()

	resp, err := svc.Capacity(imageData)
	if err != nil {
		status, _ := classify(err)
		c.JSON(status, models.CapacityResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// requestConfig overlays optional form fields on the server defaults.
func (h *StegoHandler) requestConfig(c *gin.Context) (*models.StegoConfig, error) {
	config := h.defaults

	if v := c.PostForm("header_width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || stego.HeaderWidth(width).Validate() != nil {
			return nil, fmt.Errorf("header_width must be 8 or 32")
		}
		config.HeaderWidth = width
	}
	if v := c.PostForm("channels"); v != "" {
		if v != imaging.ChannelsRGB && v != imaging.ChannelsRGBA {
			return nil, fmt.Errorf("channels must be rgb or rgba")
		}
		config.Channels = v
	}
	if v := c.PostForm("compress"); v != "" {
		config.Compress = v == "true"
	}
	return &config, nil
}

func (h *StegoHandler) fail(c *gin.Context, operation, reason string, status int, message string) {
	h.metrics.RecordFailure(operation, reason)
	h.logger.WithFields(logrus.Fields{
		"operation": operation,
		"reason":    reason,
		"status":    status,
	}).Warn(message)

	if operation == "embed" {
		c.JSON(status, models.StegoResponse{Success: false, Message: message})
		return
	}
	c.JSON(status, models.ExtractResponse{Success: false, Message: message})
}

func classify(err error) (int, string) {
	var capacityErr *stego.CapacityError
	var extractionErr *stego.ExtractionError

	switch {
	case errors.As(err, &capacityErr), errors.Is(err, stego.ErrHeaderOverflow):
		return http.StatusBadRequest, "capacity"
	case errors.As(err, &extractionErr), errors.Is(err, service.ErrCorruptPayload):
		return http.StatusUnprocessableEntity, "extraction"
	case errors.Is(err, service.ErrInvalidImage):
		return http.StatusBadRequest, "decode"
	case errors.Is(err, imaging.ErrLossyFormat), errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusBadRequest, "encode"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func readFormFile(c *gin.Context, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}
