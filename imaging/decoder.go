package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"image-steganography/models"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	ChannelsRGB  = "rgb"
	ChannelsRGBA = "rgba"

	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatQOI  = "qoi"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

var (
	ErrLossyFormat       = errors.New("output format would destroy embedded bits")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Raster is a decoded carrier image normalised to 8-bit non-premultiplied
// RGBA. Samples are taken row-major, channel-interleaved, with or without the
// alpha channel.
type Raster struct {
	img      *image.NRGBA
	channels int
	Metadata *models.ImageMetadata
}

type ImageDecoder struct {
	channels int
}

func NewImageDecoder(channels string) (*ImageDecoder, error) {
	switch strings.ToLower(channels) {
	case "", ChannelsRGB:
		return &ImageDecoder{channels: 3}, nil
	case ChannelsRGBA:
		return &ImageDecoder{channels: 4}, nil
	default:
		return nil, fmt.Errorf("unknown channel layout %q (want %s or %s)", channels, ChannelsRGB, ChannelsRGBA)
	}
}

func (d *ImageDecoder) Decode(data []byte) (*Raster, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := toNRGBA(src)
	bounds := img.Bounds()

	return &Raster{
		img:      img,
		channels: d.channels,
		Metadata: &models.ImageMetadata{
			Format:     format,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			Channels:   d.channels,
			TotalBytes: bounds.Dx() * bounds.Dy() * d.channels,
		},
	}, nil
}

// Samples returns a fresh copy of the carrier bytes.
func (r *Raster) Samples() []byte {
	bounds := r.img.Bounds()
	samples := make([]byte, 0, r.Metadata.TotalBytes)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := r.img.Pix[r.img.PixOffset(bounds.Min.X, y):r.img.PixOffset(bounds.Max.X, y)]
		if r.channels == 4 {
			samples = append(samples, row...)
			continue
		}
		for x := 0; x < len(row); x += 4 {
			samples = append(samples, row[x:x+3]...)
		}
	}
	return samples
}

// WithSamples returns a new image carrying samples in place of the raster's
// own. With the rgb layout alpha is copied through unchanged.
func (r *Raster) WithSamples(samples []byte) (*image.NRGBA, error) {
	if len(samples) != r.Metadata.TotalBytes {
		return nil, fmt.Errorf("sample count mismatch: got %d, image has %d", len(samples), r.Metadata.TotalBytes)
	}

	bounds := r.img.Bounds()
	out := image.NewNRGBA(bounds)
	copy(out.Pix, r.img.Pix)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := out.Pix[out.PixOffset(bounds.Min.X, y):out.PixOffset(bounds.Max.X, y)]
		for x := 0; x < len(row); x += 4 {
			n := copy(row[x:x+r.channels], samples[i:])
			i += n
		}
	}
	return out, nil
}

// Encode writes img in a lossless container. Formats that quantise or
// recompress samples are refused.
func (d *ImageDecoder) Encode(img image.Image, format string) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error

	switch strings.ToLower(format) {
	case FormatPNG:
		err = png.Encode(buf, img)
	case FormatBMP:
		err = bmp.Encode(buf, img)
	case FormatTIFF, "tif":
		err = tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatQOI:
		err = qoi.Encode(buf, img)
	case FormatJPEG, "jpg", FormatGIF, FormatWebP:
		return nil, fmt.Errorf("%w: %s", ErrLossyFormat, format)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// FormatFromPath maps an output file name to a container format.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case FormatPNG, FormatBMP, FormatQOI:
		return ext, nil
	case FormatTIFF, "tif":
		return FormatTIFF, nil
	case FormatJPEG, "jpg", FormatGIF, FormatWebP:
		return "", fmt.Errorf("%w: %s", ErrLossyFormat, ext)
	case "":
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ContentType returns the MIME type for a lossless output format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatQOI:
		return "image/qoi"
	default:
		return "application/octet-stream"
	}
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok && img.Rect.Min == (image.Point{}) {
		return img
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
