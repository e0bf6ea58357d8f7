package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"image-steganography/config"
	"image-steganography/imaging"
	"image-steganography/logging"
	"image-steganography/service"
	"image-steganography/stego"
	"image-steganography/storage"

	"github.com/sirupsen/logrus"
)

const (
	modeRead  = "read"
	modeWrite = "write"

	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	mode       string
	input      string
	message    string
	output     string
	configFile string
	header     int
	channels   string
	compress   bool
	logLevel   string
	logFormat  string

	// set when -compress was given, so -compress=false can override config
	compressExplicit bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, storage.NewResolver()))
}

func run(ctx context.Context, args []string, stderr io.Writer, store storage.Storage) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger, err := logging.NewWithOutput(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	svc, err := service.NewStegoService(cfg.StegoConfig(), logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer svc.Close()

	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	log := logger.WithFields(logrus.Fields{"mode": opts.mode, "input": opts.input, "output": opts.output})
	if opts.mode == modeWrite {
		return write(ctx, svc, store, opts, log, stderr)
	}
	return read(ctx, svc, store, opts, log, stderr)
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("stegimg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", "", "read (extract) or write (embed)")
	fs.StringVar(&opts.input, "in", "", "input image path (local or gs://bucket/object)")
	fs.StringVar(&opts.message, "msg", "", "payload file to embed (write mode)")
	fs.StringVar(&opts.output, "out", "", "output path: stego image (write) or payload (read)")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file")
	fs.IntVar(&opts.header, "header", 0, "length header width in bits, 32 or 8 (default from config)")
	fs.StringVar(&opts.channels, "channels", "", "carrier channels, rgb or rgba (default from config)")
	fs.BoolVar(&opts.compress, "compress", false, "zstd-compress the payload before embedding")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (default from config)")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format, text or json (default from config)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: stegimg -mode write -in <image> -msg <payload> -out <image>")
		fmt.Fprintln(stderr, "       stegimg -mode read  -in <image> -out <payload>")
		fmt.Fprintln(stderr, "Carriers are read as 8-bit RGB(A); images from tools that embed into gray, paletted or 16-bit samples are not readable.")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch opts.mode {
	case modeRead, modeWrite:
	case "":
		return nil, fmt.Errorf("missing -mode (want %s or %s)", modeRead, modeWrite)
	default:
		return nil, fmt.Errorf("unknown mode %q (want %s or %s)", opts.mode, modeRead, modeWrite)
	}

	if opts.input == "" {
		return nil, errors.New("missing -in image path")
	}
	if opts.output == "" {
		return nil, errors.New("missing -out path")
	}
	if opts.mode == modeWrite {
		if opts.message == "" {
			return nil, errors.New("write mode needs a payload file: -msg <path>")
		}
		if _, err := imaging.FormatFromPath(opts.output); err != nil {
			return nil, fmt.Errorf("cannot write stego image to %s: %w", opts.output, err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "compress" {
			opts.compressExplicit = true
		}
	})
	return opts, nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.configFile != "" {
		if err := cfg.LoadFile(opts.configFile); err != nil {
			return nil, err
		}
	}

	if opts.header != 0 {
		cfg.Stego.HeaderWidth = opts.header
	}
	if opts.channels != "" {
		cfg.Stego.Channels = opts.channels
	}
	if opts.compressExplicit {
		cfg.Stego.Compress = opts.compress
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func write(ctx context.Context, svc *service.StegoService, store storage.Storage, opts *options, log logrus.FieldLogger, stderr io.Writer) int {
	format, err := imaging.FormatFromPath(opts.output)
	if err != nil {
		log.WithError(err).Error("unsupported output format")
		return exitUsage
	}

	imageData, err := store.Read(ctx, opts.input)
	if err != nil {
		log.WithError(err).Error("cannot read input image")
		return exitFailure
	}

	payload, err := store.Read(ctx, opts.message)
	if err != nil {
		log.WithError(err).WithField("payload", opts.message).Error("cannot read payload file")
		return exitFailure
	}

	result, err := svc.Embed(imageData, payload, format)
	if err != nil {
		var capacityErr *stego.CapacityError
		if errors.As(err, &capacityErr) {
			log.WithFields(logrus.Fields{
				"required_bits":  capacityErr.Required,
				"available_bits": capacityErr.Available,
			}).Error("image is too small for payload")
			// printed regardless of log level
			fmt.Fprintf(stderr, "stegimg: payload needs %d bits, image holds %d\n", capacityErr.Required, capacityErr.Available)
			return exitFailure
		}
		log.WithError(err).Error("embedding failed")
		return exitFailure
	}

	if err := store.Write(ctx, opts.output, result.Image); err != nil {
		log.WithError(err).Error("cannot write stego image")
		return exitFailure
	}

	log.WithFields(logrus.Fields{
		"payload_bytes":  result.Payload,
		"capacity_bytes": result.Capacity,
		"psnr":           imaging.FormatPSNR(result.PSNR),
	}).Info("stego image written")
	return exitOK
}

func read(ctx context.Context, svc *service.StegoService, store storage.Storage, opts *options, log logrus.FieldLogger, stderr io.Writer) int {
	imageData, err := store.Read(ctx, opts.input)
	if err != nil {
		log.WithError(err).Error("cannot read input image")
		return exitFailure
	}

	payload, _, err := svc.Extract(imageData)
	if err != nil {
		var extractionErr *stego.ExtractionError
		if errors.As(err, &extractionErr) {
			log.WithFields(logrus.Fields{
				"claimed_bits":   extractionErr.Claimed,
				"available_bits": extractionErr.Available,
			}).Error("image holds no valid payload")
			fmt.Fprintf(stderr, "stegimg: header claims %d bits, image holds %d\n", extractionErr.Claimed, extractionErr.Available)
			return exitFailure
		}
		log.WithError(err).Error("extraction failed")
		return exitFailure
	}

	if err := store.Write(ctx, opts.output, payload); err != nil {
		log.WithError(err).Error("cannot write payload")
		return exitFailure
	}

	log.WithField("payload_bytes", len(payload)).Info("payload written")
	return exitOK
}
