// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging inspects and normalizes uploaded images before they are
// written to object storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	_ "image/png" // PNG decoder
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/turismo-admin/internal/model"
)

// MaxPixels bounds the decoded size of an image (width * height).
const MaxPixels = 40_000_000

// JPEGQuality is used when a JPEG is re-encoded.
const JPEGQuality = 90

// ErrUnsupportedFormat is returned for content that is not an allowed image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned when the image dimensions exceed MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

// Result is a normalized image ready for upload.
type Result struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	// Reencoded is true when the bytes differ from the upload (EXIF stripped).
	Reencoded bool
}

// Processor normalizes uploaded images.
type Processor struct {
	quality int
}

// NewProcessor creates a new image processor.
func NewProcessor() *Processor {
	return &Processor{quality: JPEGQuality}
}

// DetectMimeType sniffs the content type of data from its magic bytes.
func DetectMimeType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Process sniffs the content, rejects anything but JPEG, PNG, GIF and WebP,
// checks the dimensions, and for JPEGs carrying EXIF data applies the
// orientation tag and re-encodes without metadata.
func (p *Processor) Process(data []byte) (*Result, error) {
	mimeType := DetectMimeType(data)
	if !model.IsImageMimeType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooLarge
	}

	result := &Result{Data: data, MimeType: mimeType, Width: cfg.Width, Height: cfg.Height}
	if mimeType != model.MimeTypeJPEG {
		return result, nil
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// No EXIF block: nothing to strip.
		return result, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding jpeg: %w", err)
	}
	img = applyOrientation(img, exifOrientation(x))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:      buf.Bytes(),
		MimeType:  model.MimeTypeJPEG,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Reencoded: true,
	}, nil
}

// ReadOrientation reads the EXIF orientation tag. Returns 1 (normal) if it
// cannot be determined.
func ReadOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	return exifOrientation(x)
}

func exifOrientation(x *exif.Exif) int {
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation applies an EXIF orientation transformation.
// 1 normal, 2 flip H, 3 rotate 180, 4 flip V, 5 transpose,
// 6 rotate 90 CW, 7 transverse, 8 rotate 90 CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
