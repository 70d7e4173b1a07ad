package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

type ImageProcessor struct{}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

// Fit scales the image down so its longest side is at most maxDimension.
// Images that already fit are returned untouched, with their original type.
func (p *ImageProcessor) Fit(ctx context.Context, contentType string, data []byte, maxDimension int) ([]byte, string, error) {
	if maxDimension <= 0 {
		return data, contentType, nil
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Fit - decodeImage: %w", err)
	}

	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return data, contentType, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Fit: %w", err)
	}

	fitted := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	res, outType, err := encodeImage(fitted, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Fit - encodeImage: %w", err)
	}

	return res, outType, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

// encodeImage keeps the source format where imaging can write it and falls
// back to JPEG otherwise (webp has no encoder).
func encodeImage(img image.Image, contentType string) ([]byte, string, error) {
	var buf bytes.Buffer
	var format imaging.Format

	switch contentType {
	case "image/jpeg", "image/jpg":
		format, contentType = imaging.JPEG, "image/jpeg"
	case "image/png":
		format = imaging.PNG
	case "image/gif":
		format = imaging.GIF
	default:
		format, contentType = imaging.JPEG, "image/jpeg"
	}

	err := imaging.Encode(&buf, img, format)
	if err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - encodeImage - imaging.Encode: %w", err)
	}

	return buf.Bytes(), contentType, nil
}
