// Package imgconv normalizes uploaded photos for the vision transports.
// Whatever the browser sends (JPEG, PNG, GIF, WebP) comes out as PNG bytes,
// plus the base64 form the chat APIs want.
package imgconv

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	chaiwebp "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Decode decodes image data in any supported format.
func Decode(data []byte) (image.Image, error) {
	// imaging wraps image.Decode; x/image/webp is registered via import.
	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	// Some encoders emit WebP variants the x/image decoder rejects.
	if img, werr := chaiwebp.Decode(bytes.NewReader(data)); werr == nil {
		return img, nil
	}

	return nil, fmt.Errorf("failed to decode image: %w", err)
}

// ToPNG re-encodes image data as PNG.
func ToPNG(data []byte) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToBase64PNG re-encodes image data as PNG and returns it base64 encoded,
// the form both chat transports carry images in.
func ToBase64PNG(data []byte) (string, error) {
	pngData, err := ToPNG(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(pngData), nil
}

// Thumbnail scales image data down to fit within maxDim on its longer side
// and returns it as JPEG. Images already within bounds are not upscaled.
func Thumbnail(data []byte, maxDim int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		if b.Dx() >= b.Dy() {
			img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
