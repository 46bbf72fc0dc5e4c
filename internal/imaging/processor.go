// Package imaging turns captured window images into bounded JPEG data URLs.
// Every capture strategy funnels through Process, so quality clamping and the
// width bound apply uniformly regardless of where the pixels came from.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

const (
	// DefaultQuality is the JPEG quality used when none is requested.
	DefaultQuality = 85
	// DefaultMaxWidth bounds output width when none is requested.
	DefaultMaxWidth = 1920
)

// Result is a processed image ready for the wire.
type Result struct {
	DataURL string
	Width   int
	Height  int
}

// Process scales src down to maxWidth when wider, encodes it as JPEG at the
// clamped quality, and wraps it in a data URL. Images already within bounds
// are never upscaled.
func Process(src image.Image, quality, maxWidth int) (Result, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Result{}, fmt.Errorf("image has zero area (%dx%d)", w, h)
	}

	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if w > maxWidth {
		scaledH := int(float64(h) * float64(maxWidth) / float64(w))
		if scaledH < 1 {
			scaledH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, scaledH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		src = dst
		w, h = maxWidth, scaledH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: ClampQuality(quality)}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Result{
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:   w,
		Height:  h,
	}, nil
}

// ClampQuality maps quality into the valid JPEG range. Zero selects the
// default.
func ClampQuality(quality int) int {
	switch {
	case quality == 0:
		return DefaultQuality
	case quality < 1:
		return 1
	case quality > 100:
		return 100
	default:
		return quality
	}
}

// Decode parses an image from a data URL or a raw base64 string.
func Decode(data string) (image.Image, error) {
	if data == "" {
		return nil, errors.New("empty image data")
	}
	encoded := data
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, errors.New("invalid data url")
		}
		encoded = parts[1]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
