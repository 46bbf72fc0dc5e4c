package imaging

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const placeholderHeight = 600

var (
	placeholderBg = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	placeholderFg = color.RGBA{R: 64, G: 64, B: 64, A: 255}
)

// Placeholder renders the degraded-capture stand-in: a light gray canvas
// naming the window whose contents could not be captured. The output is
// deterministic for a given label and width.
func Placeholder(label string, maxWidth int) *image.RGBA {
	width := maxWidth
	if width <= 0 {
		width = 800
	}

	img := image.NewRGBA(image.Rect(0, 0, width, placeholderHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderBg}, image.Point{}, draw.Src)

	face, err := placeholderFace()
	if err != nil {
		// The text is informational; the gray canvas alone still satisfies
		// the capture contract.
		return img
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderFg),
		Face: face,
	}
	drawCentered(drawer, "window capture unavailable", width, placeholderHeight/2-12)
	drawCentered(drawer, label, width, placeholderHeight/2+28)
	return img
}

func drawCentered(drawer *font.Drawer, s string, width, baseline int) {
	x := (width - drawer.MeasureString(s).Ceil()) / 2
	if x < 0 {
		x = 0
	}
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(s)
}

var (
	faceOnce sync.Once
	faceVal  font.Face
	faceErr  error
)

func placeholderFace() (font.Face, error) {
	faceOnce.Do(func() {
		parsed, err := opentype.Parse(gomono.TTF)
		if err != nil {
			faceErr = err
			return
		}
		faceVal, faceErr = opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    24,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	})
	return faceVal, faceErr
}
