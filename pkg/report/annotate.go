package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	bannerPadding = 4
	maxLabelRunes = 120
)

// Annotate draws label on a banner across the top of a PNG screenshot.
// Labels longer than 120 runes are cut with "...".
func Annotate(data []byte, label string) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	rgba := imageToRGBA(img)
	bounds := rgba.Bounds()

	face := basicfont.Face7x13
	bannerH := face.Height + 2*bannerPadding
	if bannerH > bounds.Dy() {
		bannerH = bounds.Dy()
	}
	banner := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+bannerH)
	draw.Draw(rgba, banner, image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 80, B: 80, A: 255}),
		Face: face,
		Dot:  fixed.P(bounds.Min.X+bannerPadding, bounds.Min.Y+bannerPadding+face.Ascent),
	}
	d.DrawString(truncateLabel(label, maxLabelRunes))

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// truncateLabel shortens s to at most max runes, never splitting a rune.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// imageToRGBA converts any image to RGBA
func imageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
