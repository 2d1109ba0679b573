package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// newFace builds a Go Regular face at the given pixel size. The font is
// embedded so rendering does not depend on system font files.
func newFace(sizePx float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

// textSize returns the rendered width and height of s in pixels.
func textSize(face font.Face, s string) (int, int) {
	d := font.Drawer{Face: face}
	w := d.MeasureString(s).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	return w, h
}

// drawTextCentered draws s centered on (cx, cy).
func drawTextCentered(dst draw.Image, face font.Face, s string, cx, cy int, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	w := d.MeasureString(s).Ceil()
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	d.Dot = fixed.P(cx-w/2, cy+(ascent-descent)/2)
	d.DrawString(s)
}
