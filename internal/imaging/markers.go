package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// Marker is a candidate screen position rendered as a labelled rectangle.
type Marker struct {
	X int
	Y int
}

// MarkerStyle controls how labelled markers are rendered.
type MarkerStyle struct {
	// Inner is the marker rectangle fill; pick with DistinctColor.
	Inner color.RGBA
	// Label is the label text color.
	Label color.RGBA
	// Background tints the whole image behind the markers.
	Background color.RGBA
	// BackgroundOpacity is the tint strength in [0, 1].
	BackgroundOpacity float64
	// LabelSizeRatio sets the font size as a fraction of the smaller image
	// dimension.
	LabelSizeRatio float64
	// Padding is added around the widest label to size the rectangles.
	Padding int
}

// DefaultMarkerStyle mirrors the tuning the locator was calibrated with.
func DefaultMarkerStyle(inner color.RGBA) MarkerStyle {
	return MarkerStyle{
		Inner:             inner,
		Label:             color.RGBA{255, 255, 255, 255},
		Background:        color.RGBA{0, 0, 0, 255},
		BackgroundOpacity: 0.25,
		LabelSizeRatio:    0.04,
		Padding:           10,
	}
}

// DrawLabeledMarkers renders numbered marker rectangles over a dimmed copy
// of img and reports the maximum pairwise overlap ratio between marker
// rectangles. The overlap ratio is the locator's degeneracy signal: when
// rectangles mostly cover each other the search region cannot shrink
// further. labels may be nil, in which case markers are numbered from 1.
func DrawLabeledMarkers(img image.Image, markers []Marker, labels []string, style MarkerStyle) (*image.RGBA, float64, error) {
	if len(labels) != 0 && len(labels) != len(markers) {
		return nil, 0, fmt.Errorf("labels count %d does not match markers count %d", len(labels), len(markers))
	}

	dst := ToRGBA(img)
	tintOver(dst, style.Background, style.BackgroundOpacity)

	b := dst.Bounds()
	minDim := b.Dx()
	if b.Dy() < minDim {
		minDim = b.Dy()
	}
	fontSize := float64(minDim) * style.LabelSizeRatio
	if fontSize < 8 {
		fontSize = 8
	}
	face, err := newFace(fontSize)
	if err != nil {
		return nil, 0, err
	}
	defer face.Close()

	widest := widestLabel(markers, labels)
	lw, lh := textSize(face, widest)
	rectW := lw + style.Padding
	rectH := lh + style.Padding

	rects := make([]image.Rectangle, 0, len(markers))
	for i, m := range markers {
		label := strconv.Itoa(i + 1)
		if len(labels) != 0 {
			label = labels[i]
		}
		r := image.Rect(m.X-rectW/2, m.Y-rectH/2, m.X+rectW/2, m.Y+rectH/2)
		draw.Draw(dst, r, image.NewUniform(style.Inner), image.Point{}, draw.Src)
		drawTextCentered(dst, face, label, m.X, m.Y, style.Label)
		rects = append(rects, r)
	}

	return dst, maxOverlapRatio(rects), nil
}

// maxOverlapRatio returns the largest intersection-over-area ratio across
// all ordered pairs of rectangles.
func maxOverlapRatio(rects []image.Rectangle) float64 {
	maxRatio := 0.0
	for i, r1 := range rects {
		for j, r2 := range rects {
			if i == j {
				continue
			}
			inter := r1.Intersect(r2)
			if inter.Empty() {
				continue
			}
			area := float64(inter.Dx() * inter.Dy())
			if a1 := float64(r1.Dx() * r1.Dy()); a1 > 0 && area/a1 > maxRatio {
				maxRatio = area / a1
			}
			if a2 := float64(r2.Dx() * r2.Dy()); a2 > 0 && area/a2 > maxRatio {
				maxRatio = area / a2
			}
		}
	}
	return maxRatio
}

func widestLabel(markers []Marker, labels []string) string {
	if len(labels) == 0 {
		return strconv.Itoa(len(markers))
	}
	widest := ""
	for _, l := range labels {
		if len(l) > len(widest) {
			widest = l
		}
	}
	return widest
}

// tintOver blends a uniform color over dst at the given opacity.
func tintOver(dst *image.RGBA, c color.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	overlay := color.RGBA{c.R, c.G, c.B, uint8(255*opacity + 0.5)}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(overlay), image.Point{}, draw.Over)
}
